package builtins

import (
	"fmt"

	"github.com/gopsil/psil/pkg/value"
)

func registerList(scope *value.Scope) {
	define(scope, "list", func(ev interface{}, args []value.Value) (value.Value, error) {
		return value.NewSequence(append([]value.Value(nil), args...)...), nil
	})
	define(scope, "make-list", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("make-list: expected 2 arguments, got %d", len(args))
		}
		n, err := toInt(args[0])
		if err != nil {
			return nil, err
		}
		items := make([]value.Value, n)
		for i := range items {
			items[i] = args[1]
		}
		return value.NewSequence(items...), nil
	})
	define(scope, "list?", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("list?: expected 1 argument, got %d", len(args))
		}
		_, ok := args[0].(*value.Sequence)
		return value.Boolean(ok), nil
	})
	// cons(x, y) prepends x to y when y is a sequence; otherwise the
	// result degrades to the one-element sequence [x] — there is no
	// dotted-pair cons cell.
	define(scope, "cons", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("cons: expected 2 arguments, got %d", len(args))
		}
		if seq, ok := args[1].(*value.Sequence); ok {
			items := make([]value.Value, 0, len(seq.Items)+1)
			items = append(items, args[0])
			items = append(items, seq.Items...)
			return value.NewSequence(items...), nil
		}
		return value.NewSequence(args[0]), nil
	})
	define(scope, "car", carFn("car", func(items []value.Value) (value.Value, error) {
		if len(items) == 0 {
			return nil, fmt.Errorf("car: empty sequence")
		}
		return items[0], nil
	}))
	define(scope, "cdr", carFn("cdr", func(items []value.Value) (value.Value, error) {
		if len(items) == 0 {
			return nil, fmt.Errorf("cdr: empty sequence")
		}
		return value.NewSequence(items[1:]...), nil
	}))
	for _, path := range []string{"aa", "ad", "da", "dd", "aaa", "aad", "add", "addd", "aaaa"} {
		define(scope, "c"+path+"r", compoundAccessor(path))
	}
	define(scope, "null?", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("null?: expected 1 argument, got %d", len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		return value.Boolean(ok && len(seq.Items) == 0), nil
	})
	define(scope, "append", func(ev interface{}, args []value.Value) (value.Value, error) {
		var items []value.Value
		for _, a := range args {
			seq, ok := a.(*value.Sequence)
			if !ok {
				return nil, fmt.Errorf("append: expected a sequence, got %s", a.Type())
			}
			items = append(items, seq.Items...)
		}
		return value.NewSequence(items...), nil
	})
	define(scope, "reverse", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("reverse: expected 1 argument, got %d", len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("reverse: expected a sequence, got %s", args[0].Type())
		}
		items := make([]value.Value, len(seq.Items))
		for i, v := range seq.Items {
			items[len(items)-1-i] = v
		}
		return value.NewSequence(items...), nil
	})
	define(scope, "list-tail", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("list-tail: expected 2 arguments, got %d", len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("list-tail: expected a sequence, got %s", args[0].Type())
		}
		n, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 || int(n) > len(seq.Items) {
			return nil, fmt.Errorf("list-tail: index out of range: %d", n)
		}
		return value.NewSequence(seq.Items[n:]...), nil
	})
	define(scope, "list-ref", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("list-ref: expected 2 arguments, got %d", len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("list-ref: expected a sequence, got %s", args[0].Type())
		}
		n, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 || int(n) >= len(seq.Items) {
			return nil, fmt.Errorf("list-ref: index out of range: %d", n)
		}
		return seq.Items[n], nil
	})
	define(scope, "set-car!", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("set-car!: expected 2 arguments, got %d", len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		if !ok || len(seq.Items) == 0 {
			return nil, fmt.Errorf("set-car!: expected a non-empty sequence")
		}
		seq.Items[0] = args[1]
		return value.Nil, nil
	})
}

func carFn(name string, f func([]value.Value) (value.Value, error)) value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("%s: expected a sequence, got %s", name, args[0].Type())
		}
		return f(seq.Items)
	}
}

// compoundAccessor builds caar/cadr/... from a path of 'a'/'d' letters
// applied right-to-left (innermost operation first), matching the
// standard Lisp convention: "cadr" = car(cdr(x)).
func compoundAccessor(path string) value.BuiltinFunc {
	name := "c" + path + "r"
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(args))
		}
		v := args[0]
		for i := len(path) - 1; i >= 0; i-- {
			seq, ok := v.(*value.Sequence)
			if !ok || len(seq.Items) == 0 {
				return nil, fmt.Errorf("%s: not enough elements", name)
			}
			if path[i] == 'a' {
				v = seq.Items[0]
			} else {
				v = value.NewSequence(seq.Items[1:]...)
			}
		}
		return v, nil
	}
}
