package builtins

import (
	"fmt"

	"github.com/gopsil/psil/pkg/value"
)

// cmp returns -1, 0 or 1 comparing two numbers. `< > <= >= ==` fold
// over all adjacent pairs; `!= is-not in not-in` are strictly binary
// and `not` is unary.
func cmp(a, b value.Value) (int, error) {
	if anyFloat([]value.Value{a, b}) {
		x, err := toFloat(a)
		if err != nil {
			return 0, err
		}
		y, err := toFloat(b)
		if err != nil {
			return 0, err
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	}
	x, err := toInt(a)
	if err != nil {
		return 0, err
	}
	y, err := toInt(b)
	if err != nil {
		return 0, err
	}
	switch {
	case x < y:
		return -1, nil
	case x > y:
		return 1, nil
	default:
		return 0, nil
	}
}

func isNumber(v value.Value) bool {
	switch v.(type) {
	case value.Int, value.Float:
		return true
	}
	return false
}

// equalPair compares one adjacent pair the way the host does: numeric
// pairs compare by value (so 1 == 1.0), everything else structurally
// (identity for symbols, element-wise for sequences).
func equalPair(a, b value.Value) (bool, error) {
	if isNumber(a) && isNumber(b) {
		c, err := cmp(a, b)
		return c == 0, err
	}
	return value.Equal(a, b), nil
}

// chainedRelational builds a variadic relational operator that folds
// over all adjacent pairs of args, requiring every pair to satisfy ok.
func chainedRelational(name string, ok func(c int) bool) value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("%s: expected at least 2 arguments, got %d", name, len(args))
		}
		for i := 0; i+1 < len(args); i++ {
			c, err := cmp(args[i], args[i+1])
			if err != nil {
				return nil, err
			}
			if !ok(c) {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	}
}

func registerComparison(scope *value.Scope) {
	define(scope, "<", chainedRelational("<", func(c int) bool { return c < 0 }))
	define(scope, ">", chainedRelational(">", func(c int) bool { return c > 0 }))
	define(scope, "<=", chainedRelational("<=", func(c int) bool { return c <= 0 }))
	define(scope, ">=", chainedRelational(">=", func(c int) bool { return c >= 0 }))
	define(scope, "==", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("==: expected at least 2 arguments, got %d", len(args))
		}
		for i := 0; i+1 < len(args); i++ {
			eq, err := equalPair(args[i], args[i+1])
			if err != nil {
				return nil, err
			}
			if !eq {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	})
	define(scope, "is", binaryRelational("is", value.Equal))
	define(scope, "!=", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("!=: expected 2 arguments, got %d", len(args))
		}
		eq, err := equalPair(args[0], args[1])
		if err != nil {
			return nil, err
		}
		return value.Boolean(!eq), nil
	})
	define(scope, "is-not", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("is-not: expected 2 arguments, got %d", len(args))
		}
		return value.Boolean(!value.Equal(args[0], args[1])), nil
	})
	define(scope, "in", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("in: expected 2 arguments, got %d", len(args))
		}
		seq, ok := args[1].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("in: second argument must be a sequence, got %s", args[1].Type())
		}
		for _, it := range seq.Items {
			if value.Equal(args[0], it) {
				return value.Boolean(true), nil
			}
		}
		return value.Boolean(false), nil
	})
	define(scope, "not-in", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("not-in: expected 2 arguments, got %d", len(args))
		}
		seq, ok := args[1].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("not-in: second argument must be a sequence, got %s", args[1].Type())
		}
		for _, it := range seq.Items {
			if value.Equal(args[0], it) {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	})
	define(scope, "not", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("not: expected 1 argument, got %d", len(args))
		}
		return value.Boolean(!value.Truthy(args[0])), nil
	})
}

func binaryRelational(name string, eq func(a, b value.Value) bool) value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("%s: expected at least 2 arguments, got %d", name, len(args))
		}
		for i := 0; i+1 < len(args); i++ {
			if !eq(args[i], args[i+1]) {
				return value.Boolean(false), nil
			}
		}
		return value.Boolean(true), nil
	}
}
