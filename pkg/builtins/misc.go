package builtins

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gopsil/psil/pkg/macroexpand"
	"github.com/gopsil/psil/pkg/printer"
	"github.com/gopsil/psil/pkg/reader"
	"github.com/gopsil/psil/pkg/value"
)

// interp is the subset of *eval.Evaluator's API that re-entrant
// builtins (apply, macroexpand*, include) need. Declared locally
// instead of importing pkg/eval, which would cycle back here since
// eval.Evaluator.callBuiltin passes itself as this very interface
// value.
type interp interface {
	Apply(callable value.Value, args []value.Value) (value.Value, error)
	ApplyMacro(m *value.Macro, args []value.Value) (value.Value, error)
	Eval(scope *value.Scope, form value.Value) (value.Value, error)
}

func asInterp(ev interface{}, who string) (interp, error) {
	i, ok := ev.(interp)
	if !ok {
		return nil, fmt.Errorf("%s: requires a re-entrant evaluator", who)
	}
	return i, nil
}

// registerMisc wires the builtins that need re-entrant evaluation
// access (apply, macroexpand family, include) plus the remaining
// simple ones (concat, format, index, slice, dict-set, del, print,
// display). rootScope is the scope builtins were installed into,
// used as the macro-lookup environment for the macroexpand family and
// as the evaluation scope for include. stdout is where print/display
// write; a nil writer defaults to os.Stdout.
func registerMisc(rootScope *value.Scope, stdout io.Writer) {
	if stdout == nil {
		stdout = os.Stdout
	}
	define(rootScope, "apply", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("apply: expected 2 arguments, got %d", len(args))
		}
		i, err := asInterp(ev, "apply")
		if err != nil {
			return nil, err
		}
		seq, ok := args[1].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("apply: second argument must be a sequence, got %s", args[1].Type())
		}
		return i.Apply(args[0], seq.Items)
	})
	define(rootScope, "concat", func(ev interface{}, args []value.Value) (value.Value, error) {
		var b strings.Builder
		for _, a := range args {
			b.WriteString(a.String())
		}
		return value.String(b.String()), nil
	})
	define(rootScope, "format", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) < 1 {
			return nil, fmt.Errorf("format: expected at least 1 argument")
		}
		tmpl, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("format: first argument must be a string, got %s", args[0].Type())
		}
		return formatTemplate(string(tmpl), value.NewSequence(args[1:]...))
	})
	define(rootScope, "index", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("index: expected 2 arguments, got %d", len(args))
		}
		n, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		switch c := args[0].(type) {
		case *value.Sequence:
			if n < 0 || int(n) >= len(c.Items) {
				return nil, fmt.Errorf("index: out of range: %d", n)
			}
			return c.Items[n], nil
		case value.String:
			if n < 0 || int(n) >= len(c) {
				return nil, fmt.Errorf("index: out of range: %d", n)
			}
			return value.String(c[n]), nil
		default:
			return nil, fmt.Errorf("index: not indexable: %s", args[0].Type())
		}
	})
	define(rootScope, "slice", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("slice: expected 3 arguments, got %d", len(args))
		}
		lo, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		hi, err := toInt(args[2])
		if err != nil {
			return nil, err
		}
		switch c := args[0].(type) {
		case *value.Sequence:
			lo, hi = clampRange(lo, hi, len(c.Items))
			return value.NewSequence(c.Items[lo:hi]...), nil
		case value.String:
			lo, hi = clampRange(lo, hi, len(c))
			return value.String(c[lo:hi]), nil
		default:
			return nil, fmt.Errorf("slice: not sliceable: %s", args[0].Type())
		}
	})
	define(rootScope, "dict-set", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 3 {
			return nil, fmt.Errorf("dict-set: expected 3 arguments, got %d", len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("dict-set: expected a sequence, got %s", args[0].Type())
		}
		n, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 || int(n) >= len(seq.Items) {
			return nil, fmt.Errorf("dict-set: out of range: %d", n)
		}
		seq.Items[n] = args[2]
		return value.Nil, nil
	})
	define(rootScope, "del", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("del: expected 2 arguments, got %d", len(args))
		}
		seq, ok := args[0].(*value.Sequence)
		if !ok {
			return nil, fmt.Errorf("del: expected a sequence, got %s", args[0].Type())
		}
		n, err := toInt(args[1])
		if err != nil {
			return nil, err
		}
		if n < 0 || int(n) >= len(seq.Items) {
			return nil, fmt.Errorf("del: out of range: %d", n)
		}
		seq.Items = append(seq.Items[:n], seq.Items[n+1:]...)
		return value.Nil, nil
	})
	define(rootScope, "macroexpand", func(ev interface{}, args []value.Value) (value.Value, error) {
		return expandBuiltin(rootScope, ev, args, "macroexpand", macroexpand.MacroExpand)
	})
	define(rootScope, "macroexpand-1", func(ev interface{}, args []value.Value) (value.Value, error) {
		return expandBuiltin(rootScope, ev, args, "macroexpand-1", macroexpand.MacroExpand1)
	})
	define(rootScope, "macroexpand_r", func(ev interface{}, args []value.Value) (value.Value, error) {
		return expandBuiltin(rootScope, ev, args, "macroexpand_r", macroexpand.MacroExpandR)
	})
	define(rootScope, "print", printFn(stdout, true))
	define(rootScope, "display", printFn(stdout, false))
	define(rootScope, "include", includeFn(rootScope))
	define(rootScope, "call-with-current-continuation", callCC)
}

// callCC reports continuations as unsupported: an escaping
// continuation needs cooperative-threading support from the host that
// this interpreter does not carry, and a silent stub would be worse
// than a clear error.
func callCC(ev interface{}, args []value.Value) (value.Value, error) {
	return nil, fmt.Errorf("call-with-current-continuation: not supported in this implementation")
}

type expandFunc func(scope *value.Scope, applier macroexpand.Applier, form value.Value) (value.Value, error)

func expandBuiltin(rootScope *value.Scope, ev interface{}, args []value.Value, name string, fn expandFunc) (value.Value, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%s: expected 1 argument, got %d", name, len(args))
	}
	i, err := asInterp(ev, name)
	if err != nil {
		return nil, err
	}
	return fn(rootScope, i, args[0])
}

func printFn(w io.Writer, newline bool) value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			if s, ok := a.(value.String); ok {
				parts[i] = string(s)
			} else {
				parts[i] = printer.External(a)
			}
		}
		line := strings.Join(parts, " ")
		if newline {
			fmt.Fprintln(w, line)
		} else {
			fmt.Fprint(w, line)
		}
		return value.Nil, nil
	}
}

// includeFn reads a PSIL source file, strips a leading `#!` shebang
// line, and runs it through read, macro-expand, eval.
func includeFn(rootScope *value.Scope) value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("include: expected 1 argument, got %d", len(args))
		}
		path, ok := args[0].(value.String)
		if !ok {
			return nil, fmt.Errorf("include: expected a string path, got %s", args[0].Type())
		}
		i, err := asInterp(ev, "include")
		if err != nil {
			return nil, err
		}
		data, err := os.ReadFile(string(path))
		if err != nil {
			return nil, fmt.Errorf("include: %w", err)
		}
		src := string(data)
		if strings.HasPrefix(src, "#!") {
			if idx := strings.IndexByte(src, '\n'); idx >= 0 {
				src = src[idx+1:]
			} else {
				src = ""
			}
		}
		forms, err := reader.ReadString(src)
		if err != nil {
			return nil, fmt.Errorf("include: parse error in %s: %w", path, err)
		}
		return evalForms(rootScope, i, forms)
	}
}

// evalForms macro-expands and evaluates each top-level form in turn,
// one at a time, rather than expanding the whole batch before
// evaluating any of it: a later form's macro calls must see macros
// that an earlier form in the same source just defmacro'd, the same
// way a REPL necessarily processes one form at a time.
func evalForms(scope *value.Scope, i interp, forms []value.Value) (value.Value, error) {
	var result value.Value = value.Nil
	for _, f := range forms {
		expanded, err := macroexpand.MacroExpandR(scope, i, f)
		if err != nil {
			return nil, err
		}
		v, err := i.Eval(scope, expanded)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

func clampRange(lo, hi int64, n int) (int64, int64) {
	if lo < 0 {
		lo = 0
	}
	if hi > int64(n) {
		hi = int64(n)
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

// formatTemplate implements a minimal Python-%-style template: %s
// substitutes the next argument (a string as-is, any other value in
// its external form), %d an integer, %% a literal percent.
func formatTemplate(tmpl string, args *value.Sequence) (value.Value, error) {
	var b strings.Builder
	ai := 0
	next := func() (value.Value, error) {
		if ai >= len(args.Items) {
			return nil, fmt.Errorf("format: not enough arguments for template %q", tmpl)
		}
		v := args.Items[ai]
		ai++
		return v, nil
	}
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c != '%' || i == len(tmpl)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch tmpl[i] {
		case '%':
			b.WriteByte('%')
		case 's':
			v, err := next()
			if err != nil {
				return nil, err
			}
			if s, ok := v.(value.String); ok {
				b.WriteString(string(s))
			} else {
				b.WriteString(printer.External(v))
			}
		case 'd':
			v, err := next()
			if err != nil {
				return nil, err
			}
			n, err := toInt(v)
			if err != nil {
				return nil, err
			}
			b.WriteString(strconv.FormatInt(n, 10))
		default:
			b.WriteByte('%')
			b.WriteByte(tmpl[i])
		}
	}
	return value.String(b.String()), nil
}
