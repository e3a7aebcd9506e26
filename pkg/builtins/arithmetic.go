package builtins

import (
	"fmt"
	"math"

	"github.com/gopsil/psil/pkg/value"
)

// anyFloat reports whether any operand is a Float, in which case the
// whole operation promotes to floating point.
func anyFloat(args []value.Value) bool {
	for _, a := range args {
		if _, ok := a.(value.Float); ok {
			return true
		}
	}
	return false
}

func toFloat(v value.Value) (float64, error) {
	switch n := v.(type) {
	case value.Int:
		return float64(n), nil
	case value.Float:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected a number, got %s", v.Type())
}

func toInt(v value.Value) (int64, error) {
	switch n := v.(type) {
	case value.Int:
		return int64(n), nil
	case value.Float:
		return int64(n), nil
	}
	return 0, fmt.Errorf("expected a number, got %s", v.Type())
}

// numericFold implements the variadic arithmetic operators: zero args
// yield seed; one arg is handled by unary; two-or-more fold pairwise
// left-to-right via intOp/floatOp, promoting to float if any operand
// is a Float. A nil floatOp marks an integer-only operator (shifts,
// bitwise).
func numericFold(name string, seed value.Value, unary func(value.Value) (value.Value, error), intOp func(a, b int64) (int64, error), floatOp func(a, b float64) float64) value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) == 0 {
			return seed, nil
		}
		if len(args) == 1 {
			if floatOp == nil && anyFloat(args) {
				return nil, fmt.Errorf("%s: expected integer operands", name)
			}
			return unary(args[0])
		}
		if anyFloat(args) {
			if floatOp == nil {
				return nil, fmt.Errorf("%s: expected integer operands", name)
			}
			acc, err := toFloat(args[0])
			if err != nil {
				return nil, err
			}
			for _, a := range args[1:] {
				f, err := toFloat(a)
				if err != nil {
					return nil, err
				}
				acc = floatOp(acc, f)
			}
			return value.Float(acc), nil
		}
		acc, err := toInt(args[0])
		if err != nil {
			return nil, err
		}
		for _, a := range args[1:] {
			n, err := toInt(a)
			if err != nil {
				return nil, err
			}
			acc, err = intOp(acc, n)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
		}
		return value.Int(acc), nil
	}
}

func registerArithmetic(scope *value.Scope) {
	define(scope, "+", numericFold("+", value.Int(0),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) { return a + b, nil },
		func(a, b float64) float64 { return a + b },
	))
	define(scope, "*", numericFold("*", value.Int(1),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) { return a * b, nil },
		func(a, b float64) float64 { return a * b },
	))
	define(scope, "-", numericFold("-", value.Int(0),
		func(v value.Value) (value.Value, error) {
			if f, ok := v.(value.Float); ok {
				return value.Float(-f), nil
			}
			n, err := toInt(v)
			if err != nil {
				return nil, err
			}
			return value.Int(-n), nil
		},
		func(a, b int64) (int64, error) { return a - b, nil },
		func(a, b float64) float64 { return a - b },
	))
	define(scope, "/", numericFold("/", value.Int(1),
		func(v value.Value) (value.Value, error) {
			f, err := toFloat(v)
			if err != nil {
				return nil, err
			}
			if f == 0 {
				return nil, fmt.Errorf("/: division by zero")
			}
			return value.Float(1 / f), nil
		},
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			return a / b, nil
		},
		func(a, b float64) float64 { return a / b },
	))
	define(scope, "//", numericFold("//", value.Int(1),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, fmt.Errorf("division by zero")
			}
			q := a / b
			if (a%b != 0) && ((a < 0) != (b < 0)) {
				q--
			}
			return q, nil
		},
		func(a, b float64) float64 { return math.Floor(a / b) },
	))
	define(scope, "%", modBuiltin())
	define(scope, "**", powBuiltin())
	define(scope, "<<", numericFold("<<", value.Int(0),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) {
			if b < 0 {
				return 0, fmt.Errorf("negative shift count")
			}
			return a << uint(b), nil
		},
		nil,
	))
	define(scope, ">>", numericFold(">>", value.Int(0),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) {
			if b < 0 {
				return 0, fmt.Errorf("negative shift count")
			}
			return a >> uint(b), nil
		},
		nil,
	))
	define(scope, "&", numericFold("&", value.Int(-1),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) { return a & b, nil },
		nil,
	))
	define(scope, "|", numericFold("|", value.Int(0),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) { return a | b, nil },
		nil,
	))
	define(scope, "^", numericFold("^", value.Int(0),
		func(v value.Value) (value.Value, error) { return v, nil },
		func(a, b int64) (int64, error) { return a ^ b, nil },
		nil,
	))
	define(scope, "~", func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("~: expected 1 argument, got %d", len(args))
		}
		if _, ok := args[0].(value.Float); ok {
			return nil, fmt.Errorf("~: expected an integer operand")
		}
		n, err := toInt(args[0])
		if err != nil {
			return nil, err
		}
		return value.Int(^n), nil
	})
}

// powBuiltin implements `**`: integer exponentiation when both
// operands are Ints and the exponent is non-negative, otherwise
// floating-point math.Pow (a negative integer exponent yields a float,
// matching host semantics).
func powBuiltin() value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("**: expected 2 arguments, got %d", len(args))
		}
		if !anyFloat(args) {
			base, err := toInt(args[0])
			if err != nil {
				return nil, err
			}
			exp, err := toInt(args[1])
			if err != nil {
				return nil, err
			}
			if exp >= 0 {
				r := int64(1)
				for i := int64(0); i < exp; i++ {
					r *= base
				}
				return value.Int(r), nil
			}
		}
		a, err := toFloat(args[0])
		if err != nil {
			return nil, err
		}
		b, err := toFloat(args[1])
		if err != nil {
			return nil, err
		}
		return value.Float(math.Pow(a, b)), nil
	}
}

// modBuiltin implements `%`: string templating via the same
// mini-formatter the format builtin uses when the left operand is a
// string, else numeric modulo (any other non-number operand is an
// error).
func modBuiltin() value.BuiltinFunc {
	return func(ev interface{}, args []value.Value) (value.Value, error) {
		if len(args) != 2 {
			return nil, fmt.Errorf("%%: expected 2 arguments, got %d", len(args))
		}
		left, right := args[0], args[1]
		if leftStr, ok := left.(value.String); ok {
			tmplArgs, ok := right.(*value.Sequence)
			if !ok {
				tmplArgs = value.NewSequence(right)
			}
			return formatTemplate(string(leftStr), tmplArgs)
		}
		if anyFloat(args) {
			a, err := toFloat(left)
			if err != nil {
				return nil, err
			}
			b, err := toFloat(right)
			if err != nil {
				return nil, err
			}
			if b == 0 {
				return nil, fmt.Errorf("%%: division by zero")
			}
			return value.Float(modFloat(a, b)), nil
		}
		a, err := toInt(left)
		if err != nil {
			return nil, err
		}
		b, err := toInt(right)
		if err != nil {
			return nil, err
		}
		if b == 0 {
			return nil, fmt.Errorf("%%: division by zero")
		}
		m := a % b
		if m != 0 && ((m < 0) != (b < 0)) {
			m += b
		}
		return value.Int(m), nil
	}
}

func modFloat(a, b float64) float64 {
	m := math.Mod(a, b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return m
}
