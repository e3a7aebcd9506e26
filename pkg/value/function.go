package value

import (
	"fmt"

	"github.com/gopsil/psil/pkg/symbol"
)

// Function is a user-defined procedure: name, parameter spec, body
// and defining scope. A Function shares, not owns, its closure scope;
// the closure's lifetime is the longest-lived Function that references
// it.
type Function struct {
	Name    string
	Params  []*symbol.Symbol // fixed, then optional; excludes the rest symbol
	Fixed   int              // count of non-optional positional parameters
	Rest    *symbol.Symbol   // nil unless the parameter list has a rest/variadic tail
	Body    []Value
	Closure *Scope
}

func (f *Function) String() string { return fmt.Sprintf("<function %s>", nameOr(f.Name)) }
func (f *Function) Type() string   { return "function" }

// Macro has the same shape as Function, distinguished only by tag so
// the evaluator and expander dispatch differently. A Macro must never
// reach the evaluator as a callable; only the expander applies it.
type Macro struct {
	Name    string
	Params  []*symbol.Symbol
	Fixed   int
	Rest    *symbol.Symbol
	Body    []Value
	Closure *Scope
}

func (m *Macro) String() string { return fmt.Sprintf("<macro %s>", nameOr(m.Name)) }
func (m *Macro) Type() string   { return "macro" }

func nameOr(n string) string {
	if n == "" {
		return "anonymous"
	}
	return n
}

// ParseParams interprets a parameter-spec form:
//
//   - a single symbol R: the entire argument list binds to R (rest=R,
//     params empty, fixed=0);
//   - an ordered sequence of symbols, optionally ending with the
//     literal symbol "." followed by one rest symbol;
//   - any parameter written as a two-element sequence (o name) is
//     optional and does not count toward fixed.
//
// spec is either a *symbol.Symbol (form a) or a *Sequence of parameter
// forms (forms b/c).
func ParseParams(spec Value) (params []*symbol.Symbol, fixed int, rest *symbol.Symbol, err error) {
	if sym, ok := spec.(*symbol.Symbol); ok {
		return nil, 0, sym, nil
	}
	seq, ok := spec.(*Sequence)
	if !ok {
		return nil, 0, nil, fmt.Errorf("invalid parameter list: %s", spec.String())
	}
	items := seq.Items
	if n := len(items); n >= 2 {
		if s, ok := items[n-2].(*symbol.Symbol); ok && s.Name == "." {
			restSym, ok := items[n-1].(*symbol.Symbol)
			if !ok {
				return nil, 0, nil, fmt.Errorf("rest parameter must be a symbol: %s", items[n-1].String())
			}
			rest = restSym
			items = items[:n-2]
		}
	}
	for _, p := range items {
		if optName, ok := asOptional(p); ok {
			params = append(params, optName)
			continue
		}
		sym, ok := p.(*symbol.Symbol)
		if !ok {
			return nil, 0, nil, fmt.Errorf("invalid parameter: %s", p.String())
		}
		params = append(params, sym)
		fixed++
	}
	return params, fixed, rest, nil
}

// asOptional recognizes a parameter written as (o name).
func asOptional(p Value) (name *symbol.Symbol, ok bool) {
	seq, isSeq := p.(*Sequence)
	if !isSeq || len(seq.Items) != 2 {
		return nil, false
	}
	h, hok := seq.Items[0].(*symbol.Symbol)
	if !hok || h != symbol.Optional {
		return nil, false
	}
	n, nok := seq.Items[1].(*symbol.Symbol)
	if !nok {
		return nil, false
	}
	return n, true
}

// NewFunction builds a Function from an unparsed parameter spec, body
// and closing scope (used by the lambda/define special forms).
func NewFunction(name string, paramSpec Value, body []Value, closure *Scope) (*Function, error) {
	params, fixed, rest, err := ParseParams(paramSpec)
	if err != nil {
		return nil, err
	}
	return &Function{Name: name, Params: params, Fixed: fixed, Rest: rest, Body: body, Closure: closure}, nil
}

// NewMacro mirrors NewFunction for defmacro.
func NewMacro(name string, paramSpec Value, body []Value, closure *Scope) (*Macro, error) {
	params, fixed, rest, err := ParseParams(paramSpec)
	if err != nil {
		return nil, err
	}
	return &Macro{Name: name, Params: params, Fixed: fixed, Rest: rest, Body: body, Closure: closure}, nil
}

// BindArgs creates a fresh child scope of closure and binds args
// according to params/fixed/rest: fixed params are required, excess
// args beyond the declared params collect into rest (if any) or are
// rejected, and any positional parameter past fixed that isn't
// supplied binds to Nil.
func BindArgs(closure *Scope, params []*symbol.Symbol, fixed int, rest *symbol.Symbol, args []Value) (*Scope, error) {
	scope := NewScope(closure)
	if len(params) == 0 && rest != nil {
		scope.Define(rest.Name, NewSequence(append([]Value(nil), args...)...))
		return scope, nil
	}
	if len(args) < fixed {
		return nil, fmt.Errorf("too few arguments: want at least %d, got %d", fixed, len(args))
	}
	if rest == nil && len(args) > len(params) {
		return nil, fmt.Errorf("too many arguments: want at most %d, got %d", len(params), len(args))
	}
	for i, p := range params {
		if i < len(args) {
			scope.Define(p.Name, args[i])
		} else {
			scope.Define(p.Name, Nil)
		}
	}
	if rest != nil {
		if len(args) > len(params) {
			scope.Define(rest.Name, NewSequence(append([]Value(nil), args[len(params):]...)...))
		} else {
			scope.Define(rest.Name, NewSequence())
		}
	}
	return scope, nil
}
