// Package value defines PSIL's runtime value model: the tagged Value
// variant, the lexical Scope chain, and the
// Function/Macro value shapes that close over a Scope.
//
// Scope, Function and Macro live alongside Value rather than in their
// own packages because they are mutually referential: a Function closes
// over a *Scope, and a *Scope's bindings hold Values including
// Functions.
package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gopsil/psil/pkg/symbol"
)

// Value is the interface every PSIL value implements.
type Value interface {
	// String renders the value for diagnostics (not necessarily
	// read-back syntax; see package printer for that).
	String() string
	// Type names the value's type for error messages.
	Type() string
}

// Equal reports structural equality for atoms and sequences, identity
// equality for symbols, and name equality for builtins.
// It is a free function rather than a Value method so that
// pkg/symbol — which pkg/value depends on — need not import pkg/value
// back to implement it.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == b
	}
	switch av := a.(type) {
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Boolean:
		bv, ok := b.(Boolean)
		return ok && av == bv
	case *symbol.Symbol:
		bv, ok := b.(*symbol.Symbol)
		return ok && av == bv
	case *Sequence:
		bv, ok := b.(*Sequence)
		if !ok || len(av.Items) != len(bv.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case NilValue:
		_, ok := b.(NilValue)
		return ok
	case *Function:
		bv, ok := b.(*Function)
		return ok && av == bv
	case *Macro:
		bv, ok := b.(*Macro)
		return ok && av == bv
	case *Builtin:
		bv, ok := b.(*Builtin)
		return ok && av.Name == bv.Name
	default:
		return a == b
	}
}

// Truthy implements host truthiness conventions: nil,
// false, zero and the empty sequence are falsey; everything else is
// truthy.
func Truthy(v Value) bool {
	switch t := v.(type) {
	case NilValue:
		return false
	case Boolean:
		return bool(t)
	case Int:
		return t != 0
	case Float:
		return t != 0
	case *Sequence:
		return len(t.Items) > 0
	default:
		return true
	}
}

// Int is an integer atom.
type Int int64

func (n Int) String() string { return strconv.FormatInt(int64(n), 10) }
func (n Int) Type() string   { return "integer" }

// Float is a floating-point atom.
type Float float64

// String always renders a '.' or exponent so the result reads back as
// a Float, never an Int: the reader's int/float distinction must
// survive a print/read round trip.
func (n Float) String() string {
	f := float64(n)
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") && !math.IsInf(f, 0) && !math.IsNaN(f) {
		s += ".0"
	}
	return s
}
func (n Float) Type() string { return "float" }

// String is an immutable string atom.
type String string

func (s String) String() string { return string(s) }
func (s String) Type() string   { return "string" }

// Boolean holds the result of a comparison or logical builtin.
type Boolean bool

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Boolean) Type() string { return "boolean" }

// NilValue is PSIL's absent result. There is exactly one value of this
// type, Nil.
type NilValue struct{}

func (NilValue) String() string { return "nil" }
func (NilValue) Type() string   { return "nil" }

// Nil is the singleton absent-result value.
var Nil Value = NilValue{}

// Sequence is PSIL's list: an ordered, mutable collection of values.
// The empty sequence doubles as the empty list; there is no separate
// dotted-pair cons-cell concept — the cons builtin prepends and cdr
// slices the tail.
type Sequence struct {
	Items []Value
}

// NewSequence builds a sequence from items, copying the slice header
// but not the backing array (callers that need isolation should pass a
// fresh slice).
func NewSequence(items ...Value) *Sequence {
	return &Sequence{Items: items}
}

func (q *Sequence) String() string {
	s := "("
	for i, it := range q.Items {
		if i > 0 {
			s += " "
		}
		s += it.String()
	}
	return s + ")"
}

func (q *Sequence) Type() string { return "sequence" }

// Builtin wraps a host-callable. Fn receives already
// evaluated arguments.
type Builtin struct {
	Name string
	Fn   BuiltinFunc
}

// BuiltinFunc is the signature every host-callable implements. ev is
// typed as interface{} here to avoid pkg/value depending on pkg/eval;
// builtins that need to re-enter evaluation (apply, macroexpand) type
// assert it to a small interface of the evaluator methods they call.
type BuiltinFunc func(ev interface{}, args []Value) (Value, error)

func (b *Builtin) String() string { return fmt.Sprintf("<builtin %s>", b.Name) }
func (b *Builtin) Type() string   { return "builtin" }
