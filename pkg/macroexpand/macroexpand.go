// Package macroexpand implements PSIL's whole-program macro expander:
// MacroExpand applies one macro call to its expansion; MacroExpandR
// recursively expands an entire form ahead of evaluation, respecting
// quote/quasiquote nesting.
package macroexpand

import (
	"fmt"

	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

// Applier evaluates a macro's body in its closure scope against
// unevaluated argument forms, returning the replacement form.
// eval.Evaluator satisfies this directly; the interface keeps this
// package independent of the evaluator's concrete type.
type Applier interface {
	ApplyMacro(m *value.Macro, args []value.Value) (value.Value, error)
}

// InvalidUnquoteDepthError is raised when unquote/unquote-splicing
// appears with no enclosing quasiquote during expansion.
type InvalidUnquoteDepthError struct{ Form string }

func (e *InvalidUnquoteDepthError) Error() string {
	return "invalid unquote depth: " + e.Form
}

// MacroExpandR fully expands every macro call reachable from form,
// respecting quote/quasiquote/lambda-parameter-list exemptions.
func MacroExpandR(scope *value.Scope, applier Applier, form value.Value) (value.Value, error) {
	return expandR(scope, applier, form, 0, false)
}

// MacroExpand expands form repeatedly until its head no longer names
// a macro.
func MacroExpand(scope *value.Scope, applier Applier, form value.Value) (value.Value, error) {
	return macroexpand(scope, applier, form, false)
}

// MacroExpand1 expands form exactly one step.
func MacroExpand1(scope *value.Scope, applier Applier, form value.Value) (value.Value, error) {
	return macroexpand(scope, applier, form, true)
}

// ExpandAll runs MacroExpandR over each top-level form in order.
func ExpandAll(scope *value.Scope, applier Applier, forms []value.Value) ([]value.Value, error) {
	out := make([]value.Value, 0, len(forms))
	for _, f := range forms {
		v, err := MacroExpandR(scope, applier, f)
		if err != nil {
			return nil, err
		}
		if !isAbsent(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// isAbsent reports whether a macro expansion produced "nothing" — a
// macro may legitimately expand to nothing, e.g. a (comment …) form.
// A macro's body evaluates like any function body, so the signal is
// PSIL's own absent-result value (value.Nil), not a Go nil interface —
// ApplyMacro never returns the latter on success.
func isAbsent(v value.Value) bool {
	if v == nil {
		return true
	}
	_, ok := v.(value.NilValue)
	return ok
}

// macroexpand applies one macro call to its expansion: if form is a
// sequence whose head resolves globally to a Macro, apply it to the
// unevaluated tail to obtain a new form; repeat unless once is set or
// the head no longer names a macro.
func macroexpand(scope *value.Scope, applier Applier, form value.Value, once bool) (value.Value, error) {
	for {
		seq, ok := form.(*value.Sequence)
		if !ok || len(seq.Items) == 0 {
			return form, nil
		}
		head, ok := seq.Items[0].(*symbol.Symbol)
		if !ok {
			return form, nil
		}
		v, ok := scope.Lookup(head.Name)
		if !ok {
			return form, nil
		}
		m, ok := v.(*value.Macro)
		if !ok {
			return form, nil
		}
		expanded, err := applier.ApplyMacro(m, seq.Items[1:])
		if err != nil {
			return nil, err
		}
		form = expanded
		if once {
			return form, nil
		}
	}
}

// expandR is the recursive whole-program expansion walk. depth tracks
// quasiquote nesting (incremented inside
// quasiquote, decremented inside unquote/unquote-splicing); quoted
// tracks whether we are inside a quote form, where children are
// structurally traversed but never macro-expanded.
func expandR(scope *value.Scope, applier Applier, form value.Value, depth int, quoted bool) (value.Value, error) {
	seq, ok := form.(*value.Sequence)
	if !ok {
		return form, nil
	}
	if len(seq.Items) == 0 {
		return form, nil
	}
	if head, ok := seq.Items[0].(*symbol.Symbol); ok {
		switch head {
		case symbol.Quote:
			return walkChildren(scope, applier, seq, depth, true)
		case symbol.Quasiquote:
			return expandQuasiquoteChildren(scope, applier, seq, depth, quoted)
		case symbol.Unquote, symbol.UnquoteSplicing:
			if depth <= 0 {
				return nil, &InvalidUnquoteDepthError{Form: head.Name}
			}
			return expandQuasiquoteChildren(scope, applier, seq, depth-1, false)
		case symbol.Lambda:
			return expandLambdaChildren(scope, applier, seq, depth, quoted)
		}
	}
	if depth == 0 && !quoted {
		expanded, err := macroexpand(scope, applier, form, false)
		if err != nil {
			return nil, err
		}
		seq2, ok := expanded.(*value.Sequence)
		if !ok {
			return expanded, nil
		}
		return walkChildren(scope, applier, seq2, depth, quoted)
	}
	return walkChildren(scope, applier, seq, depth, quoted)
}

// expandQuasiquoteChildren recurses into a (quasiquote X) or
// (unquote X)/(unquote-splicing X) form's single child at the given
// depth, preserving the wrapping head symbol.
func expandQuasiquoteChildren(scope *value.Scope, applier Applier, seq *value.Sequence, depth int, quoted bool) (value.Value, error) {
	if len(seq.Items) != 2 {
		return nil, fmt.Errorf("%s: expected exactly 1 operand", seq.Items[0].String())
	}
	head := seq.Items[0]
	var childDepth int
	switch head {
	case symbol.Quasiquote:
		childDepth = depth + 1
	default:
		childDepth = depth
	}
	inner, err := expandR(scope, applier, seq.Items[1], childDepth, quoted)
	if err != nil {
		return nil, err
	}
	if inner == nil {
		return nil, nil
	}
	return value.NewSequence(head, inner), nil
}

// expandLambdaChildren recurses into a lambda form's body only,
// leaving the parameter list untouched.
func expandLambdaChildren(scope *value.Scope, applier Applier, seq *value.Sequence, depth int, quoted bool) (value.Value, error) {
	if len(seq.Items) < 2 {
		return seq, nil
	}
	out := make([]value.Value, 0, len(seq.Items))
	out = append(out, seq.Items[0], seq.Items[1])
	for _, child := range seq.Items[2:] {
		expanded, err := expandR(scope, applier, child, depth, quoted)
		if err != nil {
			return nil, err
		}
		if isAbsent(expanded) {
			continue
		}
		out = append(out, expanded)
	}
	return value.NewSequence(out...), nil
}

// walkChildren recurses into every element of seq at the given
// depth/quoted state, dropping any child that expands to nothing.
func walkChildren(scope *value.Scope, applier Applier, seq *value.Sequence, depth int, quoted bool) (value.Value, error) {
	out := make([]value.Value, 0, len(seq.Items))
	for _, child := range seq.Items {
		expanded, err := expandR(scope, applier, child, depth, quoted)
		if err != nil {
			return nil, err
		}
		if isAbsent(expanded) {
			continue
		}
		out = append(out, expanded)
	}
	return value.NewSequence(out...), nil
}
