// Package eval implements PSIL's tree-walking evaluator: special
// forms, quasi-quotation, function/macro application and the
// tail-call trampoline.
package eval

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gopsil/psil/pkg/printer"
	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

// HostBridge lets an embedding host answer `.NAME` attribute-call
// forms: evaluate the first argument, fetch attribute NAME from it on
// the host, and call it with the evaluated remaining arguments. The
// bridge is deliberately minimal — Evaluator only recognizes and
// routes the call-form syntax to whatever the embedder supplies.
type HostBridge interface {
	Attr(recv value.Value, name string, args []value.Value) (value.Value, error)
}

// Evaluator holds the state shared across a single evaluation run: the
// diagnostic writer for the per-call error notice and an optional host
// bridge.
type Evaluator struct {
	Stderr io.Writer
	Bridge HostBridge
}

// Option configures an Evaluator at construction.
type Option func(*Evaluator)

// WithStderr overrides the per-call diagnostic writer.
func WithStderr(w io.Writer) Option {
	return func(ev *Evaluator) { ev.Stderr = w }
}

// WithBridge installs a HostBridge for `.NAME` attribute-call forms.
func WithBridge(b HostBridge) Option {
	return func(ev *Evaluator) { ev.Bridge = b }
}

// New returns an Evaluator writing diagnostics to os.Stderr by
// default, applying any Options over that default.
func New(opts ...Option) *Evaluator {
	ev := &Evaluator{Stderr: os.Stderr}
	for _, opt := range opts {
		opt(ev)
	}
	return ev
}

// tailCall is the trampoline's bounce sentinel: a resolved callable
// and its already-evaluated arguments, returned up the call stack
// instead of invoked recursively so tail calls run in constant Go
// stack space.
type tailCall struct {
	Callable value.Value
	Args     []value.Value
	// Form is the call expression that produced this bounce, kept
	// around so the trampoline loop can still name the failing call in
	// its diagnostic even though the call itself no longer sits on the
	// Go call stack.
	Form value.Value
}

// Eval evaluates form in scope and runs the tail-call trampoline to
// completion: any Function application occurring in tail position
// bounces back to this loop instead of recursing, so self- and
// mutually-tail-recursive PSIL programs run in O(1) Go stack frames
// regardless of PSIL-level recursion depth.
func (ev *Evaluator) Eval(scope *value.Scope, form value.Value) (value.Value, error) {
	v, bounce, err := ev.evalTail(scope, form, true)
	for {
		if err != nil {
			return nil, err
		}
		if bounce == nil {
			return v, nil
		}
		next := bounce
		v, bounce, err = ev.applyTail(next.Callable, next.Args)
		if err != nil {
			ev.reportError(next.Form, err)
		}
	}
}

// EvalAll evaluates each form in order, returning the last result (or
// nil if forms is empty). Each form runs to completion before the next
// starts, matching top-level REPL/batch semantics.
func (ev *Evaluator) EvalAll(scope *value.Scope, forms []value.Value) (value.Value, error) {
	var result value.Value = value.Nil
	for _, f := range forms {
		v, err := ev.Eval(scope, f)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// Apply invokes callable with already-evaluated args and runs the
// trampoline to completion, for host/builtin code (such as the apply
// builtin) that needs to re-enter evaluation.
func (ev *Evaluator) Apply(callable value.Value, args []value.Value) (value.Value, error) {
	return ev.runApply(callable, args)
}

// ApplyMacro evaluates a macro's body against unevaluated argument
// forms in a fresh child of its closure scope, returning the form that
// replaces the call site.
func (ev *Evaluator) ApplyMacro(m *value.Macro, args []value.Value) (value.Value, error) {
	scope, err := value.BindArgs(m.Closure, m.Params, m.Fixed, m.Rest, args)
	if err != nil {
		return nil, err
	}
	var result value.Value = value.Nil
	for _, form := range m.Body {
		v, err := ev.evalNonTail(scope, form)
		if err != nil {
			return nil, err
		}
		result = v
	}
	return result, nil
}

// reportError emits the per-call diagnostic `* <external(form)>` to
// Stderr on any error propagating out of a form evaluation; the error
// itself is returned to the caller unmodified, so the diagnostic only
// ever supplements the error, it never replaces it.
func (ev *Evaluator) reportError(form value.Value, err error) {
	if ev.Stderr == nil || form == nil {
		return
	}
	fmt.Fprintln(ev.Stderr, "* "+printer.External(form))
}

// evalTail is the core recursive evaluation rule: it dispatches on
// form's runtime type/head symbol and, on the way back out, reports
// any error against this form before letting it propagate. Since every
// special form and call argument routes back through evalTail at some
// point, a failure nested N forms deep surfaces one diagnostic line per
// enclosing form, innermost first, as the error unwinds through each
// of those calls.
//
// tail indicates whether form occupies a tail position of its
// enclosing function/if; when true and form resolves to a Function
// application, evalTail returns a bounce instead of recursing into the
// call.
func (ev *Evaluator) evalTail(scope *value.Scope, form value.Value, tail bool) (value.Value, *tailCall, error) {
	v, bounce, err := ev.dispatchTail(scope, form, tail)
	if err != nil {
		ev.reportError(form, err)
	}
	return v, bounce, err
}

// dispatchTail is evalTail's actual dispatch table, split out so
// evalTail can wrap every return path with the diagnostic above
// without repeating it in every case.
func (ev *Evaluator) dispatchTail(scope *value.Scope, form value.Value, tail bool) (value.Value, *tailCall, error) {
	switch f := form.(type) {
	case *symbol.Symbol:
		if strings.HasPrefix(f.Name, ":") {
			return f, nil, nil
		}
		v, ok := scope.Lookup(f.Name)
		if !ok {
			return nil, nil, &value.UndefinedSymbolError{Name: f.Name}
		}
		return v, nil, nil
	case *value.Sequence:
		if len(f.Items) == 0 {
			return f, nil, nil
		}
		if head, ok := f.Items[0].(*symbol.Symbol); ok {
			switch head {
			case symbol.Quote:
				return ev.evalQuote(f)
			case symbol.If:
				return ev.evalIf(scope, f, tail)
			case symbol.Lambda:
				return ev.evalLambda(scope, f)
			case symbol.Define:
				return ev.evalDefine(scope, f)
			case symbol.Defmacro:
				return ev.evalDefmacro(scope, f)
			case symbol.Set:
				return ev.evalSet(scope, f)
			case symbol.Quasiquote:
				return ev.evalQuasiquote(scope, f)
			}
			if strings.HasPrefix(head.Name, ".") && len(head.Name) > 1 {
				return ev.evalHostAttr(scope, head.Name[1:], f)
			}
		}
		return ev.evalCall(scope, f, tail)
	default:
		// Atom: number, string, boolean, nil, function, macro, builtin.
		return form, nil, nil
	}
}

func (ev *Evaluator) evalQuote(f *value.Sequence) (value.Value, *tailCall, error) {
	if len(f.Items) != 2 {
		return nil, nil, &ArityError{Form: "quote", Want: "1", Got: len(f.Items) - 1}
	}
	return f.Items[1], nil, nil
}

func (ev *Evaluator) evalIf(scope *value.Scope, f *value.Sequence, tail bool) (value.Value, *tailCall, error) {
	n := len(f.Items) - 1
	if n != 2 && n != 3 {
		return nil, nil, &ArityError{Form: "if", Want: "2 or 3", Got: n}
	}
	cond, err := ev.evalNonTail(scope, f.Items[1])
	if err != nil {
		return nil, nil, err
	}
	if value.Truthy(cond) {
		return ev.evalTail(scope, f.Items[2], tail)
	}
	if n == 3 {
		return ev.evalTail(scope, f.Items[3], tail)
	}
	return value.Nil, nil, nil
}

func (ev *Evaluator) evalLambda(scope *value.Scope, f *value.Sequence) (value.Value, *tailCall, error) {
	if len(f.Items) < 3 {
		return nil, nil, &ArityError{Form: "lambda", Want: "at least 2", Got: len(f.Items) - 1}
	}
	fn, err := value.NewFunction("", f.Items[1], f.Items[2:], scope)
	if err != nil {
		return nil, nil, err
	}
	return fn, nil, nil
}

// evalDefine implements both `(define NAME VALUE)` and the
// `(define (NAME PARAMS…) BODY…)` function-definition sugar.
func (ev *Evaluator) evalDefine(scope *value.Scope, f *value.Sequence) (value.Value, *tailCall, error) {
	if len(f.Items) < 3 {
		return nil, nil, &ArityError{Form: "define", Want: "at least 2", Got: len(f.Items) - 1}
	}
	if sig, ok := f.Items[1].(*value.Sequence); ok {
		if len(sig.Items) == 0 {
			return nil, nil, fmt.Errorf("define: empty function signature")
		}
		name, ok := sig.Items[0].(*symbol.Symbol)
		if !ok {
			return nil, nil, fmt.Errorf("define: function name must be a symbol")
		}
		paramSpec := value.NewSequence(sig.Items[1:]...)
		fn, err := value.NewFunction(name.Name, paramSpec, f.Items[2:], scope)
		if err != nil {
			return nil, nil, err
		}
		scope.Define(name.Name, fn)
		return value.Nil, nil, nil
	}
	if len(f.Items) != 3 {
		return nil, nil, &ArityError{Form: "define", Want: "2", Got: len(f.Items) - 1}
	}
	name, ok := f.Items[1].(*symbol.Symbol)
	if !ok {
		return nil, nil, fmt.Errorf("define: name must be a symbol, got %s", f.Items[1].Type())
	}
	v, err := ev.evalNonTail(scope, f.Items[2])
	if err != nil {
		return nil, nil, err
	}
	scope.Define(name.Name, v)
	return value.Nil, nil, nil
}

// evalDefmacro implements `(defmacro NAME PARAMS BODY…)`.
func (ev *Evaluator) evalDefmacro(scope *value.Scope, f *value.Sequence) (value.Value, *tailCall, error) {
	if len(f.Items) < 4 {
		return nil, nil, &ArityError{Form: "defmacro", Want: "at least 3", Got: len(f.Items) - 1}
	}
	name, ok := f.Items[1].(*symbol.Symbol)
	if !ok {
		return nil, nil, fmt.Errorf("defmacro: name must be a symbol, got %s", f.Items[1].Type())
	}
	m, err := value.NewMacro(name.Name, f.Items[2], f.Items[3:], scope)
	if err != nil {
		return nil, nil, err
	}
	scope.Define(name.Name, m)
	return value.Nil, nil, nil
}

func (ev *Evaluator) evalSet(scope *value.Scope, f *value.Sequence) (value.Value, *tailCall, error) {
	if len(f.Items) != 3 {
		return nil, nil, &ArityError{Form: "set!", Want: "2", Got: len(f.Items) - 1}
	}
	name, ok := f.Items[1].(*symbol.Symbol)
	if !ok {
		return nil, nil, &SetNotSymbolError{Got: f.Items[1].Type()}
	}
	v, err := ev.evalNonTail(scope, f.Items[2])
	if err != nil {
		return nil, nil, err
	}
	if err := scope.Set(name.Name, v); err != nil {
		return nil, nil, err
	}
	return v, nil, nil
}

func (ev *Evaluator) evalHostAttr(scope *value.Scope, name string, f *value.Sequence) (value.Value, *tailCall, error) {
	if ev.Bridge == nil {
		return nil, nil, &NotCallableError{Got: "." + name + " (no host bridge installed)"}
	}
	if len(f.Items) < 2 {
		return nil, nil, &ArityError{Form: "." + name, Want: "at least 1", Got: len(f.Items) - 1}
	}
	recv, err := ev.evalNonTail(scope, f.Items[1])
	if err != nil {
		return nil, nil, err
	}
	args, err := ev.evalArgs(scope, f.Items[2:])
	if err != nil {
		return nil, nil, err
	}
	v, err := ev.Bridge.Attr(recv, name, args)
	if err != nil {
		return nil, nil, err
	}
	return v, nil, nil
}

// evalCall handles ordinary call forms: evaluate head and args, then
// dispatch on the head's runtime type.
func (ev *Evaluator) evalCall(scope *value.Scope, f *value.Sequence, tail bool) (value.Value, *tailCall, error) {
	head, err := ev.evalNonTail(scope, f.Items[0])
	if err != nil {
		return nil, nil, err
	}
	args, err := ev.evalArgs(scope, f.Items[1:])
	if err != nil {
		return nil, nil, err
	}
	switch head.(type) {
	case *value.Macro:
		return nil, nil, &NotCallableError{Got: "macro (must have been expanded earlier)"}
	case *value.Function:
		if tail {
			return nil, &tailCall{Callable: head, Args: args, Form: f}, nil
		}
		v, err := ev.runApply(head, args)
		return v, nil, err
	case *value.Builtin:
		v, err := ev.callBuiltin(head.(*value.Builtin), args)
		return v, nil, err
	default:
		return nil, nil, &NotCallableError{Got: head.Type()}
	}
}

func (ev *Evaluator) evalArgs(scope *value.Scope, forms []value.Value) ([]value.Value, error) {
	args := make([]value.Value, len(forms))
	for i, form := range forms {
		v, err := ev.evalNonTail(scope, form)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// evalNonTail evaluates form outside tail position, fully resolving
// any trampoline bounce before returning — every call site other than
// a function's own tail position invokes the callable eagerly.
func (ev *Evaluator) evalNonTail(scope *value.Scope, form value.Value) (value.Value, error) {
	v, bounce, err := ev.evalTail(scope, form, false)
	if err != nil {
		return nil, err
	}
	if bounce != nil {
		return ev.runApply(bounce.Callable, bounce.Args)
	}
	return v, nil
}

// runApply fully resolves a Function/Builtin application, running the
// trampoline loop locally so that a non-tail call site's own internal
// tail recursion still iterates rather than growing the Go stack.
func (ev *Evaluator) runApply(callable value.Value, args []value.Value) (value.Value, error) {
	v, bounce, err := ev.applyTail(callable, args)
	for {
		if err != nil {
			return nil, err
		}
		if bounce == nil {
			return v, nil
		}
		next := bounce
		v, bounce, err = ev.applyTail(next.Callable, next.Args)
		if err != nil {
			ev.reportError(next.Form, err)
		}
	}
}

func (ev *Evaluator) callBuiltin(b *value.Builtin, args []value.Value) (value.Value, error) {
	return b.Fn(ev, args)
}

// applyTail binds args and evaluates callable's body, returning the
// last body form's result in tail position — which may itself be a
// bounce.
func (ev *Evaluator) applyTail(callable value.Value, args []value.Value) (value.Value, *tailCall, error) {
	switch fn := callable.(type) {
	case *value.Builtin:
		v, err := fn.Fn(ev, args)
		return v, nil, err
	case *value.Function:
		scope, err := value.BindArgs(fn.Closure, fn.Params, fn.Fixed, fn.Rest, args)
		if err != nil {
			return nil, nil, err
		}
		if len(fn.Body) == 0 {
			return value.Nil, nil, nil
		}
		for _, form := range fn.Body[:len(fn.Body)-1] {
			if _, err := ev.evalNonTail(scope, form); err != nil {
				return nil, nil, err
			}
		}
		return ev.evalTail(scope, fn.Body[len(fn.Body)-1], true)
	default:
		return nil, nil, &NotCallableError{Got: callable.Type()}
	}
}
