package macroexpand_test

import (
	"testing"

	"github.com/gopsil/psil/pkg/builtins"
	"github.com/gopsil/psil/pkg/eval"
	"github.com/gopsil/psil/pkg/macroexpand"
	"github.com/gopsil/psil/pkg/reader"
	"github.com/gopsil/psil/pkg/value"
)

func newScope() *value.Scope {
	scope := value.NewScope(nil)
	builtins.Install(scope)
	return scope
}

func readOne(t *testing.T, src string) value.Value {
	t.Helper()
	forms, err := reader.ReadString(src)
	if err != nil {
		t.Fatalf("ReadString(%q): %v", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("ReadString(%q): got %d forms, want 1", src, len(forms))
	}
	return forms[0]
}

func TestMacroExpandRIdempotentWithoutMacros(t *testing.T) {
	scope := newScope()
	ev := eval.New()
	form := readOne(t, "(+ 1 (* 2 3))")

	once, err := macroexpand.MacroExpandR(scope, ev, form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	twice, err := macroexpand.MacroExpandR(scope, ev, once)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(once, twice) {
		t.Errorf("macroexpand_r not idempotent: %v != %v", once, twice)
	}
}

func TestMacroExpandRExpandsUserMacro(t *testing.T) {
	scope := newScope()
	ev := eval.New()
	defmacro := readOne(t, "(defmacro my-and (a b) `(if ,a (if ,b true false) false))")
	if _, err := ev.Eval(scope, defmacro); err != nil {
		t.Fatalf("unexpected error defining macro: %v", err)
	}

	form := readOne(t, "(my-and 1 2)")
	expanded, err := macroexpand.MacroExpandR(scope, ev, form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := readOne(t, "(if 1 (if 2 true false) false)")
	if !value.Equal(expanded, want) {
		t.Errorf("got %v, want %v", expanded, want)
	}
}

func TestMacroExpandRDoesNotDescendPastQuote(t *testing.T) {
	scope := newScope()
	ev := eval.New()
	defmacro := readOne(t, "(defmacro noop (x) x)")
	if _, err := ev.Eval(scope, defmacro); err != nil {
		t.Fatalf("unexpected error defining macro: %v", err)
	}

	form := readOne(t, "(quote (noop 1))")
	expanded, err := macroexpand.MacroExpandR(scope, ev, form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !value.Equal(expanded, form) {
		t.Errorf("quoted macro call should survive unexpanded: got %v, want %v", expanded, form)
	}
}

func TestInvalidUnquoteDepthOutsideQuasiquote(t *testing.T) {
	scope := newScope()
	ev := eval.New()
	form := readOne(t, "(unquote 1)")
	_, err := macroexpand.MacroExpandR(scope, ev, form)
	if _, ok := err.(*macroexpand.InvalidUnquoteDepthError); !ok {
		t.Fatalf("got error %T (%v), want *macroexpand.InvalidUnquoteDepthError", err, err)
	}
}

func TestMacroExpandingToNilIsDropped(t *testing.T) {
	scope := newScope()
	ev := eval.New()
	defmacro := readOne(t, "(defmacro vanish (. body) nil)")
	if _, err := ev.Eval(scope, defmacro); err != nil {
		t.Fatalf("unexpected error defining macro: %v", err)
	}

	form := readOne(t, "(f (vanish 1) 2)")
	expanded, err := macroexpand.MacroExpandR(scope, ev, form)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := readOne(t, "(f 2)")
	if !value.Equal(expanded, want) {
		t.Errorf("got %v, want %v", expanded, want)
	}
}
