package builtins

import (
	"strings"
	"testing"

	"github.com/gopsil/psil/pkg/eval"
	"github.com/gopsil/psil/pkg/reader"
	"github.com/gopsil/psil/pkg/value"
)

func run(t *testing.T, src string) (value.Value, error) {
	t.Helper()
	scope := value.NewScope(nil)
	Install(scope)
	forms, err := reader.ReadString(src)
	if err != nil {
		t.Fatalf("ReadString(%q): %v", src, err)
	}
	ev := eval.New(eval.WithStderr(&strings.Builder{}))
	return ev.EvalAll(scope, forms)
}

func mustRun(t *testing.T, src string) value.Value {
	t.Helper()
	v, err := run(t, src)
	if err != nil {
		t.Fatalf("evaluating %q: unexpected error: %v", src, err)
	}
	return v
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{"(+)", value.Int(0)},
		{"(+ 1 2 3)", value.Int(6)},
		{"(+ 1 2.5)", value.Float(3.5)},
		{"(- 5)", value.Int(-5)},
		{"(- 10 3 2)", value.Int(5)},
		{"(*)", value.Int(1)},
		{"(* 2 3 4)", value.Int(24)},
		{"(/ 2)", value.Float(0.5)},
		{"(/ 7 2)", value.Int(3)},
		{"(/ 7.0 2)", value.Float(3.5)},
		{"(// 7 2)", value.Int(3)},
		{"(// -7 2)", value.Int(-4)},
		{"(% 7 3)", value.Int(1)},
		{"(% -7 3)", value.Int(2)},
		{"(** 2 10)", value.Int(1024)},
		{"(** 2 -1)", value.Float(0.5)},
		{"(<< 1 4)", value.Int(16)},
		{"(>> 16 2)", value.Int(4)},
		{"(& 12 10)", value.Int(8)},
		{"(&)", value.Int(-1)},
		{"(| 12 10)", value.Int(14)},
		{"(^ 12 10)", value.Int(6)},
		{"(~ 0)", value.Int(-1)},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			got := mustRun(t, tc.src)
			if !value.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestArithmeticErrors(t *testing.T) {
	srcs := []string{
		"(/ 1 0)",
		"(// 1 0)",
		"(% 1 0)",
		`(+ 1 "x")`,
		"(& 1 2.5)",
		"(<< 1 -1)",
	}
	for _, src := range srcs {
		t.Run(src, func(t *testing.T) {
			if _, err := run(t, src); err == nil {
				t.Errorf("%q: expected an error", src)
			}
		})
	}
}

func TestComparison(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"(< 1 2 3)", true},
		{"(< 1 3 2)", false},
		{"(<= 1 1 2)", true},
		{"(> 3 2 1)", true},
		{"(>= 3 3 1)", true},
		{"(== 1 1 1)", true},
		{"(== 1 1.0)", true},
		{"(== 1 2)", false},
		{"(== 'a 'a)", true},
		{"(== 'a 'b)", false},
		{`(== "x" "x")`, true},
		{"(!= 1 2)", true},
		{"(!= 1 1.0)", false},
		{"(is 'a 'a)", true},
		{"(is-not 'a 'b)", true},
		{"(in 2 '(1 2 3))", true},
		{"(not-in 4 '(1 2 3))", true},
		{"(not false)", true},
		{"(not 1)", false},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			got := mustRun(t, tc.src)
			if !value.Equal(got, value.Boolean(tc.want)) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestListOps(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"(list 1 2 3)", "'(1 2 3)"},
		{"(make-list 3 0)", "'(0 0 0)"},
		{"(cons 1 '(2 3))", "'(1 2 3)"},
		{"(cons 1 2)", "'(1)"},
		{"(car '(1 2 3))", "1"},
		{"(cdr '(1 2 3))", "'(2 3)"},
		{"(cadr '(1 2 3))", "2"},
		{"(cddr '(1 2 3))", "'(3)"},
		{"(caddr '(1 2 3))", "3"},
		{"(cadddr '(1 2 3 4))", "4"},
		{"(append '(1) '(2 3) '())", "'(1 2 3)"},
		{"(reverse '(1 2 3))", "'(3 2 1)"},
		{"(list-tail '(1 2 3) 1)", "'(2 3)"},
		{"(list-ref '(1 2 3) 2)", "3"},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			got := mustRun(t, tc.src)
			want := mustRun(t, tc.want)
			if !value.Equal(got, want) {
				t.Errorf("got %v, want %v", got, want)
			}
		})
	}
}

func TestListPredicates(t *testing.T) {
	if got := mustRun(t, "(list? '(1))"); !value.Equal(got, value.Boolean(true)) {
		t.Errorf("(list? '(1)) = %v, want true", got)
	}
	if got := mustRun(t, "(list? 1)"); !value.Equal(got, value.Boolean(false)) {
		t.Errorf("(list? 1) = %v, want false", got)
	}
	if got := mustRun(t, "(null? '())"); !value.Equal(got, value.Boolean(true)) {
		t.Errorf("(null? '()) = %v, want true", got)
	}
	if got := mustRun(t, "(null? '(1))"); !value.Equal(got, value.Boolean(false)) {
		t.Errorf("(null? '(1)) = %v, want false", got)
	}
}

func TestSetCarMutates(t *testing.T) {
	got := mustRun(t, "(define xs (list 1 2 3)) (set-car! xs 9) xs")
	want := mustRun(t, "'(9 2 3)")
	if !value.Equal(got, want) {
		t.Errorf("got %v, want (9 2 3)", got)
	}
}

func TestDictSetAndDel(t *testing.T) {
	got := mustRun(t, "(define xs (list 1 2 3)) (dict-set xs 1 9) xs")
	want := mustRun(t, "'(1 9 3)")
	if !value.Equal(got, want) {
		t.Errorf("dict-set: got %v, want (1 9 3)", got)
	}
	got = mustRun(t, "(define ys (list 1 2 3)) (del ys 0) ys")
	want = mustRun(t, "'(2 3)")
	if !value.Equal(got, want) {
		t.Errorf("del: got %v, want (2 3)", got)
	}
}

func TestSymbolOps(t *testing.T) {
	if got := mustRun(t, "(symbol? 'a)"); !value.Equal(got, value.Boolean(true)) {
		t.Errorf("(symbol? 'a) = %v, want true", got)
	}
	if got := mustRun(t, `(symbol->string 'abc)`); !value.Equal(got, value.String("abc")) {
		t.Errorf("(symbol->string 'abc) = %v, want \"abc\"", got)
	}
	got := mustRun(t, `(is (string->symbol "abc") 'abc)`)
	if !value.Equal(got, value.Boolean(true)) {
		t.Errorf("string->symbol did not intern to the same symbol")
	}
	a := mustRun(t, "(gensym)")
	b := mustRun(t, "(gensym)")
	if value.Equal(a, b) {
		t.Error("two gensym calls returned the same symbol")
	}
}

func TestApply(t *testing.T) {
	got := mustRun(t, "(apply + '(1 2 3))")
	if !value.Equal(got, value.Int(6)) {
		t.Errorf("got %v, want 6", got)
	}
	got = mustRun(t, "(apply (lambda (a b) (* a b)) '(6 7))")
	if !value.Equal(got, value.Int(42)) {
		t.Errorf("got %v, want 42", got)
	}
}

func TestFormatAndTemplating(t *testing.T) {
	if got := mustRun(t, `(format "a %s c" "b")`); !value.Equal(got, value.String("a b c")) {
		t.Errorf("format: got %v, want \"a b c\"", got)
	}
	if got := mustRun(t, `(format "%d%%" 7)`); !value.Equal(got, value.String("7%")) {
		t.Errorf("format: got %v, want \"7%%\"", got)
	}
	if got := mustRun(t, `(% "x=%d" '(5))`); !value.Equal(got, value.String("x=5")) {
		t.Errorf("%% templating: got %v, want \"x=5\"", got)
	}
}

func TestConcat(t *testing.T) {
	got := mustRun(t, `(concat "a" "b" 1)`)
	if !value.Equal(got, value.String("ab1")) {
		t.Errorf("got %v, want \"ab1\"", got)
	}
}

func TestIndexAndSlice(t *testing.T) {
	if got := mustRun(t, "(index '(1 2 3) 1)"); !value.Equal(got, value.Int(2)) {
		t.Errorf("index: got %v, want 2", got)
	}
	if got := mustRun(t, `(index "abc" 0)`); !value.Equal(got, value.String("a")) {
		t.Errorf("index string: got %v, want \"a\"", got)
	}
	got := mustRun(t, "(slice '(1 2 3 4) 1 3)")
	want := mustRun(t, "'(2 3)")
	if !value.Equal(got, want) {
		t.Errorf("slice: got %v, want (2 3)", got)
	}
}

func TestCallCCUnsupported(t *testing.T) {
	if _, err := run(t, "(call-with-current-continuation (lambda (k) k))"); err == nil {
		t.Error("expected call-with-current-continuation to report unsupported")
	}
}
