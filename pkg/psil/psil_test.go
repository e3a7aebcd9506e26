package psil

import (
	"strings"
	"testing"

	"github.com/gopsil/psil/pkg/value"
)

func TestEvalStringConcreteScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want value.Value
	}{
		{"arithmetic", "(+ 1 2 3)", value.Int(6)},
		{"lambda application", "((lambda (x) (* x x)) 7)", value.Int(49)},
		{"factorial", "(define (fact n) (if (== n 0) 1 (* n (fact (- n 1))))) (fact 6)", value.Int(720)},
		{"let", "(let ((x 1) (y 2)) (+ x y))", value.Int(3)},
		{"cond", "(cond ((== 1 2) 'a) ((== 2 2) 'b) (else 'c))", symbolB(t)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			interp, err := New()
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			got, err := interp.EvalString(tc.src)
			if err != nil {
				t.Fatalf("EvalString(%q): %v", tc.src, err)
			}
			if !value.Equal(got, tc.want) {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func symbolB(t *testing.T) value.Value {
	t.Helper()
	interp, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := interp.EvalString("'b")
	if err != nil {
		t.Fatalf("EvalString('b): %v", err)
	}
	return v
}

func TestWithStdoutCapturesPrint(t *testing.T) {
	var out strings.Builder
	interp, err := New(WithStdout(&out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := interp.EvalString(`(print "hello")`); err != nil {
		t.Fatalf("EvalString: %v", err)
	}
	if got := out.String(); got != "hello\n" {
		t.Errorf("stdout = %q, want %q", got, "hello\n")
	}
}

func TestWithStderrCapturesDiagnostic(t *testing.T) {
	var errOut strings.Builder
	interp, err := New(WithStderr(&errOut))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := interp.EvalString("(undefined-name)"); err == nil {
		t.Fatalf("EvalString: expected an error")
	}
	if errOut.Len() == 0 {
		t.Errorf("expected a diagnostic line on stderr, got none")
	}
}

func TestWithGlobalsFallback(t *testing.T) {
	globals := value.MapGlobals{"host-constant": value.Int(99)}
	interp, err := New(WithGlobals(globals))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := interp.EvalString("host-constant")
	if err != nil {
		t.Fatalf("EvalString: %v", err)
	}
	if !value.Equal(got, value.Int(99)) {
		t.Errorf("got %v, want 99", got)
	}
}
