package printer

import (
	"testing"

	"github.com/gopsil/psil/pkg/reader"
	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

func TestExternalAtoms(t *testing.T) {
	tests := []struct {
		v    value.Value
		want string
	}{
		{value.Int(42), "42"},
		{value.Float(3.5), "3.5"},
		{value.Float(3), "3.0"},
		{value.String(`a"b`), `"a\"b"`},
		{symbol.New("foo"), "foo"},
	}
	for _, tc := range tests {
		if got := External(tc.v); got != tc.want {
			t.Errorf("External(%#v) = %q, want %q", tc.v, got, tc.want)
		}
	}
}

func TestExternalSequence(t *testing.T) {
	seq := value.NewSequence(value.Int(1), value.Int(2), value.Int(3))
	if got, want := External(seq), "(1 2 3)"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExternalSugar(t *testing.T) {
	tests := []struct {
		head *symbol.Symbol
		want string
	}{
		{symbol.Quote, "'x"},
		{symbol.Quasiquote, "`x"},
		{symbol.Unquote, ",x"},
		{symbol.UnquoteSplicing, ",@x"},
	}
	for _, tc := range tests {
		form := value.NewSequence(tc.head, symbol.New("x"))
		if got := External(form); got != tc.want {
			t.Errorf("External(%v) = %q, want %q", tc.head.Name, got, tc.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	srcs := []string{
		"()",
		"(1 2 3)",
		"3.0",
		"2.5e10",
		`"hello world"`,
		"'(a b c)",
		"`(a ,b ,@c)",
		"(+ 1 (* 2 3))",
	}
	for _, src := range srcs {
		forms, err := reader.ReadString(src)
		if err != nil {
			t.Fatalf("ReadString(%q): %v", src, err)
		}
		for _, f := range forms {
			printed := External(f)
			again, err := reader.ReadString(printed)
			if err != nil {
				t.Fatalf("re-reading External(%q) = %q failed: %v", src, printed, err)
			}
			if len(again) != 1 || !value.Equal(again[0], f) {
				t.Errorf("round-trip mismatch for %q: printed %q, re-read %#v", src, printed, again)
			}
		}
	}
}
