package reader

import (
	"testing"

	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

func readOne(t *testing.T, src string) value.Value {
	t.Helper()
	forms, err := ReadString(src)
	if err != nil {
		t.Fatalf("ReadString(%q): unexpected error: %v", src, err)
	}
	if len(forms) != 1 {
		t.Fatalf("ReadString(%q): got %d forms, want 1", src, len(forms))
	}
	return forms[0]
}

func TestReadAtoms(t *testing.T) {
	tests := []struct {
		src  string
		want value.Value
	}{
		{"42", value.Int(42)},
		{"-7", value.Int(-7)},
		{"3.14", value.Float(3.14)},
		{"0x1F", value.Int(31)},
		{`"hello"`, value.String("hello")},
		{`"a\nb"`, value.String("a\nb")},
		{`"""raw "quoted" text"""`, value.String(`raw "quoted" text`)},
	}
	for _, tc := range tests {
		t.Run(tc.src, func(t *testing.T) {
			got := readOne(t, tc.src)
			if !value.Equal(got, tc.want) {
				t.Errorf("got %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestReadSymbolInterning(t *testing.T) {
	got := readOne(t, "foo")
	sym, ok := got.(*symbol.Symbol)
	if !ok {
		t.Fatalf("got %T, want *symbol.Symbol", got)
	}
	if sym != symbol.New("foo") {
		t.Errorf("symbol not interned to the same pointer as symbol.New")
	}
}

func TestReadSequence(t *testing.T) {
	got := readOne(t, "(1 2 3)")
	seq, ok := got.(*value.Sequence)
	if !ok {
		t.Fatalf("got %T, want *value.Sequence", got)
	}
	want := []value.Value{value.Int(1), value.Int(2), value.Int(3)}
	if len(seq.Items) != len(want) {
		t.Fatalf("got %d items, want %d", len(seq.Items), len(want))
	}
	for i := range want {
		if !value.Equal(seq.Items[i], want[i]) {
			t.Errorf("item %d: got %v, want %v", i, seq.Items[i], want[i])
		}
	}
}

func TestReadNestedSequence(t *testing.T) {
	got := readOne(t, "(+ 1 (* 2 3))")
	seq := got.(*value.Sequence)
	if len(seq.Items) != 3 {
		t.Fatalf("got %d items, want 3", len(seq.Items))
	}
	inner, ok := seq.Items[2].(*value.Sequence)
	if !ok || len(inner.Items) != 3 {
		t.Fatalf("inner form not parsed as a 3-element sequence: %#v", seq.Items[2])
	}
}

func TestReadSugar(t *testing.T) {
	tests := []struct {
		name string
		src  string
		head *symbol.Symbol
	}{
		{"quote", "'x", symbol.Quote},
		{"quasiquote", "`x", symbol.Quasiquote},
		{"unquote", ",x", symbol.Unquote},
		{"unquote-splicing", ",@x", symbol.UnquoteSplicing},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := readOne(t, tc.src)
			seq, ok := got.(*value.Sequence)
			if !ok || len(seq.Items) != 2 {
				t.Fatalf("got %#v, want 2-element sequence", got)
			}
			if seq.Items[0] != value.Value(tc.head) {
				t.Errorf("head = %v, want %v", seq.Items[0], tc.head)
			}
			if seq.Items[1] != value.Value(symbol.New("x")) {
				t.Errorf("body = %v, want x", seq.Items[1])
			}
		})
	}
}

func TestReadMultipleTopLevelForms(t *testing.T) {
	forms, err := ReadString("1 2 3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(forms) != 3 {
		t.Fatalf("got %d forms, want 3", len(forms))
	}
}

func TestReadEmptyInputReturnsNil(t *testing.T) {
	rd, err := New("   ; just a comment\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	form, err := rd.Read()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if form != nil {
		t.Errorf("got %v, want nil at end of input", form)
	}
}

func TestUnclosedParenIsSyntaxError(t *testing.T) {
	_, err := ReadString("(1 2 3")
	if err == nil {
		t.Fatal("expected an error for an unclosed parenthesis")
	}
	synErr, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("got error of type %T, want *SyntaxError", err)
	}
	if synErr.Message != "unclosed parenthesis" {
		t.Errorf("got message %q, want %q", synErr.Message, "unclosed parenthesis")
	}
}

func TestUnexpectedCloseParenIsSyntaxError(t *testing.T) {
	_, err := ReadString(")")
	if err == nil {
		t.Fatal("expected an error for a stray closing parenthesis")
	}
	if _, ok := err.(*SyntaxError); !ok {
		t.Fatalf("got error of type %T, want *SyntaxError", err)
	}
}

func TestTokenPositionsTrackNewlines(t *testing.T) {
	_, err := ReadString("\n  )")
	synErr, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("got error %T (%v), want *SyntaxError", err, err)
	}
	if synErr.Pos.Line != 2 || synErr.Pos.Column != 3 {
		t.Errorf("position = %d:%d, want 2:3", synErr.Pos.Line, synErr.Pos.Column)
	}
}

func TestEmptySequence(t *testing.T) {
	got := readOne(t, "()")
	seq, ok := got.(*value.Sequence)
	if !ok {
		t.Fatalf("got %T, want *value.Sequence", got)
	}
	if len(seq.Items) != 0 {
		t.Errorf("got %d items, want 0", len(seq.Items))
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	got := readOne(t, "; leading comment\n42 ; trailing comment")
	if !value.Equal(got, value.Int(42)) {
		t.Errorf("got %v, want 42", got)
	}
}
