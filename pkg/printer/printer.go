// Package printer implements PSIL's external (round-trip) printer
//.
package printer

import (
	"strings"

	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

var sugarHeads = map[*symbol.Symbol]string{
	symbol.Quote:           "'",
	symbol.Quasiquote:      "`",
	symbol.Unquote:         ",",
	symbol.UnquoteSplicing: ",@",
}

// External renders v as PSIL source text that reads back to an equal
// value: strings with `\"`-style escaping, sequences parenthesized
// with space separation, symbols by name, and the four
// quote/quasiquote/unquote/unquote-splicing two-element forms printed
// with their reader sugar.
func External(v value.Value) string {
	var b strings.Builder
	write(&b, v)
	return b.String()
}

func write(b *strings.Builder, v value.Value) {
	switch t := v.(type) {
	case value.String:
		b.WriteByte('"')
		b.WriteString(escapeString(string(t)))
		b.WriteByte('"')
	case *symbol.Symbol:
		b.WriteString(t.Name)
	case *value.Sequence:
		if sugar, ok := asSugar(t); ok {
			b.WriteString(sugar.prefix)
			write(b, sugar.body)
			return
		}
		b.WriteByte('(')
		for i, item := range t.Items {
			if i > 0 {
				b.WriteByte(' ')
			}
			write(b, item)
		}
		b.WriteByte(')')
	default:
		b.WriteString(v.String())
	}
}

type sugarForm struct {
	prefix string
	body   value.Value
}

func asSugar(seq *value.Sequence) (sugarForm, bool) {
	if len(seq.Items) != 2 {
		return sugarForm{}, false
	}
	head, ok := seq.Items[0].(*symbol.Symbol)
	if !ok {
		return sugarForm{}, false
	}
	prefix, ok := sugarHeads[head]
	if !ok {
		return sugarForm{}, false
	}
	return sugarForm{prefix: prefix, body: seq.Items[1]}, true
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
