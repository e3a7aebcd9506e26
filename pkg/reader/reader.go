// Package reader implements PSIL's tokenizer and recursive-descent
// parser: turning source text into a tree of values ready
// for the macro expander and evaluator.
package reader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/gopsil/psil/pkg/symbol"
	"github.com/gopsil/psil/pkg/value"
)

// SyntaxError reports a malformed token or an unbalanced form, with
// the source position where the reader noticed the problem.
type SyntaxError struct {
	Message string
	Pos     Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d: syntax error: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// scanner turns source text into a Token stream using psilLexer,
// decoding STRING and NUMBER literals and dropping whitespace and
// comments.
type scanner struct {
	tokens []Token
	pos    int
}

// tokenNames maps psilLexer's symbol table to rule names once, instead
// of on every token.
var tokenNames = invertSymbols(psilLexer.Symbols())

func invertSymbols(sym map[string]lexer.TokenType) map[lexer.TokenType]string {
	names := make(map[lexer.TokenType]string, len(sym))
	for n, id := range sym {
		names[id] = n
	}
	return names
}

func newScanner(src string) (*scanner, error) {
	lx, err := psilLexer.Lex("", strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	var toks []Token
	for {
		raw, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if raw.EOF() {
			break
		}
		name := tokenNames[raw.Type]
		pos := Position{Line: raw.Pos.Line, Column: raw.Pos.Column}
		switch name {
		case ruleWhitespace, ruleComment:
			continue
		case ruleLParen:
			toks = append(toks, Token{Kind: LPAREN, Value: raw.Value, Pos: pos})
		case ruleRParen:
			toks = append(toks, Token{Kind: RPAREN, Value: raw.Value, Pos: pos})
		case ruleQuote:
			toks = append(toks, Token{Kind: QUOTE, Value: raw.Value, Pos: pos})
		case ruleQQuote:
			toks = append(toks, Token{Kind: QQUOTE, Value: raw.Value, Pos: pos})
		case ruleComma:
			toks = append(toks, Token{Kind: COMMA, Value: raw.Value, Pos: pos})
		case ruleSplice:
			toks = append(toks, Token{Kind: SPLICE, Value: raw.Value, Pos: pos})
		case ruleTripleStr:
			toks = append(toks, Token{Kind: STRING, Value: raw.Value[3 : len(raw.Value)-3], Pos: pos})
		case ruleString:
			s, err := decodeString(raw.Value)
			if err != nil {
				return nil, &SyntaxError{Message: err.Error(), Pos: pos}
			}
			toks = append(toks, Token{Kind: STRING, Value: s, Pos: pos})
		case ruleNumber:
			n, err := decodeNumber(raw.Value)
			if err != nil {
				return nil, &SyntaxError{Message: err.Error(), Pos: pos}
			}
			toks = append(toks, Token{Kind: NUMBER, Value: n, Pos: pos})
		case ruleSymbol:
			toks = append(toks, Token{Kind: SYMBOL, Value: raw.Value, Pos: pos})
		default:
			return nil, &SyntaxError{Message: "unrecognized token " + raw.Value, Pos: pos}
		}
	}
	return &scanner{tokens: toks}, nil
}

func (s *scanner) peek() (Token, bool) {
	if s.pos >= len(s.tokens) {
		return Token{}, false
	}
	return s.tokens[s.pos], true
}

func (s *scanner) next() (Token, bool) {
	t, ok := s.peek()
	if ok {
		s.pos++
	}
	return t, ok
}

func (s *scanner) lastPos() Position {
	if s.pos > 0 {
		return s.tokens[s.pos-1].Pos
	}
	return Position{Line: 1, Column: 0}
}

// decodeString unescapes a double-quoted string literal's backslash
// escapes (\n, \t, \\, \", others pass through literally).
func decodeString(lexeme string) (string, error) {
	body := lexeme[1 : len(lexeme)-1]
	var b strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		default:
			b.WriteByte(body[i])
		}
	}
	return b.String(), nil
}

// decodeNumber disambiguates int vs float and supports 0x hex
// integers.
func decodeNumber(lexeme string) (value.Value, error) {
	if len(lexeme) > 1 && (strings.HasPrefix(lexeme, "0x") || strings.HasPrefix(lexeme, "0X")) {
		n, err := strconv.ParseInt(lexeme[2:], 16, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid hex integer %q", lexeme)
		}
		return value.Int(n), nil
	}
	if strings.ContainsAny(lexeme, ".eE") {
		f, err := strconv.ParseFloat(lexeme, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", lexeme)
		}
		return value.Float(f), nil
	}
	n, err := strconv.ParseInt(lexeme, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid integer %q", lexeme)
	}
	return value.Int(n), nil
}

// Reader parses a token stream into successive top-level forms.
type Reader struct {
	sc *scanner
}

// New tokenizes src and returns a Reader ready to yield forms one at a
// time via Read.
func New(src string) (*Reader, error) {
	sc, err := newScanner(src)
	if err != nil {
		return nil, err
	}
	return &Reader{sc: sc}, nil
}

// Read returns the next top-level form, or (nil, nil) at end of
// input: nil signals stream exhaustion between forms, not an error.
func (r *Reader) Read() (value.Value, error) {
	if _, ok := r.sc.peek(); !ok {
		return nil, nil
	}
	return r.readForm()
}

// ReadAll consumes the entire stream and returns every top-level form.
func (r *Reader) ReadAll() ([]value.Value, error) {
	var forms []value.Value
	for {
		f, err := r.Read()
		if err != nil {
			return nil, err
		}
		if f == nil {
			return forms, nil
		}
		forms = append(forms, f)
	}
}

// ReadString parses all of src as a convenience one-shot entry point.
func ReadString(src string) ([]value.Value, error) {
	rd, err := New(src)
	if err != nil {
		return nil, err
	}
	return rd.ReadAll()
}

func (r *Reader) readForm() (value.Value, error) {
	tok, ok := r.sc.next()
	if !ok {
		return nil, &SyntaxError{Message: "unexpected end of input", Pos: r.sc.lastPos()}
	}
	switch tok.Kind {
	case LPAREN:
		return r.readSequence()
	case RPAREN:
		return nil, &SyntaxError{Message: "unexpected )", Pos: tok.Pos}
	case QUOTE:
		return r.readSugar(symbol.Quote, tok.Pos)
	case QQUOTE:
		return r.readSugar(symbol.Quasiquote, tok.Pos)
	case COMMA:
		return r.readSugar(symbol.Unquote, tok.Pos)
	case SPLICE:
		return r.readSugar(symbol.UnquoteSplicing, tok.Pos)
	case STRING:
		return value.String(tok.Value.(string)), nil
	case NUMBER:
		return tok.Value.(value.Value), nil
	case SYMBOL:
		return symbol.New(tok.Value.(string)), nil
	default:
		return nil, &SyntaxError{Message: "unrecognized token", Pos: tok.Pos}
	}
}

// readSequence collects forms until a matching RPAREN.
func (r *Reader) readSequence() (value.Value, error) {
	var items []value.Value
	for {
		tok, ok := r.sc.peek()
		if !ok {
			return nil, &SyntaxError{Message: "unclosed parenthesis", Pos: r.sc.lastPos()}
		}
		if tok.Kind == RPAREN {
			r.sc.next()
			return value.NewSequence(items...), nil
		}
		item, err := r.readForm()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
}

// readSugar expands a quote/quasiquote/unquote/unquote-splicing
// marker token into (head FORM).
func (r *Reader) readSugar(head *symbol.Symbol, pos Position) (value.Value, error) {
	if _, ok := r.sc.peek(); !ok {
		return nil, &SyntaxError{Message: "expected form after " + head.Name, Pos: pos}
	}
	inner, err := r.readForm()
	if err != nil {
		return nil, err
	}
	return value.NewSequence(head, inner), nil
}
