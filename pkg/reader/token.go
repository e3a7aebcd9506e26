package reader

import "github.com/alecthomas/participle/v2/lexer"

// Kind identifies a PSIL token.
type Kind int

const (
	LPAREN Kind = iota
	RPAREN
	QUOTE
	QQUOTE
	COMMA
	SPLICE
	STRING
	NUMBER
	SYMBOL
)

func (k Kind) String() string {
	switch k {
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case QUOTE:
		return "QUOTE"
	case QQUOTE:
		return "QQUOTE"
	case COMMA:
		return "COMMA"
	case SPLICE:
		return "SPLICE"
	case STRING:
		return "STRING"
	case NUMBER:
		return "NUMBER"
	case SYMBOL:
		return "SYMBOL"
	default:
		return "UNKNOWN"
	}
}

// Position is a (line, column) pair, both 1-indexed. Line increments
// on '\n' and column resets at each newline. Retained for diagnostics;
// not otherwise semantically significant.
type Position struct {
	Line   int
	Column int
}

// Token is one lexical token: its kind, literal/decoded value, and
// source position. Value holds the decoded string for STRING
// (unescaped) and a value.Int or value.Float for NUMBER; for
// everything else it holds the raw lexeme string.
type Token struct {
	Kind  Kind
	Value interface{}
	Pos   Position
}

// Rule names for psilLexer below; the scanner reshapes matches of
// these into Token/Kind above.
const (
	ruleWhitespace = "Whitespace"
	ruleComment    = "Comment"
	ruleLParen     = "LParen"
	ruleRParen     = "RParen"
	ruleQuote      = "Quote"
	ruleQQuote     = "QQuote"
	ruleSplice     = "Splice"
	ruleComma      = "Comma"
	ruleTripleStr  = "TripleString"
	ruleString     = "String"
	ruleNumber     = "Number"
	ruleSymbol     = "Symbol"
)

// psilLexer tokenizes raw PSIL source using participle's regex-rule
// scanner as the low-level token source; the recursive-descent
// structure sits on top of its token stream in reader.go.
//
// Rule order matters: participle's SimpleLexer tries rules in the
// order given and takes the first match, so TripleString must precede
// String (an empty """...""" would otherwise be mis-split as an empty
// "" string followed by stray quotes), and Splice (",@") must precede
// Comma (",").
var psilLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: ruleWhitespace, Pattern: `[ \t\r\n]+`},
	{Name: ruleComment, Pattern: `;[^\n]*`},
	{Name: ruleLParen, Pattern: `\(`},
	{Name: ruleRParen, Pattern: `\)`},
	{Name: ruleSplice, Pattern: `,@`},
	{Name: ruleComma, Pattern: `,`},
	{Name: ruleQuote, Pattern: `'`},
	{Name: ruleQQuote, Pattern: "`"},
	{Name: ruleTripleStr, Pattern: `"""[\s\S]*?"""`},
	{Name: ruleString, Pattern: `"(?:[^"\\\n]|\\.)*"`},
	{Name: ruleNumber, Pattern: `[-+]?[0-9]+\.[0-9]+(?:[eE][-+]?[0-9]+)?|[-+]?[0-9]+[eE][-+]?[0-9]+|0[xX][0-9a-fA-F]+|[-+]?[0-9]+`},
	{Name: ruleSymbol, Pattern: `[^ \t\r\n()]+`},
})
