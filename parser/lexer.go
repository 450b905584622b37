// Package parser reads Prolog source text — consult files and queries —
// into logic.Clause/logic.Term values for the compiler.
package parser

import (
	"io"

	"github.com/alecthomas/participle/v2/lexer"
)

// lexerDef tokenizes the surface syntax: atoms, quoted atoms, variables,
// integers, the ":-" operator, and the handful of punctuation marks a
// clause or compound term needs. There is no list or string sugar — with
// the list/dict helpers dropped from the term representation, the surface
// syntax has nothing to lower them to.
var lexerDef = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `%[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "ClauseOp", Pattern: `:-`},
	{Name: "Punct", Pattern: `[(),.]`},
	{Name: "Var", Pattern: `[A-Z_][A-Za-z0-9_]*`},
	{Name: "QuotedAtom", Pattern: `'(\\.|[^'\\])*'`},
	{Name: "Atom", Pattern: `[a-z][A-Za-z0-9_]*`},
	{Name: "Int", Pattern: `-?[0-9]+`},
})

var (
	tokVar        = symbolType("Var")
	tokQuotedAtom = symbolType("QuotedAtom")
	tokAtom       = symbolType("Atom")
	tokInt        = symbolType("Int")
	elided        = elideSet("Comment", "Whitespace")
)

func symbolType(name string) lexer.TokenType { return lexerDef.Symbols()[name] }

func elideSet(names ...string) map[lexer.TokenType]bool {
	set := make(map[lexer.TokenType]bool, len(names))
	for _, name := range names {
		set[symbolType(name)] = true
	}
	return set
}

// tokenize drains r into its full token stream, dropping comments and
// whitespace. The parser below indexes into the result with an explicit
// cursor rather than pulling tokens one at a time from the lexer, since
// deciding atom-vs-compound ("is the next token '('?") and fact-vs-rule
// ("is the next token ':-'?") both need one token of lookahead.
func tokenize(filename string, r io.Reader) ([]lexer.Token, error) {
	lx, err := lexerDef.Lex(filename, r)
	if err != nil {
		return nil, err
	}
	var toks []lexer.Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF() {
			return append(toks, tok), nil
		}
		if elided[tok.Type] {
			continue
		}
		toks = append(toks, tok)
	}
}
