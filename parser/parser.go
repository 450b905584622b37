package parser

import (
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/prologzip/ziprolog/errors"
	"github.com/prologzip/ziprolog/logic"
)

// parser is a hand-written recursive-descent reader over a tokenized
// source. Its grammar is small enough — term, clause, comma-separated
// goal list — that a parser-combinator or grammar-tag library would add
// more machinery than it saves; participle itself is used only for
// tokenizing (see lexer.go).
type parser struct {
	toks []lexer.Token
	pos  int
	vars map[string]logic.Var
}

func newParser(toks []lexer.Token) *parser {
	return &parser{toks: toks, vars: make(map[string]logic.Var)}
}

func (p *parser) peek() lexer.Token { return p.toks[p.pos] }

func (p *parser) next() lexer.Token {
	t := p.toks[p.pos]
	if !t.EOF() {
		p.pos++
	}
	return t
}

func (p *parser) expect(value string) (lexer.Token, error) {
	t := p.peek()
	if t.Value != value {
		return t, errors.New("parser: expected %q, got %q at %s", value, t.Value, t.Pos)
	}
	return p.next(), nil
}

// ParseProgram parses a whole consult file into its clauses, each
// terminated by '.'.
func ParseProgram(filename string, r io.Reader) ([]*logic.Clause, error) {
	toks, err := tokenize(filename, r)
	if err != nil {
		return nil, err
	}
	p := newParser(toks)
	var clauses []*logic.Clause
	for !p.peek().EOF() {
		p.vars = make(map[string]logic.Var)
		c, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	return clauses, nil
}

// ParseQuery parses a single comma-separated goal list terminated by '.',
// as typed at the "?-" REPL prompt.
func ParseQuery(filename string, r io.Reader) ([]logic.Term, error) {
	toks, err := tokenize(filename, r)
	if err != nil {
		return nil, err
	}
	p := newParser(toks)
	goals, err := p.parseTermList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("."); err != nil {
		return nil, err
	}
	return goals, nil
}

func (p *parser) parseClause() (*logic.Clause, error) {
	head, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	var body []logic.Term
	if p.peek().Value == ":-" {
		p.next()
		body, err = p.parseTermList()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("."); err != nil {
		return nil, err
	}
	return logic.NewClause(head, body...), nil
}

func (p *parser) parseTermList() ([]logic.Term, error) {
	first, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	terms := []logic.Term{first}
	for p.peek().Value == "," {
		p.next()
		t, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		terms = append(terms, t)
	}
	return terms, nil
}

func (p *parser) parseTerm() (logic.Term, error) {
	t := p.peek()
	switch t.Type {
	case tokVar:
		p.next()
		return p.varFor(t.Value), nil
	case tokInt:
		p.next()
		n, err := strconv.Atoi(t.Value)
		if err != nil {
			return nil, errors.New("parser: invalid integer %q at %s", t.Value, t.Pos)
		}
		return logic.Int{Value: n}, nil
	case tokAtom, tokQuotedAtom:
		return p.parseAtomOrComp()
	default:
		return nil, errors.New("parser: unexpected token %q at %s", t.Value, t.Pos)
	}
}

func (p *parser) parseAtomOrComp() (logic.Term, error) {
	t := p.next()
	name := t.Value
	if t.Type == tokQuotedAtom {
		name = unquoteAtom(name)
	}
	if p.peek().Value != "(" {
		return logic.Atom{Name: name}, nil
	}
	p.next()
	args, err := p.parseTermList()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	return logic.NewComp(name, args...), nil
}

func (p *parser) varFor(name string) logic.Var {
	if name == "_" {
		return logic.AnonymousVar
	}
	if v, ok := p.vars[name]; ok {
		return v
	}
	v := logic.NewVar(name)
	p.vars[name] = v
	return v
}

// unquoteAtom strips a quoted atom's surrounding quotes and resolves its
// backslash escapes, mirroring the three escapes the teacher's own quoted-
// atom grammar recognized: \', \\, and \n.
func unquoteAtom(raw string) string {
	inner := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		c := inner[i]
		if c == '\\' && i+1 < len(inner) {
			i++
			switch inner[i] {
			case 'n':
				b.WriteByte('\n')
			default:
				b.WriteByte(inner[i])
			}
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
