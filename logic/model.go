// Package logic implements the term representation the compiler consumes:
// atoms, integers, variables and compound terms, plus clauses built from
// them. A logic program is composed of clauses of the form
// 'head :- term1, term2.', read as "head holds if term1 and term2 hold". A
// clause with no terms in the body is a fact.
package logic

import (
	"fmt"
	"strings"
)

// Term is a representation of a logic term.
type Term interface {
	fmt.Stringer
	short() string
	vars(seen map[Var]struct{}, xs []Var) []Var
	hasVar() bool
}

// Atom is an atomic term representing a symbol.
type Atom struct {
	Name string
}

// Int is an atomic term representing an integer.
type Int struct {
	Value int
}

// Var is a variable term.
type Var struct {
	Name   string
	suffix int
}

// Comp is a complex term, representing an immutable compound term.
type Comp struct {
	Functor string
	Args    []Term
	hasVar_ bool
}

// Clause is the representation of a logic rule. Clause is not a Term, so
// it can't be used within complex terms.
type Clause struct {
	Head    Term
	Body    []Term
	hasVar_ bool
}

// AnonymousVar represents a variable to be ignored.
var AnonymousVar = NewVar("_")

// NewVar creates a new var. It panics if the name doesn't start with an
// uppercase letter or an underscore.
func NewVar(name string) Var {
	if !IsVar(name) {
		panic(fmt.Sprintf("NewVar: invalid name: %q", name))
	}
	return Var{name, 0}
}

// WithSuffix creates a new var with the same name and provided suffix.
// zip's Reify uses it to name an unbound variable after its address.
func (x Var) WithSuffix(suffix int) Var {
	if x.Name == "_" {
		return x
	}
	return Var{x.Name, suffix}
}

// NewComp creates a compound term.
func NewComp(functor string, terms ...Term) *Comp {
	var hasVar bool
	for _, term := range terms {
		if term.hasVar() {
			hasVar = true
			break
		}
	}
	return &Comp{Functor: functor, Args: terms, hasVar_: hasVar}
}

// Indicator names a functor by name and arity, e.g. f/2.
type Indicator struct {
	Name  string
	Arity int
}

func (i Indicator) String() string { return fmt.Sprintf("%s/%d", i.Name, i.Arity) }

// Indicator returns the compound term's functor indicator.
func (c *Comp) Indicator() Indicator {
	return Indicator{c.Functor, len(c.Args)}
}

// NewClause returns a clause with the provided head and terms as body.
func NewClause(head Term, body ...Term) *Clause {
	var hasVar bool
	for _, term := range body {
		if term.hasVar() {
			hasVar = true
			break
		}
	}
	if !hasVar {
		hasVar = head.hasVar()
	}
	return &Clause{Head: head, Body: body, hasVar_: hasVar}
}

// Indicator returns the clause head's functor indicator. It panics if
// the head isn't a Comp — callers should normalize atom heads to
// zero-arity comps first (see Normalize).
func (c *Clause) Indicator() Indicator {
	comp, ok := c.Head.(*Comp)
	if !ok {
		panic(fmt.Sprintf("logic.(*Clause).Indicator: head is %T, not *Comp", c.Head))
	}
	return comp.Indicator()
}

// ClauseNormalizeError describes an invalid term found while normalizing
// a clause.
type ClauseNormalizeError struct {
	TermLocation string // "head" or "body"
	Clause       *Clause
	Term         Term
}

func (err *ClauseNormalizeError) Error() string {
	if err.TermLocation == "head" {
		return fmt.Sprintf("invalid head term for clause %v: %v (must be atom or comp)", err.Clause, err.Term)
	}
	return fmt.Sprintf("invalid body term for clause %v: %v (must be atom or comp)", err.Clause, err.Term)
}

// Normalize transforms the clause to contain only Comp terms: atoms in
// the head and body become zero-arity functors.
func (c *Clause) Normalize() (*Clause, error) {
	var head Term
	switch h := c.Head.(type) {
	case Atom:
		head = NewComp(h.Name)
	case *Comp:
		head = h
	default:
		return nil, &ClauseNormalizeError{"head", c, c.Head}
	}
	body := make([]Term, len(c.Body))
	for i, term := range c.Body {
		switch t := term.(type) {
		case Atom:
			body[i] = NewComp(t.Name)
		case *Comp:
			body[i] = t
		default:
			return nil, &ClauseNormalizeError{"body", c, term}
		}
	}
	return NewClause(head, body...), nil
}

// Vars returns a term's variables, in first-occurrence order.
func Vars(term Term) []Var {
	if !term.hasVar() {
		return nil
	}
	seen := make(map[Var]struct{})
	return term.vars(seen, nil)
}

func (t Atom) vars(seen map[Var]struct{}, xs []Var) []Var { return xs }
func (t Int) vars(seen map[Var]struct{}, xs []Var) []Var  { return xs }

func (t Var) vars(seen map[Var]struct{}, xs []Var) []Var {
	if _, ok := seen[t]; ok {
		return xs
	}
	seen[t] = struct{}{}
	return append(xs, t)
}

func (t *Comp) vars(seen map[Var]struct{}, xs []Var) []Var {
	if !t.hasVar_ {
		return xs
	}
	for _, term := range t.Args {
		xs = term.vars(seen, xs)
	}
	return xs
}

// Vars returns a clause's variables, in first-occurrence order across
// the head then the body.
func (c *Clause) Vars() []Var {
	if !c.hasVar_ {
		return nil
	}
	seen := make(map[Var]struct{})
	var xs []Var
	xs = c.Head.vars(seen, xs)
	for _, term := range c.Body {
		xs = term.vars(seen, xs)
	}
	return xs
}

func (t Atom) hasVar() bool    { return false }
func (t Int) hasVar() bool     { return false }
func (t Var) hasVar() bool     { return true }
func (t *Comp) hasVar() bool   { return t.hasVar_ }
func (c *Clause) hasVar() bool { return c.hasVar_ }

func (t Atom) String() string { return FormatAtom(t.Name) }
func (t Int) String() string  { return fmt.Sprintf("%d", t.Value) }

func (t Var) String() string {
	if t.suffix > 0 {
		return fmt.Sprintf("%s_%d_", t.Name, t.suffix)
	}
	return t.Name
}

func (t *Comp) String() string {
	args := make([]string, len(t.Args))
	for i, arg := range t.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", t.Functor, strings.Join(args, ", "))
}

func (c *Clause) String() string {
	head := c.Head.String()
	if len(c.Body) == 0 {
		return head + "."
	}
	body := make([]string, len(c.Body))
	for i, term := range c.Body {
		body[i] = term.String()
	}
	return fmt.Sprintf("%s :-\n  %s.", head, strings.Join(body, ",\n  "))
}

func (t Atom) short() string { return t.String() }
func (t Int) short() string  { return t.String() }
func (t Var) short() string  { return t.String() }
func (t *Comp) short() string {
	return fmt.Sprintf("%s/%d", t.Functor, len(t.Args))
}
