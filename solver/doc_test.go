package solver_test

import (
	"fmt"
	"strings"

	"github.com/prologzip/ziprolog/parser"
	"github.com/prologzip/ziprolog/solver"
)

// consult parses src as a sequence of clauses and loads them into a new
// Solver. A real caller (cmd/repl) keeps the parser and solver as
// separate concerns; an Example reads better with both folded into one
// helper.
func consult(src string) (*solver.Solver, error) {
	clauses, err := parser.ParseProgram("example", strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	return solver.NewSolver(clauses)
}

func Example() {
	s, err := consult(`
        nat(0).
        nat(s(X)) :- nat(X).

        add(0, Sum, Sum).
        add(s(A), B, s(Sum)) :-
            add(A, B, Sum).

        mul(0, _, 0).
        mul(s(A), B, Product) :-
            mul(A, B, Partial),
            add(B, Partial, Product).
    `)
	if err != nil {
		fmt.Println(err)
		return
	}

	goals, err := parser.ParseQuery("example", strings.NewReader(`
        mul(s(s(0)), s(s(s(0))), Y), % 2*3=Y
        add(s(0), X, Y).             % 1+X=Y
    `))
	if err != nil {
		fmt.Println(err)
		return
	}

	solutions, cancel := s.Query(goals...)
	defer cancel()
	result := <-solutions
	if result.Err != nil {
		fmt.Println(result.Err)
		return
	}
	for x, term := range result.Solution {
		fmt.Println(x, "=", term)
	}
	// Unordered output:
	// X = s(s(s(s(s(0)))))
	// Y = s(s(s(s(s(s(0))))))
}
