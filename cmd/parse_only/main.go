package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/prologzip/ziprolog/compiler"
	"github.com/prologzip/ziprolog/parser"
	"github.com/prologzip/ziprolog/symbols"
)

var (
	inputFilename  = flag.String("input", "", "Input file (required)")
	outputFilename = flag.String("output", "", "Output file (required)")
)

func main() {
	flag.Parse()
	if *inputFilename == "" {
		log.Fatalf("-input is required")
	}
	if *outputFilename == "" {
		log.Fatalf("-output is required")
	}
	input, err := os.Open(*inputFilename)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer input.Close()

	clauses, err := parser.ParseProgram(*inputFilename, input)
	if err != nil {
		log.Fatalf("parse: %v", err)
	}

	prog := symbols.NewProgram()
	if err := compiler.CompileProgram(prog, clauses); err != nil {
		log.Fatalf("compile: %v", err)
	}

	output, err := os.Create(*outputFilename)
	if err != nil {
		log.Fatalf("create output: %v", err)
	}
	defer output.Close()
	if err := dump(output, prog); err != nil {
		log.Fatalf("dump: %v", err)
	}
}

// dump writes a disassembly listing of prog's constant pool and code
// memory for a program that was only compiled, never run — useful
// for inspecting what a consult file compiles down to without starting
// a REPL session at all.
func dump(w io.Writer, prog *symbols.Program) error {
	fmt.Fprintln(w, "; constant pool")
	for i := 0; i < prog.Pool.Size(); i++ {
		sym, err := prog.Pool.Constant(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%4d: %v\n", i, sym)
	}
	fmt.Fprintln(w, "; code")
	for i := 0; i < prog.CodeSize(); i++ {
		instr, err := prog.ReadCode(i)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%4d: %v\n", i, instr)
	}
	return nil
}
