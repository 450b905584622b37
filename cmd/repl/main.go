package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/chzyer/readline"

	"github.com/prologzip/ziprolog/logic"
	"github.com/prologzip/ziprolog/parser"
	"github.com/prologzip/ziprolog/solver"
	"github.com/prologzip/ziprolog/zip"
)

var (
	consultFiles = flag.String("consult-files", "", "Comma-separated files to consult, in order")
	query        = flag.String("query", "", "Initial query to issue")
	interactive  = flag.Bool("interactive", true, "Whether the REPL is interactive")
	debugTrace   = flag.String("debug-trace", "", "If set, write a step-by-step JSON trace of every query to this file")
)

type inputState int

const (
	readingQuery inputState = iota
	enumerateSolutions
)

type repl struct {
	interrupt chan os.Signal
	solver    *solver.Solver
	readline  *readline.Instance
}

func main() {
	flag.Parse()
	if !*interactive && len(*query) == 0 {
		log.Fatal("No query provided for non-interactive REPL")
	}

	var clauses []*logic.Clause
	for _, file := range strings.Split(*consultFiles, ",") {
		if len(file) == 0 {
			continue
		}
		clauses = append(clauses, consultFile(file)...)
	}

	s, err := solver.NewSolver(clauses)
	if err != nil {
		log.Fatal(err)
	}
	if len(*debugTrace) > 0 {
		s.Debug(*debugTrace)
	}

	r := repl{solver: s}
	r.interrupt = make(chan os.Signal, 1)
	signal.Notify(r.interrupt, syscall.SIGINT)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "?- ",
		HistoryFile:            "/tmp/readline-history",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer rl.Close()
	r.readline = rl

	r.mainLoop()
}

func consultFile(filename string) []*logic.Clause {
	f, err := os.Open(filename)
	if err != nil {
		log.Print(err)
		return nil
	}
	defer f.Close()
	clauses, err := parser.ParseProgram(filename, f)
	if err != nil {
		log.Print(err)
		return nil
	}
	return clauses
}

func (r repl) mainLoop() {
	state := readingQuery
	var stream <-chan solver.Result
	var cancel func()
	if len(*query) > 0 {
		goals, err := parseQuery(*query)
		if err != nil {
			log.Fatal(err)
		}
		stream, cancel = r.solver.Query(goals...)
		state = enumerateSolutions
	}

	if !*interactive {
		hasSolutions := false
		for res := range stream {
			if res.Err != nil {
				if _, exhausted := res.Err.(*zip.BacktrackExhaustedError); !exhausted {
					log.Print(res.Err)
				}
				break
			}
			hasSolutions = true
			fmt.Println(formatSolution(res.Solution))
		}
		if !hasSolutions {
			fmt.Println("false.")
		}
		return
	}

	for {
		switch state {
		default:
			log.Print("repl: invalid state ", state)
			return
		case readingQuery:
			text, isClose := r.readQuery()
			if isClose {
				return
			}
			goals, err := parseQuery(text)
			if err != nil {
				log.Print(err)
				continue
			}
			stream, cancel = r.solver.Query(goals...)
			state = enumerateSolutions
		case enumerateSolutions:
			if isClose := r.solutionState(stream, cancel); isClose {
				state = readingQuery
			}
		}
	}
}

func (r repl) readQuery() (string, bool) {
	r.readline.SetPrompt("?- ")
	var lines []string
	for {
		line, err := r.readline.Readline()
		if err != nil {
			return "", true
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
		if !strings.HasSuffix(line, ".") {
			r.readline.SetPrompt("|  ")
			continue
		}
		break
	}
	text := strings.Join(lines, " ")
	r.readline.SaveHistory(text)
	return text, false
}

// parseQuery parses a typed-in or -query-flag line of goals, tolerating a
// missing trailing '.' on the -query flag form.
func parseQuery(text string) ([]logic.Term, error) {
	text = strings.TrimSpace(text)
	if !strings.HasSuffix(text, ".") {
		text += "."
	}
	return parser.ParseQuery("<query>", strings.NewReader(text))
}

func (r repl) solutionState(stream <-chan solver.Result, cancel func()) bool {
	select {
	case res, ok := <-stream:
		if !ok {
			return true
		}
		if isClose := printResult(res); isClose {
			return true
		}
		if isClose := r.readCommand(); isClose {
			cancel()
			return true
		}
		return false
	case <-r.interrupt:
		cancel()
		return true
	}
}

// printResult prints one query result and reports whether the solution
// stream is now over, either because every alternative is exhausted or
// because a fatal error stopped the search.
func printResult(res solver.Result) bool {
	if res.Err != nil {
		if _, exhausted := res.Err.(*zip.BacktrackExhaustedError); exhausted {
			fmt.Println("false.")
		} else {
			fmt.Println(res.Err)
		}
		return true
	}
	if len(res.Solution) == 0 {
		fmt.Println("true.")
	} else {
		fmt.Println(formatSolution(res.Solution))
	}
	return false
}

// formatSolution renders a solution's bindings sorted by variable name,
// so repeated runs of the same query print identically despite Solution
// being a map.
func formatSolution(sol solver.Solution) string {
	names := make([]string, 0, len(sol))
	byName := make(map[string]logic.Term, len(sol))
	for x, t := range sol {
		name := x.String()
		names = append(names, name)
		byName[name] = t
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s = %s", name, byName[name])
	}
	return strings.Join(parts, ", ")
}

func (r repl) readCommand() bool {
	for {
		r.readline.SetPrompt("")
		line, err := r.readline.Readline()
		if err != nil {
			log.Fatal(err)
			return true
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line == ";" {
			return false
		}
		if line == "." {
			return true
		}
		log.Print("Expecting '.' or ';'")
	}
}
