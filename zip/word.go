// Package zip implements the ZIP machine: a stack-based, Warren-style
// abstract machine for a Prolog dialect.
//
// The machine owns a handful of memory regions — a global stack (heap) of
// compound terms, a local stack of activation frames and choice points, a
// trail of undoable bindings and a scratchpad used during structural
// unification — together with the registers that index into them. Every
// cell in the global and local stacks is a fixed-width tagged word; the
// interpreter loop fetches instructions from a bytecode provider (package
// symbols) and dispatches on them under one of three processor modes.
//
// Learn more about the design this is modeled on in Arno Bastenhut's "A
// Simple Prolog Virtual Machine", on which the distilled specification for
// this package is based.
package zip

import "fmt"

// Tag partitions a Word's payload.
type Tag uint8

const (
	// RefTag: payload is an address; an unbound variable is a Ref
	// pointing at itself.
	RefTag Tag = iota
	// StrTag: payload is a global-stack address holding a Fun word
	// followed by Arity argument words.
	StrTag
	// FunTag: payload is a constant-pool index identifying a functor
	// symbol. Appears only immediately after a Str cell.
	FunTag
	// ConTag: payload is a constant-pool index for a 0-ary functor (an
	// atom or integer), equivalent to Fun with arity 0.
	ConTag
)

func (t Tag) String() string {
	switch t {
	case RefTag:
		return "REF"
	case StrTag:
		return "STR"
	case FunTag:
		return "FUN"
	case ConTag:
		return "CON"
	default:
		return fmt.Sprintf("Tag(%d)", uint8(t))
	}
}

// Word is a single tagged cell, as stored in the global or local stack.
type Word struct {
	Tag     Tag
	Payload int
}

func (w Word) String() string {
	return fmt.Sprintf("%v(%d)", w.Tag, w.Payload)
}

// Ref builds an unbound-or-bound reference word pointing at addr.
func Ref(addr Addr) Word { return Word{RefTag, int(addr)} }

// Str builds a structure word pointing at the global-stack address holding
// its functor cell.
func Str(addr Addr) Word { return Word{StrTag, int(addr)} }

// Fun builds a functor word for the constant-pool index idx.
func Fun(idx int) Word { return Word{FunTag, idx} }

// Con builds an atomic-constant word for the constant-pool index idx.
func Con(idx int) Word { return Word{ConTag, idx} }

// Addr is an address into either the global or the local stack. The two
// address spaces are disjoint ranges so that a single Addr value both
// identifies a cell and orders it against any other: every global address
// is considered older than every local address, and within a region lower
// addresses are older. This ordering is what makes the binding direction
// rule in bind (see unify.go) sufficient to prevent dangling references
// after backtracking truncates a region (spec testable property 1).
type Addr int

// localBase is the first address of the local-stack address range. Global
// addresses occupy [0, localBase); local addresses occupy
// [localBase, localBase+Limits.LocalCap).
const localBase Addr = 1 << 30

// NoAddr is the sentinel "no frame"/"no choice point" address.
const NoAddr Addr = -1

// IsLocal reports whether addr falls in the local-stack address range.
func (a Addr) IsLocal() bool { return a >= localBase }

// IsGlobal reports whether addr falls in the global-stack address range.
func (a Addr) IsGlobal() bool { return a >= 0 && a < localBase }

func (a Addr) String() string {
	if a == NoAddr {
		return "<none>"
	}
	if a.IsLocal() {
		return fmt.Sprintf("L%d", int(a-localBase))
	}
	return fmt.Sprintf("G%d", int(a))
}

// globalIndex converts a global Addr to a slice index. It does not check
// that addr is a global address; callers branch on IsLocal/IsGlobal first.
func globalIndex(addr Addr) int { return int(addr) }

// localIndex converts a local Addr to a slice index into the local stack.
func localIndex(addr Addr) int { return int(addr - localBase) }

// localAddr converts a local stack slice index back into an Addr.
func localAddr(i int) Addr { return localBase + Addr(i) }
