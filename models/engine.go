package models

import "fmt"

// Expr is a possibly-symbolic value. The core only ever hands exprs back to
// the engine that produced them; Const is the one implementation it builds
// itself.
type Expr interface {
	String() string
}

// Const is a concrete address expression.
type Const uint64

func (c Const) String() string {
	return fmt.Sprintf("%#x", uint64(c))
}

// State is the machine state surface the core needs. Everything else about
// a state (memory, constraints) belongs to the engine behind it.
//
// A state is owned exclusively by the location that carries it. Successors
// get clones.
type State interface {
	Arch() *Arch
	Mode() string
	RegWrite(offset int, val uint64, size int) error
	RegRead(offset int, size int) (uint64, error)
	Clone() State
}

// Engine creates states and concretizes expressions.
type Engine interface {
	NewState(profile *Arch, mem Mem, mode string, options []string) (State, error)

	// Eval returns the concrete values e can take in st. Zero values means
	// unsatisfiable, more than one distinct value means ambiguous; the
	// caller decides what either case means. Duplicates are permitted.
	Eval(st State, e Expr) ([]uint64, error)
}
