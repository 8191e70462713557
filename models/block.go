package models

import "fmt"

// JumpKind classifies how control reaches a location.
type JumpKind int

const (
	JumpNormal JumpKind = iota
	JumpCall
	JumpRet
	JumpSyscall
	JumpErr
	JumpExit
)

var jumpNames = map[JumpKind]string{
	JumpNormal:  "normal",
	JumpCall:    "call",
	JumpRet:     "ret",
	JumpSyscall: "syscall",
	JumpErr:     "error",
	JumpExit:    "exit",
}

func (k JumpKind) String() string {
	if name, ok := jumpNames[k]; ok {
		return name
	}
	return fmt.Sprintf("jump_%d", int(k))
}

// Exit is one successor of a lifted block. Known is false for indirect
// transfers whose target needs state to evaluate.
type Exit struct {
	Target uint64
	Known  bool
	Kind   JumpKind
}

// Block is a lifted straight-line instruction run. It ends at the first
// control-flow transfer or at the limits it was lifted under.
type Block struct {
	Addr  uint64
	Size  uint64
	Ins   []Ins
	Exits []Exit

	// Alt is set when the block was decoded in the architecture's
	// alternate encoding.
	Alt bool
}

func (b *Block) String() string {
	return fmt.Sprintf("<Block %#x +%#x insns=%d>", b.Addr, b.Size, len(b.Ins))
}

// BlockLimits bounds a single lift request. Zero values mean the lifter's
// defaults. LastIns truncates the block after the Nth instruction. Trace
// keeps per-instruction text on the block.
type BlockLimits struct {
	MaxSize  int
	MaxInsns int
	LastIns  int
	Trace    bool
}

// Lifter turns bytes at addr into a Block. alt selects the alternate
// instruction encoding on profiles that have one. Undecodable input fails
// with a *LiftError.
type Lifter interface {
	Lift(mem Mem, profile *Arch, addr uint64, limits BlockLimits, alt bool) (*Block, error)
}
