package models

import (
	"fmt"
	"sort"

	"github.com/lunixbochs/fvbommel-util/sortorder"
)

type Reg struct {
	Offset int
	Name   string
}

type RegVal struct {
	Reg
	Val uint64
}

type regList []Reg

func (r regList) Len() int           { return len(r) }
func (r regList) Swap(i, j int)      { r[i], r[j] = r[j], r[i] }
func (r regList) Less(i, j int) bool { return sortorder.NaturalLess(r[i].Name, r[j].Name) }

type regMap map[int]string

func (r regMap) Items() regList {
	ret := make(regList, 0, len(r))
	for o, n := range r {
		ret = append(ret, Reg{o, n})
	}
	return ret
}

// RegWrite is one register-offset write applied while building an initial
// state, before the stack pointer is set.
type RegWrite struct {
	Offset int
	Val    uint64
	Size   int
}

// Arch is the static profile for one instruction set. Profiles are built
// once, never mutated, and shared by reference across every state that
// belongs to the same analysis target.
type Arch struct {
	Name string
	Bits int

	// SP is the stack-pointer register offset; DefaultSP is the value an
	// initial state starts with.
	SP        int
	DefaultSP uint64

	// Align is the instruction alignment in bytes. AltMode marks
	// architectures with a second instruction encoding (ARM thumb) whose
	// per-address flag must come from loader metadata.
	Align   int
	AltMode bool

	InitWrites []RegWrite

	Regs regMap

	// backend enums, zero when a backend does not apply
	CS_ARCH     int
	CS_MODE     int
	CS_MODE_ALT int
	KS_ARCH     int
	KS_MODE     int
}

func (a *Arch) String() string {
	return fmt.Sprintf("<Arch %s>", a.Name)
}

// RegName returns the name of a register offset, or a hex placeholder for
// offsets outside the profile's table.
func (a *Arch) RegName(offset int) string {
	if name, ok := a.Regs[offset]; ok {
		return name
	}
	return fmt.Sprintf("reg_%#x", offset)
}

// Wordsize is the word size in bytes.
func (a *Arch) Wordsize() int {
	return a.Bits / 8
}

// RegDump reads every register in the profile's table from s, in natural
// name order. The profile itself is never written, so concurrent dumps
// over a shared profile are safe.
func (a *Arch) RegDump(s State) ([]RegVal, error) {
	rl := a.Regs.Items()
	sort.Sort(rl)
	ret := make([]RegVal, len(rl))
	for i, r := range rl {
		val, err := s.RegRead(r.Offset, a.Wordsize())
		if err != nil {
			return nil, err
		}
		ret[i] = RegVal{r, val}
	}
	return ret, nil
}
