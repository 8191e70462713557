package drover

import (
	"fmt"

	"github.com/lophius/drover/hook"
	"github.com/lophius/drover/models"
)

// UnitKind tags the three possible outcomes of resolution.
type UnitKind int

const (
	UnitSyscall UnitKind = iota
	UnitHook
	UnitBlock
)

func (k UnitKind) String() string {
	switch k {
	case UnitSyscall:
		return "syscall"
	case UnitHook:
		return "hook"
	case UnitBlock:
		return "block"
	}
	return fmt.Sprintf("unit_%d", int(k))
}

// Unit is one resolved control-flow step. The set of implementations is
// closed: a consumer can switch over UnitKind (or the concrete types) and
// never re-derive the classification.
type Unit interface {
	UnitAddr() uint64
	UnitKind() UnitKind

	unit()
}

// SyscallUnit marks an OS service call. Dispatch by syscall number happens
// in the engine's handler, not here.
type SyscallUnit struct {
	Addr  uint64
	State models.State
}

func (u *SyscallUnit) UnitAddr() uint64   { return u.Addr }
func (u *SyscallUnit) UnitKind() UnitKind { return UnitSyscall }
func (u *SyscallUnit) unit()              {}

func (u *SyscallUnit) String() string {
	return fmt.Sprintf("<SyscallUnit %#x>", u.Addr)
}

// HookUnit replaces native code at Addr with a procedure summary.
type HookUnit struct {
	Addr  uint64
	State models.State
	Desc  *hook.Descriptor
}

func (u *HookUnit) UnitAddr() uint64   { return u.Addr }
func (u *HookUnit) UnitKind() UnitKind { return UnitHook }
func (u *HookUnit) unit()              {}

func (u *HookUnit) String() string {
	return fmt.Sprintf("<HookUnit %#x %s>", u.Addr, u.Desc.Variant)
}

// BlockUnit carries a lifted block of native code.
type BlockUnit struct {
	Addr  uint64
	State models.State
	Block *models.Block
}

func (u *BlockUnit) UnitAddr() uint64   { return u.Addr }
func (u *BlockUnit) UnitKind() UnitKind { return UnitBlock }
func (u *BlockUnit) unit()              {}

func (u *BlockUnit) String() string {
	return fmt.Sprintf("<BlockUnit %#x insns=%d>", u.Addr, len(u.Block.Ins))
}
