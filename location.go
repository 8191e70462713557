package drover

import (
	"fmt"

	"github.com/lophius/drover/models"
)

// Location is a pending control-flow target: where execution wants to go
// next, with the state it would arrive in. The target may be symbolic;
// Resolve concretizes it before dispatch.
//
// The state is owned by this location alone until it is handed to the
// resolved unit. Branching callers clone per successor.
type Location struct {
	Target models.Expr
	State  models.State
	Kind   models.JumpKind

	// Syscall and Err are derived from Kind by NewLocation but remain
	// independent flags; engines with richer jump kinds set them directly.
	Syscall bool
	Err     bool
}

func NewLocation(target models.Expr, st models.State, kind models.JumpKind) *Location {
	return &Location{
		Target:  target,
		State:   st,
		Kind:    kind,
		Syscall: kind == models.JumpSyscall,
		Err:     kind == models.JumpErr,
	}
}

func (l *Location) String() string {
	return fmt.Sprintf("<Location %s %s>", l.Target, l.Kind)
}
