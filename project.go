// Package drover is the dispatch core of a binary analysis pipeline. It
// classifies control-flow targets into execution units: an address is
// either an OS service call, a hooked procedure summary, or native code to
// lift and run. Every step of execution and every CFG edge goes through
// Resolve.
package drover

import (
	"github.com/lophius/drover/hook"
	"github.com/lophius/drover/models"
)

// Project ties one analysis target to its collaborators: the loader that
// produced it, the engine that owns its states, the lifter that decodes it,
// and the hook table that overrides parts of it.
type Project struct {
	Arch   *models.Arch
	Loader models.Loader
	Engine models.Engine
	Lifter models.Lifter
	Hooks  *hook.Table

	// Mode and Options are forwarded verbatim to the engine when states
	// are created.
	Mode    string
	Options []string
}

func New(l models.Loader, e models.Engine, lf models.Lifter, mode string, options []string) (*Project, error) {
	profile, err := l.ProfileAt(l.Entry())
	if err != nil {
		return nil, err
	}
	return &Project{
		Arch:    profile,
		Loader:  l,
		Engine:  e,
		Lifter:  lf,
		Hooks:   hook.NewTable(),
		Mode:    mode,
		Options: options,
	}, nil
}

// InitialState builds a fresh root state for the project's architecture.
func (p *Project) InitialState() (models.State, error) {
	return InitState(p.Engine, p.Arch, p.Loader.Mem(), p.Mode, p.Options)
}

// EntryLocation builds the location analysis starts from: a fresh initial
// state headed for the loader's entry point.
func (p *Project) EntryLocation() (*Location, error) {
	st, err := p.InitialState()
	if err != nil {
		return nil, err
	}
	return NewLocation(models.Const(p.Loader.Entry()), st, models.JumpNormal), nil
}

// BlockResolver is the surface CFG builders consume. *Project satisfies it.
//
// Resolve is referentially consistent: the same concrete address against
// the same hook table state always classifies the same way, so builders may
// memoize on the address.
type BlockResolver interface {
	Resolve(loc *Location, limits models.BlockLimits) (Unit, error)
}

// CFGBuilder is an external graph-construction algorithm. Worklist order,
// storage and termination are its contract, not this package's.
type CFGBuilder interface {
	Construct(entry *Location, r BlockResolver, avoid map[uint64]bool) error
}

// ConstructCFG hands the entry location and the resolver to b. Addresses in
// avoid are still classified but must not be explored past.
func (p *Project) ConstructCFG(b CFGBuilder, avoid map[uint64]bool) error {
	entry, err := p.EntryLocation()
	if err != nil {
		return err
	}
	return b.Construct(entry, p, avoid)
}
