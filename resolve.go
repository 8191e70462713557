package drover

import (
	log "github.com/sirupsen/logrus"

	"github.com/lophius/drover/models"
)

// Resolve classifies loc and produces exactly one execution unit. The
// checks run in a fixed order and the first hit wins:
//
//	error flag, concretization, alignment, syscall flag, hook table, lift
//
// Resolve holds no state of its own between calls; only the hook table can
// change a later answer for the same address. Collaborator failures (engine,
// loader, lifter) come back unchanged.
func (p *Project) Resolve(loc *Location, limits models.BlockLimits) (Unit, error) {
	if loc.Err {
		return nil, &models.InvalidStateError{Kind: loc.Kind}
	}

	vals, err := p.Engine.Eval(loc.State, loc.Target)
	if err != nil {
		return nil, err
	}
	// only distinct candidates count: an engine repeating one value has
	// still resolved the target
	var addr uint64
	distinct := 0
	for i, v := range vals {
		seen := false
		for _, prev := range vals[:i] {
			if prev == v {
				seen = true
				break
			}
		}
		if !seen {
			addr = v
			distinct++
		}
	}
	if distinct != 1 {
		return nil, &models.UnresolvedTargetError{Target: loc.Target, Count: distinct}
	}

	profile := loc.State.Arch()
	if addr%uint64(profile.Align) != 0 {
		return nil, &models.MisalignedTargetError{
			Addr:  addr,
			Align: profile.Align,
			Arch:  profile.Name,
		}
	}

	if loc.Syscall {
		return resolved(&SyscallUnit{Addr: addr, State: loc.State})
	}
	if d := p.Hooks.Lookup(addr); d != nil {
		return resolved(&HookUnit{Addr: addr, State: loc.State, Desc: d})
	}

	alt := false
	if profile.AltMode {
		if alt, err = p.Loader.ModeAt(addr); err != nil {
			return nil, &models.MissingModeError{Addr: addr, Arch: profile.Name, Err: err}
		}
	}
	block, err := p.Lifter.Lift(p.Loader.Mem(), profile, addr, limits, alt)
	if err != nil {
		return nil, err
	}
	return resolved(&BlockUnit{Addr: addr, State: loc.State, Block: block})
}

func resolved(u Unit) (Unit, error) {
	log.WithFields(log.Fields{
		"addr": u.UnitAddr(),
		"unit": u.UnitKind(),
	}).Debug("resolved execution unit")
	return u, nil
}
