// Package asm assembles source text through keystone, for shellcode input
// that arrives as assembly rather than bytes.
package asm

import (
	"sync"

	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	"github.com/pkg/errors"

	"github.com/lophius/drover/models"
)

type Assembler struct {
	mu      sync.Mutex
	engines map[[2]int]*ks.Keystone
}

func New() *Assembler {
	return &Assembler{engines: make(map[[2]int]*ks.Keystone)}
}

func (a *Assembler) engine(profile *models.Arch) (*ks.Keystone, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := [2]int{profile.KS_ARCH, profile.KS_MODE}
	if eng, ok := a.engines[key]; ok {
		return eng, nil
	}
	eng, err := ks.New(ks.Architecture(profile.KS_ARCH), ks.Mode(profile.KS_MODE))
	if err != nil {
		return nil, errors.Wrap(err, "ks.New() failed")
	}
	a.engines[key] = eng
	return eng, nil
}

// Assemble turns src into machine code for profile, positioned at addr.
func (a *Assembler) Assemble(profile *models.Arch, src string, addr uint64) ([]byte, error) {
	if profile.KS_ARCH == 0 {
		return nil, &models.UnsupportedArchError{Name: profile.Name}
	}
	eng, err := a.engine(profile)
	if err != nil {
		return nil, err
	}
	out, _, ok := eng.Assemble(src, addr)
	if !ok {
		return nil, errors.Wrap(eng.LastError(), "ks.Assemble() failed")
	}
	return out, nil
}
