// Package concrete is a minimal state engine: registers hold plain values
// and the only expression it evaluates is models.Const. It is enough to
// drive CFG construction and the test suite; symbolic engines replace it
// wholesale behind models.Engine.
package concrete

import (
	"github.com/pkg/errors"

	"github.com/lophius/drover/models"
)

type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) NewState(profile *models.Arch, mem models.Mem, mode string, options []string) (models.State, error) {
	if profile == nil {
		return nil, &models.UnsupportedArchError{Name: ""}
	}
	st := &State{
		arch:    profile,
		mem:     mem,
		mode:    mode,
		options: append([]string(nil), options...),
		regs:    make(map[int]uint64, len(profile.Regs)),
	}
	for offset := range profile.Regs {
		st.regs[offset] = 0
	}
	return st, nil
}

// Eval knows constants and nothing else. Expressions from other engines
// concretize to no values at all, which the caller reports as unresolved.
func (e *Engine) Eval(st models.State, expr models.Expr) ([]uint64, error) {
	if c, ok := expr.(models.Const); ok {
		return []uint64{uint64(c)}, nil
	}
	return nil, nil
}

// State is a register file keyed by profile offsets. Valid offsets are
// exactly the profile's register table.
type State struct {
	arch    *models.Arch
	mem     models.Mem
	mode    string
	options []string
	regs    map[int]uint64
}

func (s *State) Arch() *models.Arch { return s.arch }
func (s *State) Mode() string       { return s.mode }

func sizeMask(size int) uint64 {
	if size >= 8 {
		return ^uint64(0)
	}
	return 1<<(8*uint(size)) - 1
}

func (s *State) RegWrite(offset int, val uint64, size int) error {
	if size < 1 || size > 8 {
		return errors.Errorf("bad register write size %d", size)
	}
	if _, ok := s.regs[offset]; !ok {
		return errors.Errorf("invalid register offset %#x", offset)
	}
	s.regs[offset] = val & sizeMask(size)
	return nil
}

func (s *State) RegRead(offset int, size int) (uint64, error) {
	if size < 1 || size > 8 {
		return 0, errors.Errorf("bad register read size %d", size)
	}
	val, ok := s.regs[offset]
	if !ok {
		return 0, errors.Errorf("invalid register offset %#x", offset)
	}
	return val & sizeMask(size), nil
}

// Clone deep-copies the register file. The clone shares the profile and
// the memory view, both read-only.
func (s *State) Clone() models.State {
	regs := make(map[int]uint64, len(s.regs))
	for k, v := range s.regs {
		regs[k] = v
	}
	return &State{
		arch:    s.arch,
		mem:     s.mem,
		mode:    s.mode,
		options: s.options,
		regs:    regs,
	}
}
