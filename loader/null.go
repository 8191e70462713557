package loader

import (
	"github.com/lophius/drover/models"
)

// NullLoader serves raw code with no container format: shellcode input and
// tests. The whole range shares one profile and one fixed encoding mode.
type NullLoader struct {
	Profile *models.Arch
	Base    uint64
	Start   uint64
	Code    []byte
	Alt     bool

	mem *segMem
}

func NewNullLoader(profile *models.Arch, base, entry uint64, code []byte, alt bool) *NullLoader {
	return &NullLoader{
		Profile: profile,
		Base:    base,
		Start:   entry,
		Code:    code,
		Alt:     alt,
		mem: newSegMem([]Segment{
			{Addr: base, Data: code, Size: uint64(len(code))},
		}),
	}
}

func (n *NullLoader) Entry() uint64   { return n.Start }
func (n *NullLoader) Mem() models.Mem { return n.mem }

func (n *NullLoader) ProfileAt(addr uint64) (*models.Arch, error) {
	if !n.mem.contains(addr) {
		return nil, &models.NoLoaderInfoError{Addr: addr}
	}
	return n.Profile, nil
}

func (n *NullLoader) ModeAt(addr uint64) (bool, error) {
	return n.Alt, nil
}

func (n *NullLoader) Symbols() ([]models.Symbol, error) {
	return nil, nil
}
