package loader

import (
	"debug/elf"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/lophius/drover/arch"
	"github.com/lophius/drover/models"
)

var elfMachines = map[elf.Machine]string{
	elf.EM_X86_64: "AMD64",
	elf.EM_386:    "X86",
	elf.EM_ARM:    "ARM",
	elf.EM_PPC:    "PPC32",
	elf.EM_MIPS:   "MIPS32",
}

type ElfLoader struct {
	profile *models.Arch
	entry   uint64
	mem     *segMem
	file    *elf.File

	symOnce  sync.Once
	symCache []models.Symbol
	symErr   error

	modeOnce sync.Once
	modes    []armMode
}

func NewElfLoader(r io.ReaderAt) (*ElfLoader, error) {
	file, err := elf.NewFile(r)
	if err != nil {
		return nil, errors.Wrap(err, "elf.NewFile() failed")
	}
	name, ok := elfMachines[file.Machine]
	if !ok {
		return nil, &models.UnsupportedArchError{Name: file.Machine.String()}
	}
	profile, err := arch.GetArch(name)
	if err != nil {
		return nil, err
	}
	var segs []Segment
	for _, prog := range file.Progs {
		if prog.Type != elf.PT_LOAD {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := io.ReadFull(prog.Open(), data); err != nil {
			return nil, errors.Wrapf(err, "reading segment at %#x", prog.Vaddr)
		}
		segs = append(segs, Segment{
			Addr: prog.Vaddr,
			Data: data,
			Size: prog.Memsz,
		})
	}
	return &ElfLoader{
		profile: profile,
		entry:   file.Entry,
		mem:     newSegMem(segs),
		file:    file,
	}, nil
}

func (l *ElfLoader) Entry() uint64   { return l.entry }
func (l *ElfLoader) Mem() models.Mem { return l.mem }

func (l *ElfLoader) ProfileAt(addr uint64) (*models.Arch, error) {
	if !l.mem.contains(addr) {
		return nil, &models.NoLoaderInfoError{Addr: addr}
	}
	return l.profile, nil
}

func (l *ElfLoader) Symbols() ([]models.Symbol, error) {
	l.symOnce.Do(func() {
		l.symCache, l.symErr = l.readSymbols()
	})
	return l.symCache, l.symErr
}

func (l *ElfLoader) readSymbols() ([]models.Symbol, error) {
	var ret []models.Symbol
	syms, err := l.file.Symbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, errors.Wrap(err, "reading symbol table")
	}
	dyn, err := l.file.DynamicSymbols()
	if err != nil && err != elf.ErrNoSymbols {
		return nil, errors.Wrap(err, "reading dynamic symbols")
	}
	for _, group := range []struct {
		syms    []elf.Symbol
		dynamic bool
	}{{syms, false}, {dyn, true}} {
		for _, sym := range group.syms {
			if sym.Name == "" {
				continue
			}
			ret = append(ret, models.Symbol{
				Name:    sym.Name,
				Start:   sym.Value,
				End:     sym.Value + sym.Size,
				Dynamic: group.dynamic,
			})
		}
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Start < ret[j].Start })
	return ret, nil
}

// armMode marks a range or point where the instruction encoding is known:
// $t/$a mapping symbols open a region, thumb function symbols carry the
// low bit of their value.
type armMode struct {
	addr  uint64
	size  uint64
	thumb bool
}

func (l *ElfLoader) armModes() []armMode {
	l.modeOnce.Do(func() {
		syms, err := l.file.Symbols()
		if err != nil {
			return
		}
		var modes []armMode
		for _, sym := range syms {
			switch {
			case sym.Name == "$t" || strings.HasPrefix(sym.Name, "$t."):
				modes = append(modes, armMode{addr: sym.Value, thumb: true})
			case sym.Name == "$a" || strings.HasPrefix(sym.Name, "$a."):
				modes = append(modes, armMode{addr: sym.Value})
			case elf.ST_TYPE(sym.Info) == elf.STT_FUNC:
				modes = append(modes, armMode{
					addr:  sym.Value &^ 1,
					size:  sym.Size,
					thumb: sym.Value&1 == 1,
				})
			}
		}
		sort.Slice(modes, func(i, j int) bool { return modes[i].addr < modes[j].addr })
		l.modes = modes
	})
	return l.modes
}

// ModeAt answers whether addr is thumb from symbol metadata. With no
// covering metadata it errors; the resolver turns that into a
// MissingModeError rather than guessing.
func (l *ElfLoader) ModeAt(addr uint64) (bool, error) {
	if !l.profile.AltMode {
		return false, nil
	}
	modes := l.armModes()
	for i := len(modes) - 1; i >= 0; i-- {
		m := modes[i]
		if m.addr > addr {
			continue
		}
		if m.size == 0 || addr < m.addr+m.size {
			return m.thumb, nil
		}
	}
	return false, errors.Errorf("no arm mode metadata covers %#x", addr)
}
