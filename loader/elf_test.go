package loader

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"testing"

	"github.com/lophius/drover/models"
)

type elfSym struct {
	name        string
	value, size uint64
	info        byte
}

// buildElf64 synthesizes a one-segment ELF64 with a symbol table. Offsets
// are laid out sequentially: ehdr, phdr, code, symtab, strtab, shstrtab,
// shdrs.
func buildElf64(machine elf.Machine, entry uint64, vaddr uint64, code []byte, memsz uint64, syms []elfSym) []byte {
	var buf bytes.Buffer
	put := func(vs ...interface{}) {
		for _, v := range vs {
			binary.Write(&buf, binary.LittleEndian, v)
		}
	}

	strtab := []byte{0}
	nameOff := make([]uint32, len(syms))
	for i, s := range syms {
		nameOff[i] = uint32(len(strtab))
		strtab = append(strtab, s.name...)
		strtab = append(strtab, 0)
	}
	shstrtab := []byte("\x00.symtab\x00.strtab\x00.shstrtab\x00")

	const (
		ehsize  = 64
		phsize  = 56
		shsize  = 64
		symsize = 24
	)
	codeOff := uint64(ehsize + phsize)
	symOff := codeOff + uint64(len(code))
	symtabSize := uint64((1 + len(syms)) * symsize)
	strOff := symOff + symtabSize
	shstrOff := strOff + uint64(len(strtab))
	shOff := shstrOff + uint64(len(shstrtab))

	// ehdr
	put([]byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}, make([]byte, 8))
	put(uint16(elf.ET_EXEC), uint16(machine), uint32(1), entry,
		uint64(ehsize), shOff, uint32(0),
		uint16(ehsize), uint16(phsize), uint16(1),
		uint16(shsize), uint16(4), uint16(3))
	// phdr: one PT_LOAD
	put(uint32(elf.PT_LOAD), uint32(5), codeOff, vaddr, vaddr,
		uint64(len(code)), memsz, uint64(0x1000))
	put(code)
	// symtab: null symbol then syms
	put(make([]byte, symsize))
	for i, s := range syms {
		put(nameOff[i], s.info, byte(0), uint16(1), s.value, s.size)
	}
	put(strtab, shstrtab)
	// shdrs: null, .symtab, .strtab, .shstrtab
	put(make([]byte, shsize))
	put(uint32(1), uint32(elf.SHT_SYMTAB), uint64(0), uint64(0),
		symOff, symtabSize, uint32(2), uint32(1), uint64(8), uint64(symsize))
	put(uint32(9), uint32(elf.SHT_STRTAB), uint64(0), uint64(0),
		strOff, uint64(len(strtab)), uint32(0), uint32(0), uint64(1), uint64(0))
	put(uint32(17), uint32(elf.SHT_STRTAB), uint64(0), uint64(0),
		shstrOff, uint64(len(shstrtab)), uint32(0), uint32(0), uint64(1), uint64(0))
	return buf.Bytes()
}

func funcInfo() byte {
	return byte(elf.STB_GLOBAL)<<4 | byte(elf.STT_FUNC)
}

func TestElfLoader(t *testing.T) {
	code := bytes.Repeat([]byte{0x90}, 15)
	code = append(code, 0xc3)
	raw := buildElf64(elf.EM_X86_64, 0x400000, 0x400000, code, 32, []elfSym{
		{"main", 0x400000, 16, funcInfo()},
		{"helper", 0x400010, 8, funcInfo()},
	})
	l, err := NewElfLoader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal("NewElfLoader failed:", err)
	}
	if l.Entry() != 0x400000 {
		t.Errorf("entry = %#x", l.Entry())
	}

	p, err := l.ProfileAt(0x400008)
	if err != nil {
		t.Fatal("ProfileAt failed:", err)
	}
	if p.Name != "AMD64" {
		t.Errorf("profile = %s", p.Name)
	}
	if _, err := l.ProfileAt(0x500000); err == nil {
		t.Error("ProfileAt outside the image did not fail")
	} else if _, ok := err.(*models.NoLoaderInfoError); !ok {
		t.Errorf("ProfileAt error = %T", err)
	}

	// memsz past filesz reads as zeroes
	mem, err := l.Mem().MemRead(0x400010, 16)
	if err != nil {
		t.Fatal("MemRead failed:", err)
	}
	if len(mem) != 16 || !bytes.Equal(mem[:6], make([]byte, 6)) {
		t.Errorf("bss read = %x", mem)
	}

	syms, err := l.Symbols()
	if err != nil {
		t.Fatal("Symbols failed:", err)
	}
	if len(syms) != 2 {
		t.Fatalf("symbols = %v", syms)
	}
	if syms[0].Name != "main" || !syms[0].Contains(0x400008) {
		t.Errorf("first symbol = %+v", syms[0])
	}
	// End is an end address, not a size
	if syms[0].End != 0x400010 || syms[1].End != 0x400018 {
		t.Errorf("symbol ranges = [%#x,%#x) [%#x,%#x)",
			syms[0].Start, syms[0].End, syms[1].Start, syms[1].End)
	}
	if syms[0].Contains(0x400010) {
		t.Error("symbol covers its end address")
	}

	// AMD64 has no alternate encoding
	alt, err := l.ModeAt(0x400000)
	if err != nil || alt {
		t.Errorf("ModeAt = %v, %v", alt, err)
	}
}

func TestElfLoaderUnsupportedMachine(t *testing.T) {
	raw := buildElf64(elf.EM_SPARC, 0x1000, 0x1000, []byte{0}, 1, nil)
	_, err := NewElfLoader(bytes.NewReader(raw))
	if _, ok := err.(*models.UnsupportedArchError); !ok {
		t.Fatalf("error = %v (%T), want UnsupportedArchError", err, err)
	}
}

func TestElfArmModes(t *testing.T) {
	code := bytes.Repeat([]byte{0}, 16)
	raw := buildElf64(elf.EM_ARM, 0x8000, 0x8000, code, 0x1200, []elfSym{
		{"$a", 0x8000, 0, 0},
		{"$t", 0x8010, 0, 0},
		{"thumb_fn", 0x9001, 0x10, funcInfo()},
	})
	l, err := NewElfLoader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal("NewElfLoader failed:", err)
	}

	cases := []struct {
		addr  uint64
		thumb bool
	}{
		{0x8004, false}, // $a region
		{0x8014, true},  // $t region
		{0x9004, true},  // thumb function body
	}
	for _, c := range cases {
		thumb, err := l.ModeAt(c.addr)
		if err != nil {
			t.Errorf("ModeAt(%#x) failed: %v", c.addr, err)
			continue
		}
		if thumb != c.thumb {
			t.Errorf("ModeAt(%#x) = %v, want %v", c.addr, thumb, c.thumb)
		}
	}

	// below all metadata: must error, never default
	if _, err := l.ModeAt(0x7000); err == nil {
		t.Error("ModeAt with no covering metadata did not fail")
	}
}
