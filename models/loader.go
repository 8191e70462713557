package models

// Mem is a read-only view of loaded program memory.
type Mem interface {
	MemRead(addr, size uint64) ([]byte, error)
}

// Loader resolves addresses to architecture metadata and bytes.
type Loader interface {
	Entry() uint64
	Mem() Mem

	// ProfileAt returns the architecture profile governing addr, or a
	// *NoLoaderInfoError when addr is outside anything it loaded.
	ProfileAt(addr uint64) (*Arch, error)

	// ModeAt reports whether addr uses the alternate instruction encoding.
	// Loaders must error when they have no metadata to answer with; the
	// resolver never substitutes a default.
	ModeAt(addr uint64) (bool, error)

	Symbols() ([]Symbol, error)
}

// Symbol covers [Start, End). End == Start marks symbols with no known
// size, which are treated as open-ended.
type Symbol struct {
	Name       string
	Start, End uint64
	Dynamic    bool
}

func (s Symbol) Contains(addr uint64) bool {
	return s.Start <= addr && (addr < s.End || s.End == s.Start)
}
