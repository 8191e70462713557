// Package loader resolves binaries into the memory view and architecture
// metadata the dispatch core consumes. ELF files and raw shellcode are
// supported in-tree; other formats plug in behind models.Loader.
package loader

import (
	"sort"

	"github.com/lophius/drover/models"
)

// Segment is one loaded range. Size may exceed len(Data); the tail reads
// as zeroes (ELF memsz past filesz).
type Segment struct {
	Addr uint64
	Data []byte
	Size uint64
}

func (s *Segment) Contains(addr uint64) bool {
	return s.Addr <= addr && addr < s.Addr+s.Size
}

// segMem is a read-only view over sorted segments. Reads must start inside
// a segment but may run past its end; the result is truncated there, so
// decoding near a segment boundary sees exactly the bytes that exist.
type segMem struct {
	segs []Segment
}

func newSegMem(segs []Segment) *segMem {
	sorted := append([]Segment(nil), segs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Addr < sorted[j].Addr })
	return &segMem{segs: sorted}
}

func (m *segMem) find(addr uint64) *Segment {
	for i := range m.segs {
		if m.segs[i].Contains(addr) {
			return &m.segs[i]
		}
	}
	return nil
}

func (m *segMem) contains(addr uint64) bool {
	return m.find(addr) != nil
}

func (m *segMem) MemRead(addr, size uint64) ([]byte, error) {
	seg := m.find(addr)
	if seg == nil {
		return nil, &models.NoLoaderInfoError{Addr: addr}
	}
	off := addr - seg.Addr
	if size > seg.Size-off {
		size = seg.Size - off
	}
	ret := make([]byte, size)
	if off < uint64(len(seg.Data)) {
		copy(ret, seg.Data[off:])
	}
	return ret, nil
}
