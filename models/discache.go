package models

import (
	"bytes"
	"sync"
)

type discacheKey struct {
	addr uint64
	alt  bool
}

type DiscacheEntry struct {
	Mem    []byte
	Limits BlockLimits
	Block  *Block
}

// Discache memoizes lifted blocks. Entries are validated against the bytes
// they were decoded from, so stale mappings fall out on their own.
type Discache struct {
	sync.RWMutex
	cache map[discacheKey]*DiscacheEntry
}

func NewDiscache() *Discache {
	return &Discache{cache: make(map[discacheKey]*DiscacheEntry)}
}

func (d *Discache) Get(addr uint64, mem []byte, limits BlockLimits, alt bool) *Block {
	d.RLock()
	if ent, ok := d.cache[discacheKey{addr, alt}]; ok {
		if ent.Limits == limits && bytes.Equal(mem, ent.Mem) {
			d.RUnlock()
			return ent.Block
		}
	}
	d.RUnlock()
	return nil
}

func (d *Discache) Put(addr uint64, mem []byte, limits BlockLimits, alt bool, block *Block) {
	d.Lock()
	d.cache[discacheKey{addr, alt}] = &DiscacheEntry{
		Mem:    mem,
		Limits: limits,
		Block:  block,
	}
	d.Unlock()
}
