// Package hook binds procedure summaries to addresses. A table belongs to
// one analysis target and is shared by every worker exploring it.
package hook

import (
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

// Descriptor names a procedure-summary implementation and its
// configuration. The table stores it as-is; invoking the summary is the
// execution engine's business.
type Descriptor struct {
	Variant string
	Params  map[string]string
}

// Table maps addresses to descriptors. Lookups are safe under concurrent
// use; registrations are serialized so an address ends up with at most one
// descriptor no matter how many writers race for it.
type Table struct {
	mu    sync.RWMutex
	hooks map[uint64]*Descriptor
}

func NewTable() *Table {
	return &Table{hooks: make(map[uint64]*Descriptor)}
}

// Register binds d to addr. If addr is already bound the table is left
// unchanged and Register returns false; losing a registration is worth a
// warning but never an error.
func (t *Table) Register(addr uint64, d *Descriptor) bool {
	t.mu.Lock()
	if old, ok := t.hooks[addr]; ok {
		t.mu.Unlock()
		log.WithFields(log.Fields{
			"addr":    addr,
			"variant": d.Variant,
			"kept":    old.Variant,
		}).Warn("address is already hooked, keeping existing hook")
		return false
	}
	t.hooks[addr] = d
	t.mu.Unlock()
	return true
}

// Has reports whether addr is hooked.
func (t *Table) Has(addr uint64) bool {
	t.mu.RLock()
	_, ok := t.hooks[addr]
	t.mu.RUnlock()
	return ok
}

// Lookup returns the descriptor bound to addr, or nil.
func (t *Table) Lookup(addr uint64) *Descriptor {
	t.mu.RLock()
	d := t.hooks[addr]
	t.mu.RUnlock()
	return d
}

// AddrOf scans for the first address whose descriptor shares d's variant.
// With the same variant hooked at several addresses the winner follows map
// iteration order, so callers must treat the result as "an address", not
// "the address".
func (t *Table) AddrOf(d *Descriptor) (uint64, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for addr, stored := range t.hooks {
		if stored.Variant == d.Variant {
			return addr, true
		}
	}
	return 0, false
}

// Len returns the number of hooked addresses.
func (t *Table) Len() int {
	t.mu.RLock()
	n := len(t.hooks)
	t.mu.RUnlock()
	return n
}

// Addrs returns every hooked address, sorted.
func (t *Table) Addrs() []uint64 {
	t.mu.RLock()
	addrs := make([]uint64, 0, len(t.hooks))
	for addr := range t.hooks {
		addrs = append(addrs, addr)
	}
	t.mu.RUnlock()
	sort.Slice(addrs, func(i, j int) bool { return addrs[i] < addrs[j] })
	return addrs
}
