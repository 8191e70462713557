package hook

import (
	"sync"
	"testing"
)

func TestRegister(t *testing.T) {
	tab := NewTable()
	d1 := &Descriptor{Variant: "memcpy"}
	d2 := &Descriptor{Variant: "memset"}

	if !tab.Register(0x401020, d1) {
		t.Fatal("first registration failed")
	}
	if !tab.Has(0x401020) {
		t.Fatal("address not hooked after registration")
	}
	if tab.Register(0x401020, d2) {
		t.Fatal("second registration for the same address succeeded")
	}
	if got := tab.Lookup(0x401020); got != d1 {
		t.Errorf("duplicate registration replaced the hook: got %v", got)
	}
	if !tab.Has(0x401020) {
		t.Error("address lost its hook after a rejected registration")
	}
	if tab.Len() != 1 {
		t.Errorf("table has %d entries, want 1", tab.Len())
	}
}

func TestLookupMissing(t *testing.T) {
	tab := NewTable()
	if tab.Has(0x1000) {
		t.Error("empty table claims a hook")
	}
	if tab.Lookup(0x1000) != nil {
		t.Error("empty table returned a descriptor")
	}
	if _, ok := tab.AddrOf(&Descriptor{Variant: "memcpy"}); ok {
		t.Error("empty table resolved a variant to an address")
	}
}

func TestAddrOf(t *testing.T) {
	tab := NewTable()
	tab.Register(0x401020, &Descriptor{Variant: "memcpy"})
	tab.Register(0x401400, &Descriptor{Variant: "strlen"})

	addr, ok := tab.AddrOf(&Descriptor{Variant: "memcpy"})
	if !ok {
		t.Fatal("variant lookup failed")
	}
	if addr != 0x401020 {
		t.Errorf("variant resolved to %#x", addr)
	}
	if _, ok := tab.AddrOf(&Descriptor{Variant: "free"}); ok {
		t.Error("unknown variant resolved to an address")
	}
}

func TestAddrOfDuplicateVariant(t *testing.T) {
	tab := NewTable()
	tab.Register(0x1000, &Descriptor{Variant: "memcpy"})
	tab.Register(0x2000, &Descriptor{Variant: "memcpy"})

	addr, ok := tab.AddrOf(&Descriptor{Variant: "memcpy"})
	if !ok {
		t.Fatal("variant lookup failed")
	}
	if addr != 0x1000 && addr != 0x2000 {
		t.Errorf("variant resolved outside the table: %#x", addr)
	}
}

func TestAddrs(t *testing.T) {
	tab := NewTable()
	for _, addr := range []uint64{0x3000, 0x1000, 0x2000} {
		tab.Register(addr, &Descriptor{Variant: "stub"})
	}
	addrs := tab.Addrs()
	want := []uint64{0x1000, 0x2000, 0x3000}
	if len(addrs) != len(want) {
		t.Fatalf("got %d addresses, want %d", len(addrs), len(want))
	}
	for i := range want {
		if addrs[i] != want[i] {
			t.Errorf("addrs[%d] = %#x, want %#x", i, addrs[i], want[i])
		}
	}
}

func TestRegisterRace(t *testing.T) {
	tab := NewTable()
	const workers = 16

	var wg sync.WaitGroup
	wins := make(chan string, workers)
	for i := 0; i < workers; i++ {
		d := &Descriptor{Variant: string(rune('a' + i))}
		wg.Add(1)
		go func() {
			defer wg.Done()
			if tab.Register(0x401000, d) {
				wins <- d.Variant
			}
		}()
	}
	wg.Wait()
	close(wins)

	var winners []string
	for v := range wins {
		winners = append(winners, v)
	}
	if len(winners) != 1 {
		t.Fatalf("%d registrations won, want exactly 1", len(winners))
	}
	if got := tab.Lookup(0x401000); got == nil || got.Variant != winners[0] {
		t.Error("stored descriptor does not match the winning registration")
	}
}

func TestConcurrentReaders(t *testing.T) {
	tab := NewTable()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					tab.Has(0x1000)
					tab.Lookup(0x2000)
					tab.AddrOf(&Descriptor{Variant: "memcpy"})
				}
			}
		}()
	}
	for addr := uint64(0x1000); addr < 0x1400; addr += 8 {
		tab.Register(addr, &Descriptor{Variant: "memcpy"})
	}
	close(done)
	wg.Wait()

	if tab.Len() != 0x400/8 {
		t.Errorf("table has %d entries, want %d", tab.Len(), 0x400/8)
	}
}
