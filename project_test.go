package drover

import (
	"errors"
	"testing"

	"github.com/lophius/drover/models"
)

func TestNewNoLoaderInfo(t *testing.T) {
	l := &testLoader{entry: 0x400000, profile: nil}
	_, err := New(l, &testEngine{}, &testLifter{}, "static", nil)
	var nerr *models.NoLoaderInfoError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected loader failure to propagate, got %v", err)
	}
	if nerr.Addr != 0x400000 {
		t.Errorf("error reports %#x", nerr.Addr)
	}
}

func TestEntryLocation(t *testing.T) {
	p, _, _, _ := testProject(t, "X86", 0x8048000)

	loc, err := p.EntryLocation()
	if err != nil {
		t.Fatal(err)
	}
	if c, ok := loc.Target.(models.Const); !ok || uint64(c) != 0x8048000 {
		t.Errorf("entry target = %v", loc.Target)
	}
	if loc.Kind != models.JumpNormal || loc.Syscall || loc.Err {
		t.Errorf("entry location flags: %+v", loc)
	}
	sp, err := loc.State.RegRead(p.Arch.SP, p.Arch.Wordsize())
	if err != nil {
		t.Fatal(err)
	}
	if sp != p.Arch.DefaultSP {
		t.Errorf("entry state sp = %#x", sp)
	}
}

type seamBuilder struct {
	entry *Location
	res   BlockResolver
	avoid map[uint64]bool
	err   error
}

func (b *seamBuilder) Construct(entry *Location, r BlockResolver, avoid map[uint64]bool) error {
	b.entry = entry
	b.res = r
	b.avoid = avoid
	return b.err
}

func TestConstructCFGSeam(t *testing.T) {
	p, _, _, _ := testProject(t, "AMD64", 0x400000)

	b := &seamBuilder{}
	avoid := map[uint64]bool{0x400800: true}
	if err := p.ConstructCFG(b, avoid); err != nil {
		t.Fatal(err)
	}
	if b.entry == nil {
		t.Fatal("builder never saw an entry location")
	}
	if c, ok := b.entry.Target.(models.Const); !ok || uint64(c) != 0x400000 {
		t.Errorf("entry target = %v", b.entry.Target)
	}
	if b.res == nil {
		t.Fatal("builder never saw a resolver")
	}
	if !b.avoid[0x400800] {
		t.Error("avoid set was not forwarded")
	}

	// the handed resolver really is the project's
	unit, err := b.res.Resolve(b.entry, models.BlockLimits{})
	if err != nil {
		t.Fatal(err)
	}
	if unit.UnitKind() != UnitBlock || unit.UnitAddr() != 0x400000 {
		t.Errorf("seam resolver produced %s@%#x", unit.UnitKind(), unit.UnitAddr())
	}

	berr := errors.New("graph too large")
	if err := p.ConstructCFG(&seamBuilder{err: berr}, nil); err != berr {
		t.Errorf("builder error was rewritten: %v", err)
	}
}
