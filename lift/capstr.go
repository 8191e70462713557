// Package lift provides the in-tree lifter backends: capstone via
// github.com/lunixbochs/capstr, and a pure-Go x86 decoder. Both satisfy
// models.Lifter; external lifters plug in behind the same interface.
package lift

import (
	"sync"

	cs "github.com/lunixbochs/capstr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/lophius/drover/models"
)

const (
	defaultMaxSize  = 4096
	defaultMaxInsns = 99
)

type engineKey struct {
	arch, mode int
}

// Capstr lifts through capstone. Engines are opened lazily, one per
// (arch, mode) pair, so the alternate-encoding engine only exists once a
// thumb address is actually lifted.
type Capstr struct {
	mu      sync.Mutex
	engines map[engineKey]*cs.Engine
	cache   *models.Discache
}

func NewCapstr() *Capstr {
	return &Capstr{
		engines: make(map[engineKey]*cs.Engine),
		cache:   models.NewDiscache(),
	}
}

func (c *Capstr) engine(arch, mode int) (*cs.Engine, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := engineKey{arch, mode}
	if eng, ok := c.engines[key]; ok {
		return eng, nil
	}
	eng, err := cs.New(arch, mode)
	if err != nil {
		return nil, errors.Wrap(err, "cs.New() failed")
	}
	c.engines[key] = eng
	return eng, nil
}

func (c *Capstr) Lift(mem models.Mem, profile *models.Arch, addr uint64, limits models.BlockLimits, alt bool) (*models.Block, error) {
	maxSize := limits.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	maxInsns := limits.MaxInsns
	if maxInsns <= 0 {
		maxInsns = defaultMaxInsns
	}

	mode := profile.CS_MODE
	if alt && profile.CS_MODE_ALT != 0 {
		mode = profile.CS_MODE_ALT
	}

	code, err := mem.MemRead(addr, uint64(maxSize))
	if err != nil {
		return nil, err
	}
	if block := c.cache.Get(addr, code, limits, alt); block != nil {
		return block, nil
	}

	eng, err := c.engine(profile.CS_ARCH, mode)
	if err != nil {
		return nil, err
	}
	dis, err := eng.Dis(code, addr, uint64(maxInsns))
	if err != nil {
		return nil, &models.LiftError{Addr: addr, Err: errors.Wrap(err, "capstone disassembly failed")}
	}
	if len(dis) == 0 {
		return nil, &models.LiftError{Addr: addr, Err: errors.New("no decodable instruction")}
	}

	block := &models.Block{Addr: addr, Alt: alt && profile.CS_MODE_ALT != 0}
	for i, ins := range dis {
		block.Ins = append(block.Ins, ins)
		block.Size += uint64(len(ins.Bytes()))
		next := addr + block.Size
		if limits.Trace {
			log.WithFields(log.Fields{
				"addr": ins.Addr(),
				"ins":  ins.Mnemonic() + " " + ins.OpStr(),
			}).Debug("lifted instruction")
		}
		if tr, ok := classify(profile, ins.Mnemonic()); ok {
			target, hasTarget := immTarget(ins.OpStr())
			block.Exits = exits(tr, target, hasTarget, ins.Addr(), next)
			break
		}
		if limits.LastIns > 0 && i+1 >= limits.LastIns {
			block.Exits = cutExits(next)
			break
		}
	}
	if block.Exits == nil {
		block.Exits = cutExits(addr + block.Size)
	}
	c.cache.Put(addr, code, limits, alt, block)
	return block, nil
}
