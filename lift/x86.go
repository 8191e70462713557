package lift

import (
	"strings"

	cs "github.com/lunixbochs/capstr"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"golang.org/x/arch/x86/x86asm"

	"github.com/lophius/drover/models"
)

// X86 is a cgo-free lifter for the x86 family built on
// golang.org/x/arch/x86/x86asm. Profiles outside that family are rejected;
// use Capstr for the rest.
type X86 struct {
	cache *models.Discache
}

func NewX86() *X86 {
	return &X86{cache: models.NewDiscache()}
}

type x86Ins struct {
	addr uint64
	raw  []byte
	inst x86asm.Inst
}

func (i *x86Ins) Addr() uint64  { return i.addr }
func (i *x86Ins) Bytes() []byte { return i.raw }

func (i *x86Ins) Mnemonic() string {
	return strings.ToLower(i.inst.Op.String())
}

func (i *x86Ins) OpStr() string {
	text := x86asm.IntelSyntax(i.inst, i.addr, nil)
	if idx := strings.IndexByte(text, ' '); idx >= 0 {
		return text[idx+1:]
	}
	return ""
}

var x86Ops = map[x86asm.Op]transfer{
	x86asm.JMP:  jump,
	x86asm.LJMP: jump,
	x86asm.CALL: call, x86asm.LCALL: call,
	x86asm.RET: ret, x86asm.LRET: ret, x86asm.IRET: ret,
	x86asm.SYSCALL: syscall, x86asm.SYSENTER: syscall, x86asm.INT: syscall,
	x86asm.UD2: halt, x86asm.HLT: halt,

	x86asm.JA: condJump, x86asm.JAE: condJump, x86asm.JB: condJump,
	x86asm.JBE: condJump, x86asm.JCXZ: condJump, x86asm.JE: condJump,
	x86asm.JECXZ: condJump, x86asm.JG: condJump, x86asm.JGE: condJump,
	x86asm.JL: condJump, x86asm.JLE: condJump, x86asm.JNE: condJump,
	x86asm.JNO: condJump, x86asm.JNP: condJump, x86asm.JNS: condJump,
	x86asm.JO: condJump, x86asm.JP: condJump, x86asm.JRCXZ: condJump,
	x86asm.JS: condJump,
	x86asm.LOOP: condJump, x86asm.LOOPE: condJump, x86asm.LOOPNE: condJump,
}

// relTarget resolves a rip-relative branch operand against the address of
// the following instruction.
func relTarget(inst x86asm.Inst, next uint64) (uint64, bool) {
	for _, arg := range inst.Args {
		if rel, ok := arg.(x86asm.Rel); ok {
			return uint64(int64(next) + int64(rel)), true
		}
	}
	return 0, false
}

func (x *X86) Lift(mem models.Mem, profile *models.Arch, addr uint64, limits models.BlockLimits, alt bool) (*models.Block, error) {
	if profile.CS_ARCH != cs.ARCH_X86 {
		return nil, &models.UnsupportedArchError{Name: profile.Name}
	}
	maxSize := limits.MaxSize
	if maxSize <= 0 {
		maxSize = defaultMaxSize
	}
	maxInsns := limits.MaxInsns
	if maxInsns <= 0 {
		maxInsns = defaultMaxInsns
	}

	code, err := mem.MemRead(addr, uint64(maxSize))
	if err != nil {
		return nil, err
	}
	if block := x.cache.Get(addr, code, limits, alt); block != nil {
		return block, nil
	}

	block := &models.Block{Addr: addr}
	off := 0
	for len(block.Ins) < maxInsns && off < len(code) {
		inst, err := x86asm.Decode(code[off:], profile.Bits)
		if err != nil {
			if off == 0 {
				return nil, &models.LiftError{
					Addr: addr,
					Err:  errors.Wrapf(err, "x86asm.Decode failed at %#x", addr),
				}
			}
			// cut the block at the last decodable instruction
			break
		}
		ins := &x86Ins{
			addr: addr + uint64(off),
			raw:  code[off : off+inst.Len],
			inst: inst,
		}
		block.Ins = append(block.Ins, ins)
		off += inst.Len
		block.Size = uint64(off)
		next := addr + block.Size
		if limits.Trace {
			log.WithFields(log.Fields{
				"addr": ins.addr,
				"ins":  ins.Mnemonic() + " " + ins.OpStr(),
			}).Debug("lifted instruction")
		}
		if tr, ok := x86Ops[inst.Op]; ok {
			target, hasTarget := relTarget(inst, next)
			block.Exits = exits(tr, target, hasTarget, ins.addr, next)
			break
		}
		if limits.LastIns > 0 && len(block.Ins) >= limits.LastIns {
			block.Exits = cutExits(next)
			break
		}
	}
	if len(block.Ins) == 0 {
		return nil, &models.LiftError{Addr: addr, Err: errors.New("empty code range")}
	}
	if block.Exits == nil {
		block.Exits = cutExits(addr + block.Size)
	}
	x.cache.Put(addr, code, limits, alt, block)
	return block, nil
}
