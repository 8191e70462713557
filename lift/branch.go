package lift

import (
	"strconv"
	"strings"

	cs "github.com/lunixbochs/capstr"

	"github.com/lophius/drover/models"
)

// transfer describes how a block-ending instruction leaves its block.
// Cond means the fall-through address is also a successor.
type transfer struct {
	Kind models.JumpKind
	Cond bool
}

var (
	jump     = transfer{Kind: models.JumpNormal}
	condJump = transfer{Kind: models.JumpNormal, Cond: true}
	call     = transfer{Kind: models.JumpCall}
	ret      = transfer{Kind: models.JumpRet}
	syscall  = transfer{Kind: models.JumpSyscall}
	halt     = transfer{Kind: models.JumpExit}
)

var x86Branches = map[string]transfer{
	"jmp": jump, "ljmp": jump,
	"call": call, "lcall": call,
	"ret": ret, "retf": ret, "iret": ret, "iretd": ret, "iretq": ret,
	"syscall": syscall, "sysenter": syscall, "int": syscall, "int3": syscall,
	"ud2": halt, "hlt": halt,

	"ja": condJump, "jae": condJump, "jb": condJump, "jbe": condJump,
	"jc": condJump, "je": condJump, "jg": condJump, "jge": condJump,
	"jl": condJump, "jle": condJump, "jna": condJump, "jnae": condJump,
	"jnb": condJump, "jnbe": condJump, "jnc": condJump, "jne": condJump,
	"jng": condJump, "jnge": condJump, "jnl": condJump, "jnle": condJump,
	"jno": condJump, "jnp": condJump, "jns": condJump, "jnz": condJump,
	"jo": condJump, "jp": condJump, "js": condJump, "jz": condJump,
	"jcxz": condJump, "jecxz": condJump, "jrcxz": condJump,
	"loop": condJump, "loope": condJump, "loopne": condJump,
}

// capstone appends the condition code to arm mnemonics, so the table keeps
// bare forms and armCond strips suffixes before lookup.
var armBranches = map[string]transfer{
	"b": jump, "bx": jump, "bxj": jump,
	"bl": call, "blx": call,
	"cbz": condJump, "cbnz": condJump,
	"svc": syscall, "swi": syscall,
	"udf": halt,
}

var armConds = []string{
	"eq", "ne", "cs", "hs", "cc", "lo", "mi", "pl",
	"vs", "vc", "hi", "ls", "ge", "lt", "gt", "le", "al",
}

var ppcBranches = map[string]transfer{
	"b": jump, "ba": jump, "bctr": jump, "blr": ret,
	"bl": call, "bla": call, "bctrl": call, "bclrl": call,
	"bc": condJump, "bca": condJump, "bcl": condJump, "bclr": condJump,
	"beq": condJump, "bne": condJump, "blt": condJump, "bgt": condJump,
	"ble": condJump, "bge": condJump, "bdnz": condJump, "bdz": condJump,
	"sc": syscall,
}

var mipsBranches = map[string]transfer{
	"j": jump, "b": jump, "jr": jump,
	"jal": call, "jalr": call, "bal": call, "bltzal": call, "bgezal": call,
	"beq": condJump, "bne": condJump, "beqz": condJump, "bnez": condJump,
	"bgez": condJump, "bgtz": condJump, "blez": condJump, "bltz": condJump,
	"syscall": syscall,
	"break":   halt,
}

func branchTable(profile *models.Arch) map[string]transfer {
	switch profile.CS_ARCH {
	case cs.ARCH_X86:
		return x86Branches
	case cs.ARCH_ARM:
		return armBranches
	case cs.ARCH_PPC:
		return ppcBranches
	case cs.ARCH_MIPS:
		return mipsBranches
	}
	return nil
}

// classify reports whether mnemonic ends a block on profile, and how.
func classify(profile *models.Arch, mnemonic string) (transfer, bool) {
	table := branchTable(profile)
	if table == nil {
		return transfer{}, false
	}
	if tr, ok := table[mnemonic]; ok {
		return tr, ok
	}
	if profile.CS_ARCH == cs.ARCH_ARM {
		return armCond(mnemonic)
	}
	return transfer{}, false
}

// armCond matches condition-suffixed branches like beq, blne, bxls. Any
// condition turns the transfer conditional; the base mnemonic keeps its
// call/jump kind.
func armCond(mnemonic string) (transfer, bool) {
	for _, base := range []string{"blx", "bl", "bx", "b"} {
		if !strings.HasPrefix(mnemonic, base) {
			continue
		}
		suffix := mnemonic[len(base):]
		for _, cond := range armConds {
			if suffix == cond {
				tr := armBranches[base]
				if cond != "al" {
					tr.Cond = true
				}
				return tr, true
			}
		}
	}
	return transfer{}, false
}

// immTarget pulls a static branch target out of an operand string: the
// first token that parses as a bare or #-prefixed integer.
func immTarget(opstr string) (uint64, bool) {
	for _, tok := range strings.FieldsFunc(opstr, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	}) {
		tok = strings.TrimPrefix(tok, "#")
		if v, err := strconv.ParseUint(tok, 0, 64); err == nil {
			return v, true
		}
	}
	return 0, false
}

// exits builds the successor list for a block ending in tr at insAddr, with
// next the fall-through address. target is only meaningful when hasTarget.
func exits(tr transfer, target uint64, hasTarget bool, insAddr, next uint64) []models.Exit {
	switch tr.Kind {
	case models.JumpRet:
		return []models.Exit{{Kind: models.JumpRet}}
	case models.JumpExit:
		return []models.Exit{{Kind: models.JumpExit}}
	case models.JumpSyscall:
		// the service call itself, then the return into the next insn
		return []models.Exit{
			{Target: insAddr, Known: true, Kind: models.JumpSyscall},
			{Target: next, Known: true, Kind: models.JumpNormal},
		}
	case models.JumpCall:
		out := []models.Exit{{Target: target, Known: hasTarget, Kind: models.JumpCall}}
		return append(out, models.Exit{Target: next, Known: true, Kind: models.JumpNormal})
	}
	out := []models.Exit{{Target: target, Known: hasTarget, Kind: models.JumpNormal}}
	if tr.Cond {
		out = append(out, models.Exit{Target: next, Known: true, Kind: models.JumpNormal})
	}
	return out
}

// fallthrough-only exit for blocks cut by limits rather than control flow
func cutExits(next uint64) []models.Exit {
	return []models.Exit{{Target: next, Known: true, Kind: models.JumpNormal}}
}
