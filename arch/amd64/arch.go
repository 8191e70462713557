package amd64

import (
	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	cs "github.com/lunixbochs/capstr"

	"github.com/lophius/drover/models"
)

var Arch = &models.Arch{
	Name:      "AMD64",
	Bits:      64,
	SP:        48,
	DefaultSP: 0xfffffffffff0000,
	Align:     1,
	CS_ARCH:   cs.ARCH_X86,
	CS_MODE:   cs.MODE_64,
	KS_ARCH:   int(ks.ARCH_X86),
	KS_MODE:   int(ks.MODE_64),

	// dflag must start at 1 or string instructions run backwards
	InitWrites: []models.RegWrite{
		{Offset: 176, Val: 1, Size: 8},
	},

	Regs: map[int]string{
		16:  "rax",
		24:  "rcx",
		32:  "rdx",
		40:  "rbx",
		48:  "rsp",
		56:  "rbp",
		64:  "rsi",
		72:  "rdi",
		80:  "r8",
		88:  "r9",
		96:  "r10",
		104: "r11",
		112: "r12",
		120: "r13",
		128: "r14",
		136: "r15",
		176: "dflag",
		184: "rip",
	},
}
