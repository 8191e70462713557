package ppc32

import (
	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	cs "github.com/lunixbochs/capstr"

	"github.com/lophius/drover/models"
)

var Arch = &models.Arch{
	Name:      "PPC32",
	Bits:      32,
	SP:        20,
	DefaultSP: 0xffff0000,
	Align:     4,
	CS_ARCH:   cs.ARCH_PPC,
	CS_MODE:   cs.MODE_32 | cs.MODE_BIG_ENDIAN,
	KS_ARCH:   int(ks.ARCH_PPC),
	KS_MODE:   int(ks.MODE_PPC32 | ks.MODE_BIG_ENDIAN),

	Regs: map[int]string{
		16: "r0",
		20: "r1",
		24: "r2",
		28: "r3",
		32: "r4",
		36: "r5",
		40: "r6",
		44: "r7",
		48: "r8",
		52: "r9",
		56: "r10",
		60: "r11",
		64: "r12",
		68: "r13",
	},
}
