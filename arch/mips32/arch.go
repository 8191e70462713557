package mips32

import (
	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	cs "github.com/lunixbochs/capstr"

	"github.com/lophius/drover/models"
)

var Arch = &models.Arch{
	Name:      "MIPS32",
	Bits:      32,
	SP:        124,
	DefaultSP: 0xffff0000,
	Align:     4,
	CS_ARCH:   cs.ARCH_MIPS,
	CS_MODE:   cs.MODE_MIPS32 | cs.MODE_BIG_ENDIAN,
	KS_ARCH:   int(ks.ARCH_MIPS),
	KS_MODE:   int(ks.MODE_MIPS32 | ks.MODE_BIG_ENDIAN),

	Regs: map[int]string{
		8:   "zero",
		12:  "at",
		16:  "v0",
		20:  "v1",
		24:  "a0",
		28:  "a1",
		32:  "a2",
		36:  "a3",
		40:  "t0",
		44:  "t1",
		48:  "t2",
		52:  "t3",
		104: "t8",
		108: "t9",
		112: "k0",
		116: "k1",
		120: "gp",
		124: "sp",
		128: "fp",
		132: "ra",
	},
}
