package arm

import (
	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	cs "github.com/lunixbochs/capstr"

	"github.com/lophius/drover/models"
)

var Arch = &models.Arch{
	Name:        "ARM",
	Bits:        32,
	SP:          60,
	DefaultSP:   0xffff0000,
	Align:       4,
	AltMode:     true,
	CS_ARCH:     cs.ARCH_ARM,
	CS_MODE:     cs.MODE_ARM,
	CS_MODE_ALT: cs.MODE_THUMB,
	KS_ARCH:     int(ks.ARCH_ARM),
	KS_MODE:     int(ks.MODE_ARM),

	// itstate starts cleared, outside any IT block
	InitWrites: []models.RegWrite{
		{Offset: 0x188, Val: 0, Size: 4},
	},

	Regs: map[int]string{
		8:     "r0",
		12:    "r1",
		16:    "r2",
		20:    "r3",
		24:    "r4",
		28:    "r5",
		32:    "r6",
		36:    "r7",
		40:    "r8",
		44:    "r9",
		48:    "r10",
		52:    "r11",
		56:    "r12",
		60:    "sp",
		64:    "lr",
		68:    "pc",
		0x188: "itstate",
	},
}
