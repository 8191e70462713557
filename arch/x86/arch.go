package x86

import (
	ks "github.com/keystone-engine/keystone/bindings/go/keystone"
	cs "github.com/lunixbochs/capstr"

	"github.com/lophius/drover/models"
)

var Arch = &models.Arch{
	Name:      "X86",
	Bits:      32,
	SP:        24,
	DefaultSP: 0x7fff0000,
	Align:     1,
	CS_ARCH:   cs.ARCH_X86,
	CS_MODE:   cs.MODE_32,
	KS_ARCH:   int(ks.ARCH_X86),
	KS_MODE:   int(ks.MODE_32),

	Regs: map[int]string{
		8:  "eax",
		12: "ecx",
		16: "edx",
		20: "ebx",
		24: "esp",
		28: "ebp",
		32: "esi",
		36: "edi",
		68: "eip",
	},
}
