// Package arch is the architecture profile table. Adding support for a new
// instruction set means adding a data package here; nothing outside this
// table branches on architecture names.
package arch

import (
	"sort"

	"github.com/lophius/drover/arch/amd64"
	"github.com/lophius/drover/arch/arm"
	"github.com/lophius/drover/arch/mips32"
	"github.com/lophius/drover/arch/ppc32"
	"github.com/lophius/drover/arch/x86"
	"github.com/lophius/drover/models"
)

var archMap = map[string]*models.Arch{
	"AMD64":  amd64.Arch,
	"X86":    x86.Arch,
	"ARM":    arm.Arch,
	"PPC32":  ppc32.Arch,
	"MIPS32": mips32.Arch,
}

// GetArch looks up a profile by name. Names are the canonical uppercase
// identifiers listed by Names.
func GetArch(name string) (*models.Arch, error) {
	a, ok := archMap[name]
	if !ok {
		return nil, &models.UnsupportedArchError{Name: name}
	}
	return a, nil
}

// Names returns the supported profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(archMap))
	for name := range archMap {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
