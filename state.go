package drover

import (
	"github.com/pkg/errors"

	"github.com/lophius/drover/models"
)

// InitState builds a machine state ready to serve as the root of an
// execution tree: the profile's extra initialization writes are applied in
// order, then the stack pointer is set to its default. No other register is
// touched; whatever the engine leaves them as (symbolic, zero) stands.
func InitState(e models.Engine, profile *models.Arch, mem models.Mem, mode string, options []string) (models.State, error) {
	if profile == nil {
		return nil, &models.UnsupportedArchError{Name: ""}
	}
	st, err := e.NewState(profile, mem, mode, options)
	if err != nil {
		return nil, err
	}
	for _, w := range profile.InitWrites {
		if err := st.RegWrite(w.Offset, w.Val, w.Size); err != nil {
			return nil, errors.Wrapf(err, "init write to %s failed", profile.RegName(w.Offset))
		}
	}
	if err := st.RegWrite(profile.SP, profile.DefaultSP, profile.Wordsize()); err != nil {
		return nil, errors.Wrap(err, "stack pointer write failed")
	}
	return st, nil
}
