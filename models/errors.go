package models

import "fmt"

// UnsupportedArchError is returned for architecture names outside the
// profile table.
type UnsupportedArchError struct {
	Name string
}

func (e *UnsupportedArchError) Error() string {
	return fmt.Sprintf("unsupported architecture: %q", e.Name)
}

// UnresolvedTargetError is returned when a location's target does not
// concretize to exactly one address. Count is how many candidates the
// engine produced.
type UnresolvedTargetError struct {
	Target Expr
	Count  int
}

func (e *UnresolvedTargetError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("target %s has no concrete value", e.Target)
	}
	return fmt.Sprintf("target %s is ambiguous (%d values)", e.Target, e.Count)
}

// MisalignedTargetError is returned for addresses that break the profile's
// instruction alignment.
type MisalignedTargetError struct {
	Addr  uint64
	Align int
	Arch  string
}

func (e *MisalignedTargetError) Error() string {
	return fmt.Sprintf("%s: address %#x is not %d-byte aligned", e.Arch, e.Addr, e.Align)
}

// InvalidStateError is returned when an error-flagged location is handed to
// the resolver.
type InvalidStateError struct {
	Kind JumpKind
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("location carries an error state (jump kind %s)", e.Kind)
}

// MissingModeError is returned on alternate-encoding architectures when no
// loader metadata can say which encoding addr uses.
type MissingModeError struct {
	Addr uint64
	Arch string
	Err  error
}

func (e *MissingModeError) Error() string {
	return fmt.Sprintf("%s: no mode information for %#x: %v", e.Arch, e.Addr, e.Err)
}

func (e *MissingModeError) Unwrap() error { return e.Err }

// LiftError is produced by lifters on undecodable bytes and passed through
// the resolver unchanged.
type LiftError struct {
	Addr uint64
	Err  error
}

func (e *LiftError) Error() string {
	return fmt.Sprintf("lift failed at %#x: %v", e.Addr, e.Err)
}

func (e *LiftError) Unwrap() error { return e.Err }

// NoLoaderInfoError is produced by loaders for addresses they know nothing
// about and passed through unchanged.
type NoLoaderInfoError struct {
	Addr uint64
}

func (e *NoLoaderInfoError) Error() string {
	return fmt.Sprintf("no loader information for %#x", e.Addr)
}
