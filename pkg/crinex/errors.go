package crinex

import (
	"fmt"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// ErrStateUninitialised is returned when a differential step arrives for a
// (SV, Observable) pair before its reset (spec.md §4.6/§7
// "CrinexStateUninitialised").
type ErrStateUninitialised struct {
	SV         gnss.SV
	Observable gnss.Observable
}

func (e *ErrStateUninitialised) Error() string {
	return fmt.Sprintf("crinex: state uninitialised for %s %s", e.SV, e.Observable.String())
}

// ErrBadInteger is returned when a differential value field cannot be
// parsed as an integer (spec.md §7 "CrinexBadInteger").
type ErrBadInteger struct {
	Field string
	Err   error
}

func (e *ErrBadInteger) Error() string {
	return fmt.Sprintf("crinex: bad integer field %q: %v", e.Field, e.Err)
}

func (e *ErrBadInteger) Unwrap() error { return e.Err }
