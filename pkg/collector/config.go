// Package collector drives a BINEX message stream (pkg/binex) into RINEX
// output files (pkg/rinex) on a time/size schedule (spec.md §4.9). It is
// the only component in this module that takes an assembled,
// externally-built runtime configuration, so it is the one place that
// reaches for github.com/go-playground/validator/v10, the way the
// teacher's pkg/site validates Site/FormInformation.
package collector

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// Periodicity selects how often the collector closes the current period
// and flushes a RINEX file (spec.md §4.9).
type Periodicity int

const (
	// DailyMidnight closes one period per UTC day, at midnight.
	DailyMidnight Periodicity = iota
	// DailyMidnightAndNoon closes two periods per UTC day, at 00:00 and 12:00.
	DailyMidnightAndNoon
	// Hourly closes one period per UTC hour.
	Hourly
	// Periodic closes a period every PeriodicInterval.
	Periodic
)

// PostponementKind selects how the collector delays its first emission
// (spec.md §4.9).
type PostponementKind int

const (
	// PostponeNone starts accumulating from the first message fed.
	PostponeNone PostponementKind = iota
	// PostponeUntilSystemTime discards messages until one arrives whose
	// epoch is at or after SystemTime.
	PostponeUntilSystemTime
	// PostponeAfterBytes discards messages until AfterBytes payload bytes
	// have been seen.
	PostponeAfterBytes
	// PostponeAfterMessages discards messages until AfterMessages
	// messages have been seen.
	PostponeAfterMessages
)

// Postponement configures a delayed start (spec.md §4.9).
type Postponement struct {
	Kind PostponementKind

	SystemTime    gnss.Epoch `validate:"-"`
	AfterBytes    int64      `validate:"omitempty,min=0"`
	AfterMessages int64      `validate:"omitempty,min=0"`
}

// Config is the collector's runtime configuration, validated with
// go-playground/validator before use (the teacher's pkg/site idiom).
type Config struct {
	// OutputDir is the directory RINEX files are written into.
	OutputDir string `validate:"required"`
	// Station is the 4-char station ID used to build output filenames.
	Station string `validate:"required,len=4"`
	// CountryCode is the 3-letter country code used to build output
	// filenames.
	CountryCode string `validate:"required,len=3"`

	Periodicity       Periodicity   `validate:"-"`
	PeriodicInterval  time.Duration `validate:"omitempty,min=0"`
	Postponement      Postponement  `validate:"-"`

	// Crinex selects CRINEX (Hatanaka-compressed) encoding for
	// Observation output; Navigation output is unaffected.
	Crinex bool
}

var validate = validator.New()

// Validate checks c against its struct tags and the periodicity/interval
// coupling §4.9 requires.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Periodicity == Periodic && c.PeriodicInterval <= 0 {
		return &ErrInvalidConfig{Reason: "Periodic periodicity requires a positive PeriodicInterval"}
	}
	return nil
}

// ErrInvalidConfig reports a Config that struct-tag validation alone
// cannot express (spec.md §4.9 periodicity/interval coupling).
type ErrInvalidConfig struct {
	Reason string
}

func (e *ErrInvalidConfig) Error() string { return "collector: invalid config: " + e.Reason }
