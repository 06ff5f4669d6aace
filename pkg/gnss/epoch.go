package gnss

import (
	"fmt"
	"time"
)

// TimeScale identifies the time reference an Epoch is expressed in.
type TimeScale int

const (
	GPST TimeScale = iota + 1
	GST
	BDT
	GLONASST
	QZSST
	IRNSST
	UTC
	TAI
)

func (ts TimeScale) String() string {
	switch ts {
	case GPST:
		return "GPST"
	case GST:
		return "GST"
	case BDT:
		return "BDT"
	case GLONASST:
		return "GLONASST"
	case QZSST:
		return "QZSST"
	case IRNSST:
		return "IRNSST"
	case UTC:
		return "UTC"
	case TAI:
		return "TAI"
	default:
		return "Unknown"
	}
}

// The constants below are the fixed, leap-second-independent offsets from
// each scale to TAI, except UTC which carries leap seconds already folded
// into the wall clock by time.Time/time.Parse and is handled separately.
// GPST, GST and IRNSST share the same 1980 GPS-time epoch and are in
// practice identical to within the nanosecond precision this package
// targets (spec.md explicitly excludes almanac-grade relativistic
// corrections); BDT trails GPST/TAI by the fixed 14s BeiDou/GPS offset;
// GLONASST runs on UTC+3h by construction.
const (
	gpsToTAIOffset = 19 * time.Second
	bdtToTAIOffset = 33 * time.Second // TAI - BDT = 33s (BDT = GPST - 14s)
)

// Epoch is an absolute instant tagged with the time scale it was expressed
// in. Conversion between scales is total and preserves ordering.
type Epoch struct {
	Time  time.Time
	Scale TimeScale
}

// NewEpoch builds an Epoch from a wall-clock time.Time already expressed
// in the given scale (UTC scale times use Go's native leap-second-naive
// civil time, matching how RINEX and BINEX both represent UTC).
func NewEpoch(t time.Time, scale TimeScale) Epoch {
	return Epoch{Time: t, Scale: scale}
}

// toTAI returns the instant as TAI, resolving the fixed per-scale offset.
func (e Epoch) toTAI() time.Time {
	switch e.Scale {
	case GPST, GST, IRNSST, QZSST:
		return e.Time.Add(gpsToTAIOffset)
	case BDT:
		return e.Time.Add(bdtToTAIOffset)
	case GLONASST:
		// Glonass time is UTC+3h, and UTC in this model already has leap
		// seconds folded in (civil wall clock), so convert via UTC+leap.
		return e.Time.Add(-3 * time.Hour).Add(utcToTAIOffset(e.Time))
	case UTC:
		return e.Time.Add(utcToTAIOffset(e.Time))
	case TAI:
		return e.Time
	default:
		return e.Time
	}
}

// utcToTAIOffset returns the TAI-UTC offset in force since 2017 (37 s)
// for every t; earlier leap seconds are not tracked, so instants before
// 2017 are off by the leap seconds introduced since then. This is
// deliberately not a full historical leap-second table (no almanac
// arithmetic is in scope per spec.md §1).
func utcToTAIOffset(t time.Time) time.Duration {
	return 37 * time.Second
}

// ConvertTo converts the epoch to the requested time scale, preserving the
// absolute instant and ordering.
func (e Epoch) ConvertTo(scale TimeScale) Epoch {
	if e.Scale == scale {
		return e
	}
	tai := e.toTAI()
	switch scale {
	case GPST, GST, IRNSST, QZSST:
		return Epoch{Time: tai.Add(-gpsToTAIOffset), Scale: scale}
	case BDT:
		return Epoch{Time: tai.Add(-bdtToTAIOffset), Scale: scale}
	case GLONASST:
		utc := tai.Add(-utcToTAIOffset(tai))
		return Epoch{Time: utc.Add(3 * time.Hour), Scale: GLONASST}
	case UTC:
		return Epoch{Time: tai.Add(-utcToTAIOffset(tai)), Scale: UTC}
	case TAI:
		return Epoch{Time: tai, Scale: TAI}
	default:
		return e
	}
}

// Before, After and Equal compare epochs by absolute instant regardless of
// their respective time scales.
func (e Epoch) Before(other Epoch) bool { return e.toTAI().Before(other.toTAI()) }
func (e Epoch) After(other Epoch) bool  { return e.toTAI().After(other.toTAI()) }
func (e Epoch) Equal(other Epoch) bool  { return e.toTAI().Equal(other.toTAI()) }

// Sub returns the signed interval e - other, regardless of either epoch's
// time scale.
func (e Epoch) Sub(other Epoch) Duration {
	return Duration(e.toTAI().Sub(other.toTAI()))
}

// DayOfYear returns the 1-based day-of-year of the epoch's civil
// (Gregorian) decomposition.
func (e Epoch) DayOfYear() int {
	return e.Time.YearDay()
}

// Gregorian returns the Gregorian calendar fields of the epoch.
func (e Epoch) Gregorian() (year, month, day, hour, minute int, second float64) {
	y, m, d := e.Time.Date()
	sec := float64(e.Time.Second()) + float64(e.Time.Nanosecond())/1e9
	return y, int(m), d, e.Time.Hour(), e.Time.Minute(), sec
}

func (e Epoch) String() string {
	return fmt.Sprintf("%s %s", e.Time.Format("2006-01-02T15:04:05.999999999"), e.Scale)
}

// Duration is a signed GNSS time interval, at least nanosecond resolution
// (a thin wrapper over time.Duration carrying GNSS-domain constructors).
type Duration time.Duration

// DurationFromWeekSeconds builds a Duration from a GPS-style week number
// plus seconds-of-week.
func DurationFromWeekSeconds(week int, secondsOfWeek float64) Duration {
	return Duration(time.Duration(week)*7*24*time.Hour + time.Duration(secondsOfWeek*float64(time.Second)))
}

// Seconds returns the duration as floating-point seconds.
func (d Duration) Seconds() float64 {
	return time.Duration(d).Seconds()
}
