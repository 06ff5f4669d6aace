package rinex

import (
	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// EpochFlag classifies a RINEX Observation epoch line (spec.md §3.3).
type EpochFlag int8

const (
	Ok EpochFlag = iota
	PowerFailure
	AntennaMovement
	NewSite
	HeaderInfo
	ExternalEvent
	CycleSlip
)

func (f EpochFlag) String() string {
	switch f {
	case Ok:
		return "Ok"
	case PowerFailure:
		return "PowerFailure"
	case AntennaMovement:
		return "AntennaMovement"
	case NewSite:
		return "NewSite"
	case HeaderInfo:
		return "HeaderInfo"
	case ExternalEvent:
		return "ExternalEvent"
	case CycleSlip:
		return "CycleSlip"
	default:
		return "Unknown"
	}
}

// LliFlags is the RINEX loss-of-lock-indicator bitfield.
type LliFlags uint8

const (
	LockLoss           LliFlags = 0x1
	HalfCycleSlip      LliFlags = 0x2
	UnderAntiSpoofing  LliFlags = 0x4
)

// SNR is the RINEX-quantised signal-to-noise indicator (0-9; 0 means
// "not known/reported").
type SNR int8

// ObsData is a single observation value with its optional quality flags.
// A zero Value with Present == false models a blank ("absent") field,
// distinct from a genuine zero measurement (spec.md §4.4).
type ObsData struct {
	Value   float64
	Present bool
	LLI     *LliFlags
	SNR     *SNR
}

// ObsKey identifies one Observation epoch entry.
type ObsKey struct {
	Epoch gnss.Epoch
	Flag  EpochFlag
}

// ObsEpoch is one decoded Observation epoch: an optional receiver clock
// offset plus the per-SV, per-observable measurements.
type ObsEpoch struct {
	Key         ObsKey
	ClockOffset *float64
	SVs         map[gnss.SV]map[gnss.Observable]ObsData
}

// ObsHeader extends Header with the Observation-specific fields already
// folded into Header (ObsTypes, antenna/position, interval, time of
// first/last obs); no additional fields are needed beyond the common
// model, so ObsHeader is an alias kept for symmetry with the other
// per-format header types and for documentation purposes.
type ObsHeader = Header

// ObservationRecord is an ordered sequence of Observation epochs. Ordering
// is the iteration/formatting order (spec.md §5 "record iteration yields
// entries in epoch order"); Epochs is kept sorted by (epoch, flag) by
// construction in DecodeObservation and by every C8 transformation.
type ObservationRecord struct {
	Header Header
	Epochs []ObsEpoch
}
