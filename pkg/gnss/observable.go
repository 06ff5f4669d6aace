package gnss

import "fmt"

// ObservableKind distinguishes the physical quantity an Observable carries.
type ObservableKind int

const (
	PhaseRange ObservableKind = iota + 1
	PseudoRange
	Doppler
	SSI
	Temperature
	Pressure
	HumidityRate
	FrequencyRatio
	ZenithDryDelay
	ZenithWetDelay
)

func (k ObservableKind) String() string {
	switch k {
	case PhaseRange:
		return "PhaseRange"
	case PseudoRange:
		return "PseudoRange"
	case Doppler:
		return "Doppler"
	case SSI:
		return "SSI"
	case Temperature:
		return "Temperature"
	case Pressure:
		return "Pressure"
	case HumidityRate:
		return "HumidityRate"
	case FrequencyRatio:
		return "FrequencyRatio"
	case ZenithDryDelay:
		return "ZenithDryDelay"
	case ZenithWetDelay:
		return "ZenithWetDelay"
	default:
		return "Unknown"
	}
}

// Observable is a single RINEX observation type: a physical quantity
// (Kind) plus, for GNSS signal observables, a 2-3 character signal Code
// (e.g. "1C", "2W", "5Q"). Meteo observables carry an empty Code.
type Observable struct {
	Kind ObservableKind
	Code string
}

// String renders the RINEX-3 observation-type code, e.g. "L1C", "C2W",
// "D5Q", "S1C", or the bare meteo mnemonic ("TD", "PR", "HR", ...).
func (o Observable) String() string {
	switch o.Kind {
	case PhaseRange:
		return "L" + o.Code
	case PseudoRange:
		return "C" + o.Code
	case Doppler:
		return "D" + o.Code
	case SSI:
		return "S" + o.Code
	case Temperature:
		return "TD"
	case Pressure:
		return "PR"
	case HumidityRate:
		return "HR"
	case FrequencyRatio:
		return "RI"
	case ZenithDryDelay:
		return "ZD"
	case ZenithWetDelay:
		return "ZW"
	default:
		return "?" + o.Code
	}
}

// ErrUnknownObservable is returned when a RINEX observation-type mnemonic
// cannot be decoded.
type ErrUnknownObservable struct {
	Code string
}

func (e *ErrUnknownObservable) Error() string {
	return fmt.Sprintf("unknown observable: %q", e.Code)
}

var meteoObservables = map[string]Observable{
	"TD": {Kind: Temperature},
	"PR": {Kind: Pressure},
	"HR": {Kind: HumidityRate},
	"RI": {Kind: FrequencyRatio},
	"ZD": {Kind: ZenithDryDelay},
	"ZW": {Kind: ZenithWetDelay},
	"HI": {Kind: HumidityRate}, // some producers use HI for humidity
}

// ParseObservable parses a RINEX-3/4 observation-type mnemonic such as
// "L1C", "C2W", "D5Q", "S1C", or a bare two-letter meteo mnemonic.
func ParseObservable(code string) (Observable, error) {
	if obs, ok := meteoObservables[code]; ok {
		return obs, nil
	}
	if len(code) < 2 {
		return Observable{}, &ErrUnknownObservable{Code: code}
	}
	var kind ObservableKind
	switch code[0] {
	case 'L':
		kind = PhaseRange
	case 'C', 'P':
		kind = PseudoRange
	case 'D':
		kind = Doppler
	case 'S':
		kind = SSI
	default:
		return Observable{}, &ErrUnknownObservable{Code: code}
	}
	return Observable{Kind: kind, Code: code[1:]}, nil
}

// CarrierOf resolves the carrier band broadcasting this observable for the
// given constellation. Meteo observables have no carrier and always
// return ErrUnknownCarrier.
func (o Observable) CarrierOf(c Constellation) (Carrier, error) {
	switch o.Kind {
	case PhaseRange, PseudoRange, Doppler, SSI:
		return CarrierOf(c, o.Code)
	default:
		return 0, &ErrUnknownCarrier{Constellation: c, Code: o.Code}
	}
}
