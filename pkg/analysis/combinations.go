package analysis

import (
	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
)

// CombinationKey identifies one linear-combination time series: a
// satellite observed at an epoch, between a reference observable and a
// second ("rhs") observable (spec.md §4.8).
type CombinationKey struct {
	Epoch     gnss.Epoch
	SV        gnss.SV
	Reference gnss.Observable
	RHS       gnss.Observable
}

// SpeedOfLight is the vacuum speed of light in m/s, used to convert
// carrier-phase observations (stored in cycles per spec.md §3.2) into
// metres before combining them with pseudorange observations (already in
// metres), per spec.md §4.8.
const SpeedOfLight = 299792458.0

// frequencyOf resolves an observable's carrier frequency for sv's
// constellation. Glonass FDMA channel offset is not carried by ObsData, so
// the G1/G2 carrier frequency is unknown and an error is returned; callers
// skip such observables.
func frequencyOf(sv gnss.SV, o gnss.Observable) (float64, error) {
	carrier, err := gnss.CarrierOf(sv.Constellation, o.Code)
	if err != nil {
		return 0, &ErrNoSuchCarrier{Observable: o.String(), Err: err}
	}
	if carrier == gnss.G1 || carrier == gnss.G2 {
		return 0, &ErrNoSuchCarrier{Observable: o.String(), Err: &gnss.ErrUnknownCarrier{Constellation: sv.Constellation, Code: o.Code}}
	}
	f, err := carrier.Frequency()
	if err != nil {
		return 0, &ErrNoSuchCarrier{Observable: o.String(), Err: err}
	}
	return f, nil
}

// cyclesToMetres converts a phase observation from cycles to metres at
// the carrier frequency freqHz (wavelength = c / f).
func cyclesToMetres(cycles, freqHz float64) float64 {
	return cycles * SpeedOfLight / freqHz
}

// GeometryFree returns L_i - L_j.
func GeometryFree(li, lj float64) float64 {
	return li - lj
}

// IonoFree returns (f_i^2 L_i - f_j^2 L_j) / (f_i^2 - f_j^2).
func IonoFree(fi, fj, li, lj float64) float64 {
	fi2, fj2 := fi*fi, fj*fj
	return (fi2*li - fj2*lj) / (fi2 - fj2)
}

// WideLane returns (f_i L_i - f_j L_j) / (f_i - f_j).
func WideLane(fi, fj, li, lj float64) float64 {
	return (fi*li - fj*lj) / (fi - fj)
}

// NarrowLane returns (f_i L_i + f_j L_j) / (f_i + f_j).
func NarrowLane(fi, fj, li, lj float64) float64 {
	return (fi*li + fj*lj) / (fi + fj)
}

// MelbourneWubbena returns the wide-lane phase combination minus the
// narrow-lane code (pseudorange) combination.
func MelbourneWubbena(fi, fj, phaseI, phaseJ, codeI, codeJ float64) float64 {
	return WideLane(fi, fj, phaseI, phaseJ) - NarrowLane(fi, fj, codeI, codeJ)
}

// Combinations holds the four phase-only linear combinations computed for
// one (epoch, sv, reference, rhs) tuple. The Melbourne-Wubbena combination
// additionally requires matching code observables and is computed
// separately by MelbourneWubbenaCombinations.
type Combinations struct {
	GeometryFree float64
	IonoFree     float64
	WideLane     float64
	NarrowLane   float64
}

// PhaseCombinations computes the four phase-only combinations (geometry-
// free, iono-free, wide-lane, narrow-lane) for every SV and every pair of
// simultaneously observed phase observables, at every epoch of rec.
// Results are keyed by (epoch, sv, reference, rhs); every unordered pair
// appears twice, once in each (reference, rhs) order.
func PhaseCombinations(rec *rinex.ObservationRecord) map[CombinationKey]Combinations {
	out := make(map[CombinationKey]Combinations)
	for _, ep := range rec.Epochs {
		for sv, obs := range ep.SVs {
			phases := collectByKind(obs, gnss.PhaseRange)
			for i := range phases {
				for j := range phases {
					if phases[i].code == phases[j].code {
						continue
					}
					fi, err := frequencyOf(sv, phases[i].observable)
					if err != nil {
						continue
					}
					fj, err := frequencyOf(sv, phases[j].observable)
					if err != nil {
						continue
					}
					li := cyclesToMetres(phases[i].data.Value, fi)
					lj := cyclesToMetres(phases[j].data.Value, fj)
					out[CombinationKey{
						Epoch:     ep.Key.Epoch,
						SV:        sv,
						Reference: phases[i].observable,
						RHS:       phases[j].observable,
					}] = Combinations{
						GeometryFree: GeometryFree(li, lj),
						IonoFree:     IonoFree(fi, fj, li, lj),
						WideLane:     WideLane(fi, fj, li, lj),
						NarrowLane:   NarrowLane(fi, fj, li, lj),
					}
				}
			}
		}
	}
	return out
}

// MelbourneWubbenaCombinations computes the Melbourne-Wubbena combination
// (wide-lane phase minus narrow-lane code) for every SV and every pair of
// simultaneously observed phase+code observable pairs sharing the same two
// signal codes, at every epoch of rec.
func MelbourneWubbenaCombinations(rec *rinex.ObservationRecord) map[CombinationKey]float64 {
	out := make(map[CombinationKey]float64)
	for _, ep := range rec.Epochs {
		for sv, obs := range ep.SVs {
			phases := collectByKind(obs, gnss.PhaseRange)
			codes := collectByKind(obs, gnss.PseudoRange)
			codeByCode := make(map[string]codedObs, len(codes))
			for _, c := range codes {
				codeByCode[c.code] = c
			}
			for i := range phases {
				for j := range phases {
					if phases[i].code == phases[j].code {
						continue
					}
					ci, ok1 := codeByCode[phases[i].code]
					cj, ok2 := codeByCode[phases[j].code]
					if !ok1 || !ok2 {
						continue
					}
					fi, err := frequencyOf(sv, phases[i].observable)
					if err != nil {
						continue
					}
					fj, err := frequencyOf(sv, phases[j].observable)
					if err != nil {
						continue
					}
					mw := MelbourneWubbena(fi, fj,
						cyclesToMetres(phases[i].data.Value, fi), cyclesToMetres(phases[j].data.Value, fj),
						ci.data.Value, cj.data.Value)
					out[CombinationKey{
						Epoch:     ep.Key.Epoch,
						SV:        sv,
						Reference: phases[i].observable,
						RHS:       phases[j].observable,
					}] = mw
				}
			}
		}
	}
	return out
}

type codedObs struct {
	code       string
	observable gnss.Observable
	data       rinex.ObsData
}

// collectByKind returns every present observable of the given kind,
// keyed by its signal code.
func collectByKind(obs map[gnss.Observable]rinex.ObsData, kind gnss.ObservableKind) []codedObs {
	var out []codedObs
	for o, d := range obs {
		if o.Kind != kind || !d.Present {
			continue
		}
		out = append(out, codedObs{code: o.Code, observable: o, data: d})
	}
	return out
}
