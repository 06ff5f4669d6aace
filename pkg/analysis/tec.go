package analysis

import (
	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
)

// tecGamma is 1/40.308, the ionospheric refractive-index constant used by
// the dual-frequency TEC closed form (spec.md §4.8).
const tecGamma = 1.0 / 40.308

// TECKey identifies one TEC estimate: the satellite and epoch it was
// computed for, and the two phase observables it was derived from.
type TECKey struct {
	SV        gnss.SV
	Epoch     gnss.Epoch
	Reference gnss.Observable
	RHS       gnss.Observable
}

// TEC is a Total Electron Content estimate, in TEC units (1 TECu =
// 1e16 electrons/m^2).
type TEC float64

// tec computes TEC [TECu] = gamma * (fi^2 fj^2 / (fi^2 - fj^2)) * (li - lj) * 1e-16.
// li/lj arrive in cycles (spec.md §3.2) and are converted to metres at
// their respective carrier frequencies before combining, matching the
// formula's metres-valued L_i/L_j (spec.md §4.8, scenario 6).
func tec(fi, fj, li, lj float64) TEC {
	mi := cyclesToMetres(li, fi)
	mj := cyclesToMetres(lj, fj)
	fi2, fj2 := fi*fi, fj*fj
	return TEC(tecGamma * (fi2 * fj2 / (fi2 - fj2)) * (mi - mj) * 1e-16)
}

// DualPhaseTEC estimates ionospheric TEC from every pair of simultaneously
// observed phase observables, for every SV, at every epoch of rec. This
// mirrors the dual-frequency closed form in the reference implementation's
// observation_dual_phase_ionosphere_tec.
func DualPhaseTEC(rec *rinex.ObservationRecord) map[TECKey]TEC {
	out := make(map[TECKey]TEC)
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
					out[TECKey{
						SV:        sv,
						Epoch:     ep.Key.Epoch,
						Reference: phases[i].observable,
						RHS:       phases[j].observable,
					}] = tec(fi, fj, phases[i].data.Value, phases[j].data.Value)
				}
			}
		}
	}
	return out
}
