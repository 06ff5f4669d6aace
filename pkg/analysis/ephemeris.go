package analysis

import (
	"math"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
)

// gpsWeekEpochOrigin is the GPS time origin (1980-01-06T00:00:00 GPST),
// used to resolve a week+tow pair carried on a broadcast ephemeris into
// an absolute instant.
var gpsWeekEpochOrigin = time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC)

// validityWindow is the maximum |t - toe| (seconds) for which a broadcast
// ephemeris is considered usable, per constellation. Glonass is excluded:
// its short-lived state-vector ephemeris is selected by nearest-toc only,
// same as SBAS, since its broadcast interval (~30 min) already bounds
// propagation error without a separate toe check.
var validityWindow = map[gnss.Constellation]float64{
	gnss.GPS:     7200,  // 2h, half the nominal 4h fit interval
	gnss.Galileo: 10800, // 3h, per the longer Galileo update cadence
	gnss.BeiDou:  3600,  // 1h
	gnss.QZSS:    7200,
	gnss.IRNSS:   7200,
}

// toeSeconds returns the ephemeris's toe as an absolute epoch, where known;
// for types lacking a distinct toe (Glonass/SBAS use the state vector at
// TOC directly) it returns false.
func toeSeconds(eph rinex.Eph) (gnss.Epoch, bool) {
	k, ok := eph.(*rinex.EphKeplerian)
	if !ok {
		return gnss.Epoch{}, false
	}
	week := int(k.ToeWeek)
	d := gnss.DurationFromWeekSeconds(week, k.Toe)
	toe := gnss.NewEpoch(gpsWeekEpochOrigin.Add(time.Duration(d)), gnss.GPST)
	return toe.ConvertTo(k.TOC.Scale), true
}

// SelectEphemeris finds the navigation entry for sv best matching request
// time t, per spec.md §4.8: minimise |t - toc| subject to t >= toc and
// (t - toe) within the constellation's validity window, for non-SBAS
// constellations; SBAS (and, by extension here, Glonass's short-lived
// state vector) uses nearest-toc regardless of sign.
func SelectEphemeris(ephs []rinex.Eph, sv gnss.SV, t gnss.Epoch) (rinex.Eph, error) {
	var best rinex.Eph
	var bestDelta float64

	sbasLike := sv.Constellation == gnss.SBAS || sv.Constellation == gnss.Glonass

	for _, eph := range ephs {
		if eph.Satellite() != sv {
			continue
		}
		toc := eph.ReferenceEpoch()
		delta := t.Sub(toc).Seconds()

		if !sbasLike {
			if delta < 0 {
				continue
			}
			if toe, ok := toeSeconds(eph); ok {
				window, known := validityWindow[sv.Constellation]
				if known && math.Abs(t.Sub(toe).Seconds()) > window {
					continue
				}
			}
		}

		absDelta := math.Abs(delta)
		if best == nil || absDelta < bestDelta {
			best, bestDelta = eph, absDelta
		}
	}

	if best == nil {
		return nil, &ErrNoEphemeris{SV: sv.String()}
	}
	return best, nil
}
