package analysis

import (
	"testing"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCombinationRecord(t *testing.T) (*rinex.ObservationRecord, gnss.SV, gnss.Observable, gnss.Observable, gnss.Observable, gnss.Observable) {
	t.Helper()
	sv, err := gnss.ParseSV("G01")
	require.NoError(t, err)
	l1c, err := gnss.ParseObservable("L1C")
	require.NoError(t, err)
	l2w, err := gnss.ParseObservable("L2W")
	require.NoError(t, err)
	c1c, err := gnss.ParseObservable("C1C")
	require.NoError(t, err)
	c2w, err := gnss.ParseObservable("C2W")
	require.NoError(t, err)

	epo := gnss.NewEpoch(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), gnss.GPST)
	rec := &rinex.ObservationRecord{
		Epochs: []rinex.ObsEpoch{{
			Key: rinex.ObsKey{Epoch: epo},
			SVs: map[gnss.SV]map[gnss.Observable]rinex.ObsData{
				sv: {
					l1c: {Value: 129274705.784, Present: true},
					l2w: {Value: 100733552.498, Present: true},
					c1c: {Value: 24600160.0, Present: true},
					c2w: {Value: 24600166.0, Present: true},
				},
			},
		}},
	}
	return rec, sv, l1c, l2w, c1c, c2w
}

// TestPhaseCombinationsOperateInMetres ensures the geometry-free
// combination — the simplest of the four — is computed on wavelength-
// converted phase values (tens of metres), not raw cycle counts (which
// would be ~28 million, eight orders of magnitude off).
func TestPhaseCombinationsOperateInMetres(t *testing.T) {
	rec, _, l1c, l2w, _, _ := sampleCombinationRecord(t)

	results := PhaseCombinations(rec)
	require.NotEmpty(t, results)

	var found bool
	for k, v := range results {
		if k.Reference == l1c && k.RHS == l2w {
			found = true
			assert.InDelta(t, -3.79, v.GeometryFree, 0.5)
			assert.Less(t, v.IonoFree, 3.0e7) // metres-scale combinations, not cycles-scale
			assert.Greater(t, v.IonoFree, -3.0e7)
		}
	}
	require.True(t, found)
}

func TestMelbourneWubbenaCombinationsOperateInMetres(t *testing.T) {
	rec, _, l1c, l2w, _, _ := sampleCombinationRecord(t)

	results := MelbourneWubbenaCombinations(rec)
	require.NotEmpty(t, results)

	for k, v := range results {
		if k.Reference == l1c && k.RHS == l2w {
			assert.Less(t, v, 1.0e4)
			assert.Greater(t, v, -1.0e4)
		}
	}
}

func TestCyclesToMetresRoundTrip(t *testing.T) {
	f := 1575.42e6
	cycles := 100.0
	metres := cyclesToMetres(cycles, f)
	assert.InDelta(t, cycles*SpeedOfLight/f, metres, 1e-9)
}
