package analysis

import (
	"testing"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDualPhaseTECClosedForm mirrors spec.md §8 scenario 6: L1C/L2W phase
// observations on G01 must produce a TEC estimate within 1 TECu of the
// closed-form value, not the several-orders-of-magnitude-off result of
// combining raw cycle counts without converting to metres first.
func TestDualPhaseTECClosedForm(t *testing.T) {
	sv, err := gnss.ParseSV("G01")
	require.NoError(t, err)
	l1c, err := gnss.ParseObservable("L1C")
	require.NoError(t, err)
	l2w, err := gnss.ParseObservable("L2W")
	require.NoError(t, err)

	epo := gnss.NewEpoch(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), gnss.GPST)
	rec := &rinex.ObservationRecord{
		Epochs: []rinex.ObsEpoch{{
			Key: rinex.ObsKey{Epoch: epo},
			SVs: map[gnss.SV]map[gnss.Observable]rinex.ObsData{
				sv: {
					l1c: {Value: 129274705.784, Present: true},
					l2w: {Value: 100733552.498, Present: true},
				},
			},
		}},
	}

	results := DualPhaseTEC(rec)
	require.Len(t, results, 2) // (L1C,L2W) and (L2W,L1C), one per ordered pair

	var got TEC
	found := false
	for k, v := range results {
		if k.Reference == l1c && k.RHS == l2w {
			got = v
			found = true
		}
	}
	require.True(t, found, "expected a (L1C, L2W) TEC entry")
	assert.InDelta(t, -36.08, float64(got), 1.0)
}
