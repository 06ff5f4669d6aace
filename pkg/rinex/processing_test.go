package rinex

import (
	"testing"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeSV(t *testing.T, code string) gnss.SV {
	sv, err := gnss.ParseSV(code)
	require.NoError(t, err)
	return sv
}

func makeEpoch(sec int) gnss.Epoch {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return gnss.NewEpoch(base.Add(time.Duration(sec)*time.Second), gnss.GPST)
}

func sampleObsRecord(t *testing.T) *ObservationRecord {
	c1c, err := gnss.ParseObservable("C1C")
	require.NoError(t, err)
	l1c, err := gnss.ParseObservable("L1C")
	require.NoError(t, err)

	g01 := makeSV(t, "G01")
	g02 := makeSV(t, "G02")

	snrGood := SNR(7)
	snrBad := SNR(2)

	rec := &ObservationRecord{}
	for i := 0; i < 4; i++ {
		epo := ObsEpoch{
			Key: ObsKey{Epoch: makeEpoch(i * 30), Flag: 0},
			SVs: map[gnss.SV]map[gnss.Observable]ObsData{
				g01: {
					c1c: {Value: 20000000 + float64(i), Present: true, SNR: &snrGood},
					l1c: {Value: 105000000, Present: true, SNR: &snrGood},
				},
				g02: {
					c1c: {Value: 21000000 + float64(i), Present: true, SNR: &snrBad},
				},
			},
		}
		rec.Epochs = append(rec.Epochs, epo)
	}
	return rec
}

func TestMaskBySV(t *testing.T) {
	rec := sampleObsRecord(t)
	g01 := makeSV(t, "G01")

	masked := Mask(rec, MaskOptions{SVs: map[gnss.SV]bool{g01: true}})
	require.Len(t, masked.Epochs, 4)
	for _, epo := range masked.Epochs {
		assert.Len(t, epo.SVs, 1)
		_, ok := epo.SVs[g01]
		assert.True(t, ok)
	}
	// original untouched
	assert.Len(t, rec.Epochs[0].SVs, 2)
}

func TestMaskBySNRThreshold(t *testing.T) {
	rec := sampleObsRecord(t)
	min := SNR(5)
	masked := Mask(rec, MaskOptions{MinSNR: &min})
	for _, epo := range masked.Epochs {
		_, hasG02 := epo.SVs[makeSV(t, "G02")]
		assert.False(t, hasG02, "low-SNR satellite must be filtered out")
	}
}

func TestMaskByEpochRelationIsMonotone(t *testing.T) {
	rec := sampleObsRecord(t)
	rel := EpochRelation{From: makeEpoch(30), To: makeEpoch(60)}
	masked := Mask(rec, MaskOptions{Epochs: &rel})
	require.Len(t, masked.Epochs, 2)
	assert.True(t, masked.Epochs[0].Key.Epoch.Equal(makeEpoch(30)))
	assert.True(t, masked.Epochs[1].Key.Epoch.Equal(makeEpoch(60)))
}

func TestDecimateByRatio(t *testing.T) {
	rec := sampleObsRecord(t)
	dec := Decimate(rec, 2, 0)
	require.Len(t, dec.Epochs, 2)
	assert.True(t, dec.Epochs[0].Key.Epoch.Equal(makeEpoch(0)))
	assert.True(t, dec.Epochs[1].Key.Epoch.Equal(makeEpoch(60)))
}

func TestDecimateByMinInterval(t *testing.T) {
	rec := sampleObsRecord(t)
	dec := Decimate(rec, 0, gnss.Duration(60*1e9))
	require.Len(t, dec.Epochs, 2)
}

func TestSplitThenMergeReproducesOriginal(t *testing.T) {
	rec := sampleObsRecord(t)
	left, right := Split(rec, makeEpoch(60))
	require.Len(t, left.Epochs, 2)
	require.Len(t, right.Epochs, 2)

	stamp := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	merged, err := Merge(stamp, left, right)
	require.NoError(t, err)
	require.Len(t, merged.Epochs, 4)
	for i, epo := range merged.Epochs {
		assert.True(t, epo.Key.Epoch.Equal(rec.Epochs[i].Key.Epoch))
	}
}

func TestMergePrefersEarlierInputOnConflict(t *testing.T) {
	g01 := makeSV(t, "G01")
	c1c, _ := gnss.ParseObservable("C1C")

	a := &ObservationRecord{Epochs: []ObsEpoch{{
		Key: ObsKey{Epoch: makeEpoch(0)},
		SVs: map[gnss.SV]map[gnss.Observable]ObsData{g01: {c1c: {Value: 1, Present: true}}},
	}}}
	b := &ObservationRecord{Epochs: []ObsEpoch{{
		Key: ObsKey{Epoch: makeEpoch(0)},
		SVs: map[gnss.SV]map[gnss.Observable]ObsData{g01: {c1c: {Value: 2, Present: true}}},
	}}}

	stamp := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	merged, err := Merge(stamp, a, b)
	require.NoError(t, err)
	require.Len(t, merged.Epochs, 1)
	assert.Equal(t, 1.0, merged.Epochs[0].SVs[g01][c1c].Value)
}

func TestMergeRecordsProvenanceComment(t *testing.T) {
	a := sampleObsRecord(t)
	b := &ObservationRecord{}

	stamp := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	merged, err := Merge(stamp, a, b)
	require.NoError(t, err)
	require.NotEmpty(t, merged.Header.Comments)
	last := merged.Header.Comments[len(merged.Header.Comments)-1]
	assert.Contains(t, last, "merged")
	assert.Contains(t, last, "2026-02-01T12:00:00Z")
}

func TestMergeInPlace(t *testing.T) {
	rec := sampleObsRecord(t)
	left, right := Split(rec, makeEpoch(60))

	stamp := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	MergeInPlace(left, stamp, right)
	require.Len(t, left.Epochs, 4)
	for i, epo := range left.Epochs {
		assert.True(t, epo.Key.Epoch.Equal(rec.Epochs[i].Key.Epoch))
	}
	require.NotEmpty(t, left.Header.Comments)
}

func TestMaskInPlacePreservesOrder(t *testing.T) {
	rec := sampleObsRecord(t)
	g01 := makeSV(t, "G01")

	MaskInPlace(rec, MaskOptions{SVs: map[gnss.SV]bool{g01: true}})
	require.Len(t, rec.Epochs, 4)
	for i, epo := range rec.Epochs {
		assert.True(t, epo.Key.Epoch.Equal(makeEpoch(i*30)))
		assert.Len(t, epo.SVs, 1)
		_, ok := epo.SVs[g01]
		assert.True(t, ok)
	}
}

func TestDecimateInPlaceByRatio(t *testing.T) {
	rec := sampleObsRecord(t)
	DecimateInPlace(rec, 2, 0)
	require.Len(t, rec.Epochs, 2)
	assert.True(t, rec.Epochs[0].Key.Epoch.Equal(makeEpoch(0)))
	assert.True(t, rec.Epochs[1].Key.Epoch.Equal(makeEpoch(60)))
}

func TestSplitInPlace(t *testing.T) {
	rec := sampleObsRecord(t)
	right := SplitInPlace(rec, makeEpoch(60))
	require.Len(t, rec.Epochs, 2)
	require.Len(t, right.Epochs, 2)
	assert.True(t, rec.Epochs[0].Key.Epoch.Equal(makeEpoch(0)))
	assert.True(t, right.Epochs[0].Key.Epoch.Equal(makeEpoch(60)))
}
