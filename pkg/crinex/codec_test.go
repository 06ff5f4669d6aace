package crinex

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const crinexObsHeader = `     3.04           O                   G                   RINEX VERSION / TYPE
gnssdata            de-bkg              20260101 000000 UTC PGM / RUN BY / DATE
G    2 C1C L1C                                              SYS / # / OBS TYPES
    30.000                                                  INTERVAL
  2026     1     1     0     0    0.0000000     GPS         TIME OF FIRST OBS
                                                            END OF HEADER
`

func sampleRec(values []float64) *rinex.ObservationRecord {
	rec, err := rinex.DecodeObservation(strings.NewReader(crinexObsHeader))
	if err != nil {
		panic(err)
	}
	c1c, _ := gnss.ParseObservable("C1C")
	sv := gnss.SV{Constellation: gnss.GPS, PRN: 1}
	base := rec.Header.TimeOfFirstObs
	for i, v := range values {
		epo := rinex.ObsEpoch{
			Key: rinex.ObsKey{Epoch: gnss.NewEpoch(base.Add(time.Duration(i*30)*time.Second), gnss.GPST), Flag: rinex.Ok},
			SVs: map[gnss.SV]map[gnss.Observable]rinex.ObsData{
				sv: {c1c: {Value: v, Present: true}},
			},
		}
		rec.Epochs = append(rec.Epochs, epo)
	}
	return rec
}

func TestDiffChainRoundTrip(t *testing.T) {
	d1 := newDiffChain(3)
	d2 := newDiffChain(3)
	vals := []int64{1000, 1500, 2200, 2900, 3300}

	d1.reset(vals[0])
	d2.reset(vals[0])
	for _, v := range vals[1:] {
		diff := d1.step(v)
		got := d2.decodeStep(diff)
		assert.Equal(t, v, got)
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	rec := sampleRec([]float64{20123456.789, 20123460.123, 20123455.001})

	compressed, err := Compress(rec)
	require.NoError(t, err)
	require.Contains(t, string(compressed), "CRINEX VERS   / TYPE")

	got, err := Decompress(bytes.NewReader(compressed))
	require.NoError(t, err)
	require.Len(t, got.Epochs, len(rec.Epochs))

	sv := gnss.SV{Constellation: gnss.GPS, PRN: 1}
	c1c, _ := gnss.ParseObservable("C1C")
	for i := range rec.Epochs {
		want := rec.Epochs[i].SVs[sv][c1c].Value
		gotVal := got.Epochs[i].SVs[sv][c1c].Value
		assert.InDelta(t, want, gotVal, 1e-3)
	}
}

func TestFormatVersionLineLiteral(t *testing.T) {
	line := FormatVersionLine("3.0")
	assert.Equal(t, "3.0                 COMPACT RINEX FORMAT                    CRINEX VERS   / TYPE", line)
}
