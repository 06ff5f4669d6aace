package rinex

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const obsV3Header = `     3.04           OBSERVATION DATA    M                   RINEX VERSION / TYPE
gnssdata            de-bkg               20260101 000000 UTC PGM / RUN BY / DATE
TEST STATION                                                MARKER NAME
G   11 C1C L1C D1C S1C C2W L2W D2W S2W C5Q L5Q D5Q          SYS / # / OBS TYPES
    30.000                                                  INTERVAL
END OF HEADER
`

// obsBody builds one "G01" observation entry: a 14.3f value, an LLI digit and
// a blank SNR for the first observable (C1C), and ten blank fields for the
// header's other declared observables, five fields per line (5 + 5 + 1).
func obsBody() string {
	blank := strings.Repeat(" ", 16)
	field := fmt.Sprintf("%14.3f%s%s", 20123456.789, "5", " ")
	return "> 2026 01 01 00 00  0.0000000  0  1\nG01" + field + strings.Repeat(blank, 4) + "\n" +
		strings.Repeat(blank, 5) + "\n" + blank + "\n"
}

func sampleObs() string { return obsV3Header + obsBody() }

func TestDecodeObservationV3(t *testing.T) {
	rec, err := DecodeObservation(strings.NewReader(sampleObs()))
	require.NoError(t, err)
	require.Len(t, rec.Epochs, 1)

	epo := rec.Epochs[0]
	assert.Equal(t, Ok, epo.Key.Flag)
	require.Len(t, epo.SVs, 1)

	sv := gnss.SV{Constellation: gnss.GPS, PRN: 1}
	obs, ok := epo.SVs[sv]
	require.True(t, ok)

	c1c, err := gnss.ParseObservable("C1C")
	require.NoError(t, err)
	require.True(t, obs[c1c].Present)
	assert.InDelta(t, 20123456.789, obs[c1c].Value, 1e-6)
	require.NotNil(t, obs[c1c].LLI)
	assert.Equal(t, LliFlags(5), *obs[c1c].LLI)
	assert.Nil(t, obs[c1c].SNR)

	l1c, err := gnss.ParseObservable("L1C")
	require.NoError(t, err)
	assert.False(t, obs[l1c].Present)
}

func TestEncodeObservationRoundTrip(t *testing.T) {
	rec, err := DecodeObservation(strings.NewReader(sampleObs()))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeObservation(&buf, rec))

	rec2, err := DecodeObservation(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rec2.Epochs, 1)
	assert.Equal(t, rec.Epochs[0].Key, rec2.Epochs[0].Key)

	sv := gnss.SV{Constellation: gnss.GPS, PRN: 1}
	c1c, _ := gnss.ParseObservable("C1C")
	assert.InDelta(t, rec.Epochs[0].SVs[sv][c1c].Value, rec2.Epochs[0].SVs[sv][c1c].Value, 1e-3)
}

// obsBodyMultiLine builds one "G01" observation entry spanning the three
// 80-column lines the header's 11 declared observable types require (5 + 5
// + 1), exercising the continuation-line path spec.md §4.4 mandates.
func obsBodyMultiLine() string {
	blank := strings.Repeat(" ", 16)
	line1 := "G01" + strings.Repeat(blank, 5)
	line2 := fmt.Sprintf("%14.3f%s%s", 105000000.123, " ", " ") + strings.Repeat(blank, 4)
	line3 := fmt.Sprintf("%14.3f%s%s", 42.5, " ", " ")
	return "> 2026 01 01 00 00  0.0000000  0  1\n" + line1 + "\n" + line2 + "\n" + line3 + "\n"
}

func TestDecodeObservationV3ContinuationLines(t *testing.T) {
	rec, err := DecodeObservation(strings.NewReader(obsV3Header + obsBodyMultiLine()))
	require.NoError(t, err)
	require.Len(t, rec.Epochs, 1)

	sv := gnss.SV{Constellation: gnss.GPS, PRN: 1}
	obs, ok := rec.Epochs[0].SVs[sv]
	require.True(t, ok)

	// L2W is the 6th declared observable: first field of the first
	// continuation line.
	l2w, err := gnss.ParseObservable("L2W")
	require.NoError(t, err)
	require.True(t, obs[l2w].Present)
	assert.InDelta(t, 105000000.123, obs[l2w].Value, 1e-6)

	// D5Q is the 11th (last) declared observable: the sole field of the
	// second continuation line.
	d5q, err := gnss.ParseObservable("D5Q")
	require.NoError(t, err)
	require.True(t, obs[d5q].Present)
	assert.InDelta(t, 42.5, obs[d5q].Value, 1e-6)

	var buf bytes.Buffer
	require.NoError(t, EncodeObservation(&buf, rec))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	// header (6 lines incl. END OF HEADER) + epoch line + 3 observation lines
	obsLines := lines[len(lines)-3:]
	assert.True(t, strings.HasPrefix(obsLines[0], "G01"))
	assert.False(t, strings.HasPrefix(obsLines[1], "G"))
	assert.False(t, strings.HasPrefix(obsLines[2], "G"))

	rec2, err := DecodeObservation(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.True(t, rec2.Epochs[0].SVs[sv][l2w].Present)
	assert.InDelta(t, 105000000.123, rec2.Epochs[0].SVs[sv][l2w].Value, 1e-3)
	assert.InDelta(t, 42.5, rec2.Epochs[0].SVs[sv][d5q].Value, 1e-3)
}

func TestDecodeObservationTruncatedTrailingRecordTolerated(t *testing.T) {
	truncated := sampleObs() + "> 2026 01 01 00 00 30.0000000  0  1\n"
	rec, err := DecodeObservation(strings.NewReader(truncated))
	require.NoError(t, err)
	assert.Len(t, rec.Epochs, 1) // the dangling second epoch header is dropped, not errored
}
