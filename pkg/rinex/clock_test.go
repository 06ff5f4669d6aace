package rinex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clockSample = `     3.04           CLOCK DATA                              RINEX VERSION / TYPE
gnssdata            de-bkg               20260101 000000 UTC PGM / RUN BY / DATE
END OF HEADER
AS G01 2026  1  1  0  0  0.000000  2   -1.234567890123E-04 5.000000000000E-11
AR STAT 2026  1  1  0  0  0.000000  1    2.345678901234E-05
`

func TestDecodeClock(t *testing.T) {
	cf, err := DecodeClock(strings.NewReader(clockSample))
	require.NoError(t, err)
	require.Len(t, cf.Records, 2)

	assert.Equal(t, ClockSatellite, cf.Records[0].Type)
	assert.Equal(t, "G01", cf.Records[0].Name)
	require.Len(t, cf.Records[0].Values, 2)
	assert.InDelta(t, -1.234567890123E-04, cf.Records[0].Values[0], 1e-15)

	assert.Equal(t, ClockReceiver, cf.Records[1].Type)
	assert.Equal(t, "STAT", cf.Records[1].Name)
}

func TestEncodeClockRoundTrip(t *testing.T) {
	cf, err := DecodeClock(strings.NewReader(clockSample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeClock(&buf, cf))

	cf2, err := DecodeClock(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, cf2.Records, 2)
	assert.InDelta(t, cf.Records[0].Values[0], cf2.Records[0].Values[0], 1e-10)
}
