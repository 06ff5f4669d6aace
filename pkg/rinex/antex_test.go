package rinex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const antexSample = `      1.4           A                   M                   RINEX VERSION / TYPE
gnssdata            de-bkg               20260101 000000 UTC PGM / RUN BY / DATE
A                                                           PCV TYPE / REFANT
END OF HEADER
                                                            START OF ANTENNA
TRM57971.00         NONE                                    TYPE / SERIAL NO
   0.0  90.0   5.0                                          ZEN1 / ZEN2 / DZEN
     1                                                      # OF FREQUENCIES
   G01                                                      START OF FREQUENCY
      1.0       2.0       3.0                               NORTH / EAST / UP
                                                            END OF FREQUENCY
                                                            END OF ANTENNA
`

func TestDecodeAntex(t *testing.T) {
	rec, err := DecodeAntex(strings.NewReader(antexSample))
	require.NoError(t, err)
	require.Len(t, rec.Calibrations, 1)
	cal := rec.Calibrations[0]
	assert.Equal(t, "TRM57971.00", cal.AntennaType)
	require.Len(t, cal.Frequencies, 1)
	assert.InDelta(t, 1.0, cal.Frequencies[0].NEUOffset.N, 1e-6)
}

func TestEncodeAntexRoundTrip(t *testing.T) {
	rec, err := DecodeAntex(strings.NewReader(antexSample))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, EncodeAntex(&buf, rec))

	rec2, err := DecodeAntex(strings.NewReader(buf.String()))
	require.NoError(t, err)
	require.Len(t, rec2.Calibrations, 1)
	assert.Equal(t, rec.Calibrations[0].AntennaType, rec2.Calibrations[0].AntennaType)
}
