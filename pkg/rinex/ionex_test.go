package rinex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const ionexHeader = `      1.0           IONOSPHERE MAPS     GPS                 RINEX VERSION / TYPE
gnssdata            de-bkg               20260101 000000 UTC PGM / RUN BY / DATE
     1                                                      # OF MAPS IN FILE
  2.0                                                       HGT1 / HGT2 / DHGT
 87.5 -87.5  -5.0                                            LAT1 / LAT2 / DLAT
-180.0 180.0  180.0                                          LON1 / LON2 / DLON
    -1                                                       EXPONENT
END OF HEADER
`

func TestDecodeIonexDefaultExponent(t *testing.T) {
	rec, err := DecodeIonex(strings.NewReader(ionexHeader))
	require.NoError(t, err)
	require.Equal(t, -1, rec.Header.Exponent)
}

func TestIonexExponentDefaultsWhenAbsent(t *testing.T) {
	noExponent := strings.Replace(ionexHeader, "    -1                                                       EXPONENT\n", "", 1)
	rec, err := DecodeIonex(strings.NewReader(noExponent))
	require.NoError(t, err)
	require.Equal(t, -1, rec.Header.Exponent) // spec.md §9: default -1 when omitted
}

func TestIonexEncodeProducesHeader(t *testing.T) {
	rec, err := DecodeIonex(strings.NewReader(ionexHeader))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, EncodeIonex(&buf, rec))
	require.Contains(t, buf.String(), "RINEX VERSION / TYPE")
}
