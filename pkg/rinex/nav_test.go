package rinex

import (
	"bytes"
	"strings"
	"testing"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const navV3Sample = `     3.04           N: GNSS NAV DATA    M: MIXED             RINEX VERSION / TYPE
gnssdata            de-bkg               20260101 000000 UTC PGM / RUN BY / DATE
END OF HEADER
G01 2020 06 17 02 00 00 1.051961444318E-04-4.433786671143E-12 0.000000000000E+00
     6.100000000000E+01 5.971875000000E+01 4.119457306218E-09-2.150395402634E+00
     3.147870302200E-06 8.033315883949E-03 3.485009074211E-06 5.153677604675E+03
     2.664000000000E+05 1.061707735062E-07 6.666502414356E-01-5.774199962616E-08
     9.781878686511E-01 3.217500000000E+02 1.162895587886E+00-7.943902323989E-09
     1.325055193867E-10 1.000000000000E+00 2.110000000000E+03 0.000000000000E+00
     2.000000000000E+00 0.000000000000E+00-1.210719347000E-08 6.100000000000E+01
     2.592180000000E+05 4.000000000000E+00
R02 2020 06 17 02 15 00-1.234567890000E-04 0.000000000000E+00 5.400000000000E+02
     1.111111111111E+04 1.111111111111E+00 1.000000000000E-09 0.000000000000E+00
     2.222222222222E+04 2.222222222222E+00 2.000000000000E-09 3.000000000000E+00
     3.333333333333E+04 3.333333333333E+00 3.000000000000E-09 0.000000000000E+00
`

func TestDecodeNavigationMixed(t *testing.T) {
	rec, err := DecodeNavigation(strings.NewReader(navV3Sample))
	require.NoError(t, err)
	require.Len(t, rec.Ephs, 2)

	gps, ok := rec.Ephs[0].(*EphKeplerian)
	require.True(t, ok)
	assert.Equal(t, gnss.SV{Constellation: gnss.GPS, PRN: 1}, gps.Satellite())
	assert.InDelta(t, 1.051961444318E-04, gps.ClockBias, 1e-15)
	assert.InDelta(t, 5.153677604675E+03, gps.SqrtA, 1e-6)

	glo, ok := rec.Ephs[1].(*EphGlonass)
	require.True(t, ok)
	assert.Equal(t, gnss.SV{Constellation: gnss.Glonass, PRN: 2}, glo.Satellite())
	assert.InDelta(t, 1.234567890000E-04, glo.TauN, 1e-15)
	assert.InDelta(t, 3.0, glo.FreqNum, 1e-9)
}

func TestEncodeNavigationRoundTrip(t *testing.T) {
	rec, err := DecodeNavigation(strings.NewReader(navV3Sample))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeNavigation(&buf, rec))

	rec2, err := DecodeNavigation(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rec2.Ephs, 2)

	gps1 := rec.Ephs[0].(*EphKeplerian)
	gps2 := rec2.Ephs[0].(*EphKeplerian)
	assert.InDelta(t, gps1.SqrtA, gps2.SqrtA, 1e-5)
	assert.True(t, gps1.ReferenceEpoch().Equal(gps2.ReferenceEpoch()))
}
