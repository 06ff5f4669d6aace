package gnss

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSVBothForms(t *testing.T) {
	strict, err := ParseSV("G01")
	require.NoError(t, err)
	assert.Equal(t, SV{Constellation: GPS, PRN: 1}, strict)

	spaced, err := ParseSV("G 1")
	require.NoError(t, err)
	assert.Equal(t, strict, spaced)

	short, err := ParseSV("E1")
	require.NoError(t, err)
	assert.Equal(t, SV{Constellation: Galileo, PRN: 1}, short)

	long, err := ParseSV("E01")
	require.NoError(t, err)
	assert.Equal(t, short, long)
}

func TestParseSVUnknownConstellation(t *testing.T) {
	_, err := ParseSV("Z01")
	require.Error(t, err)
	var malformed *ErrMalformedSV
	assert.ErrorAs(t, err, &malformed)
	var unknown *ErrUnknownConstellation
	assert.ErrorAs(t, err, &unknown)
}

func TestSVString(t *testing.T) {
	sv := SV{Constellation: GPS, PRN: 1}
	assert.Equal(t, "G01", sv.String())
}

func TestSVOrdering(t *testing.T) {
	list := []SV{
		{Constellation: Galileo, PRN: 2},
		{Constellation: GPS, PRN: 5},
		{Constellation: GPS, PRN: 1},
	}
	assert.True(t, list[1].Less(list[0]))
	assert.True(t, list[2].Less(list[1]))
}

func TestCarrierOfKnownRegistry(t *testing.T) {
	c, err := CarrierOf(GPS, "1C")
	require.NoError(t, err)
	assert.Equal(t, L1, c)

	_, err = CarrierOf(GPS, "9Z")
	require.Error(t, err)
	var unknown *ErrUnknownCarrier
	assert.ErrorAs(t, err, &unknown)
}

func TestGlonassFDMAFrequency(t *testing.T) {
	f0, err := GlonassFrequency(G1, 0)
	require.NoError(t, err)
	assert.InDelta(t, 1602.0e6, f0, 1.0)

	fk, err := GlonassFrequency(G1, 3)
	require.NoError(t, err)
	assert.InDelta(t, 1602.0e6+3*0.5625e6, fk, 1.0)
}

func TestEpochConversionPreservesOrdering(t *testing.T) {
	t1 := NewEpoch(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), GPST)
	t2 := NewEpoch(time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC), GPST)
	assert.True(t, t1.Before(t2))

	t1utc := t1.ConvertTo(UTC)
	t2utc := t2.ConvertTo(UTC)
	assert.True(t, t1utc.Before(t2utc))
	assert.Equal(t, UTC, t1utc.Scale)

	back := t1utc.ConvertTo(GPST)
	assert.True(t, back.Equal(t1))
}

func TestParseObservableRoundTrip(t *testing.T) {
	obs, err := ParseObservable("L1C")
	require.NoError(t, err)
	assert.Equal(t, Observable{Kind: PhaseRange, Code: "1C"}, obs)
	assert.Equal(t, "L1C", obs.String())

	carrier, err := obs.CarrierOf(GPS)
	require.NoError(t, err)
	assert.Equal(t, L1, carrier)
}

func TestParseObservableMeteo(t *testing.T) {
	obs, err := ParseObservable("TD")
	require.NoError(t, err)
	assert.Equal(t, Temperature, obs.Kind)

	_, err = obs.CarrierOf(GPS)
	require.Error(t, err)
}
