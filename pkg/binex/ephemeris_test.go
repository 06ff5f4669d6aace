package binex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGalEphemerisRoundTrip(t *testing.T) {
	eph := &GalEphemeris{
		SvPrn:            10,
		ClockOffset:      123.0,
		ClockDriftRate:   130.0,
		ClockDrift:       150.0,
		SqrtA:            56.0,
		M0Rad:            0.1,
		E:                0.2,
		Cic:              0.3,
		Crc:              0.4,
		Cis:              0.5,
		Crs:              0.6,
		Cuc:              0.7,
		Cus:              0.8,
		Omega0Rad:        0.9,
		OmegaRad:         59.0,
		I0Rad:            61.0,
		ToeWeek:          112,
		Tow:              -10,
		ToeS:             -32,
		BgdE5aE1S:        -3.14,
		BgdE5bE1S:        -6.18,
		Iodnav:           -25,
		DeltaNSemiCircS:  150.0,
		OmegaDotSemiCirc: 160.0,
		IDotSemiCircS:    5000.0,
		Sisa:             1000.0,
		SvHealth:         155,
		Source:           156,
	}

	buf := make([]byte, GalEphemerisSize)
	n, err := eph.Encode(true, buf)
	require.NoError(t, err)
	assert.Equal(t, GalEphemerisSize, n)

	decoded, err := DecodeGalEphemeris(true, buf)
	require.NoError(t, err)
	assert.Equal(t, eph, decoded)

	short := make([]byte, 100)
	_, err = eph.Encode(true, short)
	assert.Error(t, err)
	_, err = DecodeGalEphemeris(true, short)
	assert.Error(t, err)
}

func TestGPSEphemerisRoundTrip(t *testing.T) {
	eph := &GPSEphemeris{
		SvPrn:          10,
		Toe:            1000,
		Tow:            120,
		Toc:            130,
		Tgd:            10.0,
		Iodc:           24,
		ClockOffset:    123.0,
		ClockDriftRate: 130.0,
		ClockDrift:     150.0,
		SqrtA:          56.0,
		Iode:           -2000,
		DeltaNRadS:     12.0,
		M0Rad:          0.1,
		E:              0.2,
		Cic:            0.3,
		Crc:            0.4,
		Cis:            0.5,
		Crs:            0.6,
		Cuc:            0.7,
		Cus:            0.8,
		Omega0Rad:      0.9,
		OmegaRad:       59.0,
		I0Rad:          61.0,
		OmegaDotRadS:   62.0,
		IDotRadS:       74.0,
		URAM:           75.0,
		SvHealth:       16,
		Uint2:          17,
	}

	buf := make([]byte, GPSEphemerisSize)
	n, err := eph.Encode(true, buf)
	require.NoError(t, err)
	assert.Equal(t, GPSEphemerisSize, n)

	decoded, err := DecodeGPSEphemeris(true, buf)
	require.NoError(t, err)
	assert.InDelta(t, eph.DeltaNRadS, decoded.DeltaNRadS, 1e-3)
	assert.InDelta(t, eph.OmegaDotRadS, decoded.OmegaDotRadS, 1e-3)
	assert.InDelta(t, eph.IDotRadS, decoded.IDotRadS, 1e-3)
	assert.InDelta(t, eph.URAM, decoded.URAM, 1e-6)
	assert.Equal(t, eph.SvPrn, decoded.SvPrn)
	assert.Equal(t, eph.SvHealth, decoded.SvHealth)

	short := make([]byte, 100)
	_, err = eph.Encode(true, short)
	assert.Error(t, err)
	_, err = DecodeGPSEphemeris(true, short)
	assert.Error(t, err)
}
