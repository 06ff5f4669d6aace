package collector

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-bkg/gnssdata/pkg/binex"
)

func testConfig(t *testing.T, periodicity Periodicity, interval time.Duration) Config {
	return Config{
		OutputDir:        t.TempDir(),
		Station:          "ABMF",
		CountryCode:      "GLP",
		Periodicity:      periodicity,
		PeriodicInterval: interval,
	}
}

func galMessage(prn uint8, week uint16, tow int32) *binex.Message {
	return &binex.Message{
		Meta:   binex.Meta{RecordID: binex.RecordIDGalileoEphemeris, BigEndian: true},
		Record: &binex.GalEphemeris{SvPrn: prn, ToeWeek: week, Tow: tow, SqrtA: 5153.7},
	}
}

func TestConfigValidateRejectsMissingFields(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestConfigValidateRequiresPeriodicInterval(t *testing.T) {
	cfg := testConfig(t, Periodic, 0)
	err := cfg.Validate()
	require.Error(t, err)
	var invalid *ErrInvalidConfig
	require.ErrorAs(t, err, &invalid)
}

func TestFeedEmitsOnPeriodClose(t *testing.T) {
	cfg := testConfig(t, Hourly, 0)
	c, err := New(cfg)
	require.NoError(t, err)

	// Two ephemerides roughly an hour apart (same GPS week, tow+3800s).
	path, ok := c.Feed(galMessage(10, 2190, 100))
	assert.False(t, ok)
	assert.Empty(t, path)

	path, ok = c.Feed(galMessage(11, 2190, 3900))
	require.True(t, ok)
	require.NotEmpty(t, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.True(t, info.Size() > 0)
	assert.Equal(t, filepath.Dir(path), cfg.OutputDir)
}

func TestFeedDropsLateMessageNoBackfill(t *testing.T) {
	cfg := testConfig(t, Hourly, 0)
	c, err := New(cfg)
	require.NoError(t, err)

	c.Feed(galMessage(10, 2190, 10000))
	_, ok := c.Feed(galMessage(11, 2190, 100)) // earlier tow: late for the opened period
	assert.False(t, ok)
	require.NotEmpty(t, c.Diagnostics())
	assert.Contains(t, c.Diagnostics()[len(c.Diagnostics())-1], "dropped late")
}

func TestFeedDiscardsClosedSource(t *testing.T) {
	cfg := testConfig(t, Hourly, 0)
	c, err := New(cfg)
	require.NoError(t, err)

	msg := &binex.Message{
		Meta:   binex.Meta{RecordID: 0x90},
		Record: &binex.ClosedSource{RecordID: 0x90, Provider: binex.ProviderAshtech, Payload: []byte{1, 2, 3}},
	}
	path, ok := c.Feed(msg)
	assert.False(t, ok)
	assert.Empty(t, path)
	require.NotEmpty(t, c.Diagnostics())
}

func TestPostponementAfterMessages(t *testing.T) {
	cfg := testConfig(t, Hourly, 0)
	cfg.Postponement = Postponement{Kind: PostponeAfterMessages, AfterMessages: 2}
	c, err := New(cfg)
	require.NoError(t, err)

	// 1st message: postponed, discarded entirely (collector never opens a period).
	_, ok := c.Feed(galMessage(10, 2190, 100))
	assert.False(t, ok)
	assert.False(t, c.started)

	// 2nd message: threshold reached, accepted and opens the period.
	_, ok = c.Feed(galMessage(10, 2190, 200))
	assert.False(t, ok) // accepted, but no period close yet
	assert.True(t, c.started)

	// 3rd message, an hour later: closes the period opened by the 2nd.
	_, ok = c.Feed(galMessage(11, 2190, 3900))
	assert.True(t, ok)
}

func TestMonumentGeoSeedsObservationHeader(t *testing.T) {
	cfg := testConfig(t, Periodic, time.Hour)
	c, err := New(cfg)
	require.NoError(t, err)

	mg := &binex.Message{
		Meta: binex.Meta{RecordID: binex.RecordIDMonumentGeo},
		Record: &binex.MonumentGeo{
			Frames: []binex.MonumentGeoFrame{
				{FieldID: binex.MonumentGeoSiteName, Text: "ABMF00GLP", Known: true},
				{FieldID: binex.MonumentGeoObserver, Text: "J. Doe", Known: true},
			},
		},
	}
	_, ok := c.Feed(mg)
	assert.False(t, ok)

	_, ok = c.Feed(galMessage(10, 2190, 7200))
	assert.False(t, ok) // opens the period, nothing closed yet

	// An hour later: closes the period opened above.
	path, ok := c.Feed(galMessage(11, 2190, 10800))
	require.True(t, ok)
	require.NotEmpty(t, path)
	assert.Equal(t, "ABMF00GLP", c.obsHeader.MarkerName)
	assert.Equal(t, "J. Doe", c.obsHeader.Observer)
}
