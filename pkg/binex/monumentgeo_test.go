package binex

import (
	"testing"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonumentGeoRoundTrip(t *testing.T) {
	epoch := gnss.NewEpoch(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), gnss.GPST)
	rec := &MonumentGeo{
		Epoch: epoch,
		Frames: []MonumentGeoFrame{
			{FieldID: MonumentGeoSiteName, Text: "BRUX", Known: true},
			{FieldID: MonumentGeoObserver, Text: "J. Doe", Known: true},
			{FieldID: 200, Raw: []byte{0xde, 0xad, 0xbe, 0xef}},
		},
	}

	buf := make([]byte, rec.encodingSize())
	n, err := rec.encode(true, buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)

	decoded, err := decodeMonumentGeo(true, buf)
	require.NoError(t, err)
	require.Len(t, decoded.Frames, 3)
	assert.Equal(t, "BRUX", decoded.Frames[0].Text)
	assert.Equal(t, "J. Doe", decoded.Frames[1].Text)
	assert.False(t, decoded.Frames[2].Known)
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, decoded.Frames[2].Raw)
}
