package rinex

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dorisHeader = `     3.04           D                   M                   RINEX VERSION / TYPE
gnssdata            de-bkg               20260101 000000 UTC PGM / RUN BY / DATE
D    2 C1C L1C                                              SYS / # / OBS TYPES
END OF HEADER
`

func dorisBody() string {
	field := fmt.Sprintf("%14.3f  ", 7000123.456)
	blank := strings.Repeat(" ", 16)
	return "> 2026 01 01 00 00  0.0000000  0  1\nD01" + field + blank + "\n"
}

func TestDecodeDoris(t *testing.T) {
	rec, err := DecodeDoris(strings.NewReader(dorisHeader + dorisBody()))
	require.NoError(t, err)
	require.Len(t, rec.Epochs, 1)
	require.Len(t, rec.Epochs[0].Stations, 1)
	var found bool
	for sta, obs := range rec.Epochs[0].Stations {
		if sta.ID == 1 {
			found = true
			for _, data := range obs {
				if data.Present {
					assert.InDelta(t, 7000123.456, data.Value, 1e-6)
				}
			}
		}
	}
	assert.True(t, found)
}

func TestEncodeDorisRoundTrip(t *testing.T) {
	rec, err := DecodeDoris(strings.NewReader(dorisHeader + dorisBody()))
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, EncodeDoris(&buf, rec))

	rec2, err := DecodeDoris(strings.NewReader(dorisHeader + buf.String()))
	require.NoError(t, err)
	require.Len(t, rec2.Epochs, 1)
}
