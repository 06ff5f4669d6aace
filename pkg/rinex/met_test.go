package rinex

import (
	"strings"
	"testing"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const metSample = `     3.04           METEOROLOGICAL DATA                     RINEX VERSION / TYPE
gnssdata            de-bkg               20260101 000000 UTC PGM / RUN BY / DATE
TEST STATION                                                MARKER NAME
     3 PR   TD   HR                                         # / TYPES OF OBSERV
END OF HEADER
 2026  1  1  0  0  0  1013.2   22.5   55.0
`

func TestDecodeMeteo(t *testing.T) {
	rec, err := DecodeMeteo(strings.NewReader(metSample))
	require.NoError(t, err)
	require.Len(t, rec.Epochs, 1)

	pr, _ := gnss.ParseObservable("PR")
	assert.InDelta(t, 1013.2, rec.Epochs[0].Values[pr], 1e-6)
}
