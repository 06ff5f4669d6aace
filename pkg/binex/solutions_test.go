package binex

import (
	"testing"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolutionsCommentLiteralBytes(t *testing.T) {
	epoch := epochFromGpsDayMs(1, 0x2af8)

	sol := &Solutions{
		Epoch:  epoch,
		Frames: []SolutionsFrame{{FieldID: SolutionsComment, Comment: "Hello"}},
	}

	buf := make([]byte, sol.encodingSize())
	n, err := sol.encode(true, buf)
	require.NoError(t, err)
	require.Equal(t, 13, n)

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x01, 0x2a, 0xf8, 0x00, 0x05, 'H', 'e', 'l', 'l', 'o'}, buf)

	decoded, err := decodeSolutions(true, buf)
	require.NoError(t, err)
	require.Len(t, decoded.Frames, 1)
	assert.Equal(t, "Hello", decoded.Frames[0].Comment)
}

func TestSolutionsPVTRoundTrip(t *testing.T) {
	epoch := gnss.NewEpoch(time.Date(2024, 3, 1, 0, 1, 0, 0, time.UTC), gnss.GPST)

	drift := 8.0
	sol := &Solutions{
		Epoch: epoch,
		Frames: []SolutionsFrame{
			{FieldID: SolutionsComment, Comment: "Hello"},
			{FieldID: SolutionsPositionECEF, Position: &PositionECEF3D{X: 1.0, Y: 2.0, Z: 3.0}},
			{FieldID: SolutionsVelocityECEF, Velocity: &Velocity3D{X: 4.0, Y: 5.0, Z: 6.0}},
			{FieldID: SolutionsTemporalSol, Temporal: &TemporalSolution{OffsetS: 7.0, DriftSS: &drift}},
		},
	}

	buf := make([]byte, sol.encodingSize())
	_, err := sol.encode(true, buf)
	require.NoError(t, err)

	decoded, err := decodeSolutions(true, buf)
	require.NoError(t, err)
	require.Len(t, decoded.Frames, 4)

	assert.Equal(t, "Hello", decoded.Frames[0].Comment)
	assert.Equal(t, &PositionECEF3D{X: 1.0, Y: 2.0, Z: 3.0}, decoded.Frames[1].Position)
	assert.Equal(t, &Velocity3D{X: 4.0, Y: 5.0, Z: 6.0}, decoded.Frames[2].Velocity)
	require.NotNil(t, decoded.Frames[3].Temporal.DriftSS)
	assert.Equal(t, 7.0, decoded.Frames[3].Temporal.OffsetS)
	assert.Equal(t, 8.0, *decoded.Frames[3].Temporal.DriftSS)
}
