package binary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBNXIKnownValues(t *testing.T) {
	cases := []struct {
		value   uint32
		encoded []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7F}},
		{128, []byte{0x80, 0x01}},
		{16383, []byte{0xFF, 0x7F}},
	}
	for _, c := range cases {
		assert.Equal(t, c.encoded, EncodeBNXI(c.value))
		v, n, err := DecodeBNXI(c.encoded)
		require.NoError(t, err)
		assert.Equal(t, c.value, v)
		assert.Equal(t, len(c.encoded), n)
	}
}

func TestBNXIRoundTripRange(t *testing.T) {
	for n := uint32(0); n < (1 << 20); n += 997 {
		enc := EncodeBNXI(n)
		v, consumed, err := DecodeBNXI(enc)
		require.NoError(t, err)
		assert.Equal(t, n, v)
		assert.Equal(t, len(enc), consumed)
	}
	// spot check near the top of the documented domain
	for _, n := range []uint32{1<<28 - 1, 1 << 21, 1<<14 - 1, 1 << 14} {
		enc := EncodeBNXI(n)
		v, _, err := DecodeBNXI(enc)
		require.NoError(t, err)
		assert.Equal(t, n, v)
	}
}

func TestBNXITruncated(t *testing.T) {
	_, _, err := DecodeBNXI([]byte{0x80})
	assert.ErrorIs(t, err, ErrTruncatedBNXI)

	_, _, err = DecodeBNXI(nil)
	assert.ErrorIs(t, err, ErrTruncatedBNXI)
}

func TestPrimitivesNotEnoughBytes(t *testing.T) {
	_, err := ReadU32(nil, nil)
	var nb *ErrNotEnoughBytes
	require.ErrorAs(t, err, &nb)
}
