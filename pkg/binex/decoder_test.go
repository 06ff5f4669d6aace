package binex

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeMessageRoundTrip(t *testing.T) {
	eph := &GalEphemeris{SvPrn: 5, SqrtA: 56.0, M0Rad: 0.1, Omega0Rad: 0.9}
	msg := &Message{
		Meta:   Meta{BigEndian: true},
		Record: eph,
	}

	encoded, err := Encode(msg)
	require.NoError(t, err)

	dec := NewDecoder(bytes.NewReader(encoded))
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordIDGalileoEphemeris, got.Meta.RecordID)
	assert.Equal(t, eph, got.Record)
	assert.Empty(t, dec.Diagnostics())
}

func TestDecoderResyncsAfterCrcMismatch(t *testing.T) {
	good := &Message{Meta: Meta{BigEndian: true}, Record: &GPSEphemeris{SvPrn: 1}}
	encodedGood, err := Encode(good)
	require.NoError(t, err)

	corrupted := append([]byte(nil), encodedGood...)
	corrupted[len(corrupted)-1] ^= 0xff // flip a CRC byte

	var stream bytes.Buffer
	stream.Write(corrupted)
	stream.Write(encodedGood)

	dec := NewDecoder(&stream)
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordIDGPSEphemeris, got.Meta.RecordID)
	require.Len(t, dec.Diagnostics(), 1)
}

func TestDecoderClosedSourceRoundTrip(t *testing.T) {
	msg := &Message{
		Meta: Meta{BigEndian: true},
		Record: &ClosedSource{
			RecordID: 0x90,
			Provider: ProviderAshtech,
			Payload:  []byte{1, 2, 3, 4},
		},
	}
	encoded, err := Encode(msg)
	require.NoError(t, err)

	dec := NewDecoder(bytes.NewReader(encoded))
	got, err := dec.Next()
	require.NoError(t, err)
	cs, ok := got.Record.(*ClosedSource)
	require.True(t, ok)
	assert.Equal(t, ProviderAshtech, cs.Provider)
	assert.Equal(t, []byte{1, 2, 3, 4}, cs.Payload)
}

func TestDecoderReversedStream(t *testing.T) {
	msg := &Message{
		Meta:   Meta{BigEndian: true, Reversed: true},
		Record: &GPSEphemeris{SvPrn: 7, SqrtA: 42.0},
	}
	encoded, err := Encode(msg)
	require.NoError(t, err)

	dec := NewDecoder(bytes.NewReader(encoded))
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, RecordIDGPSEphemeris, got.Meta.RecordID)
	assert.True(t, got.Meta.Reversed)
}

func TestZeroLengthMessage(t *testing.T) {
	msg := &Message{
		Meta:   Meta{BigEndian: true},
		Record: &ClosedSource{RecordID: 0x85, Provider: ProviderUCAR, Payload: nil},
	}
	encoded, err := Encode(msg)
	require.NoError(t, err)

	dec := NewDecoder(bytes.NewReader(encoded))
	got, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, uint32(0), got.Meta.Length)
}
