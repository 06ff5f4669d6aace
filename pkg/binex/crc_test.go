package binex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCrcWidthTable(t *testing.T) {
	cases := []struct {
		length      int
		enhanced    bool
		wantWidth   int
	}{
		{10, false, 1},
		{10, true, 2},
		{4000, false, 2},
		{4000, true, 4},
		{100000, false, 4},
		{100000, true, 8},
		{2000000, false, 8},
		{2000000, true, 16},
	}
	for _, c := range cases {
		assert.Equal(t, c.wantWidth, crcWidth(c.length, c.enhanced))
	}
}

func TestXor8AndCcitt16RoundTrip(t *testing.T) {
	data := []byte("hello binex")
	assert.Equal(t, computeCRC(data, 1, BigEndian), computeCRC(data, 1, BigEndian))

	buf := make([]byte, 2)
	crc := computeCRC(data, 2, BigEndian)
	putCRC(buf, crc, 2, BigEndian)
	assert.Equal(t, crc, readCRC(buf, 2, BigEndian))

	bufLE := make([]byte, 2)
	putCRC(bufLE, crc, 2, LittleEndian)
	assert.Equal(t, crc, readCRC(bufLE, 2, LittleEndian))
}

func TestProviderRanges(t *testing.T) {
	assert.Equal(t, ProviderUCAR, matchProvider(0x80))
	assert.Equal(t, ProviderAshtech, matchProvider(0x90))
	assert.Equal(t, ProviderTopcon, matchProvider(0xAA))
	assert.Equal(t, ProviderGPSSolutions, matchProvider(0xB1))
	assert.Equal(t, ProviderNRCan, matchProvider(0xB5))
	assert.Equal(t, ProviderJPL, matchProvider(0xB9))
	assert.Equal(t, ProviderCUBoulder, matchProvider(0xC1))
	assert.Equal(t, ProviderUnknown, matchProvider(0xC4))
	assert.False(t, isClosedSource(0x7F))
	assert.True(t, isClosedSource(0x80))
}
