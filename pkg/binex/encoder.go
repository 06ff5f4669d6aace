package binex

import (
	"fmt"

	"github.com/de-bkg/gnssdata/pkg/binary"
)

// recordIDOf returns the wire record ID for rec, including resolving a
// ClosedSource record back to its original ID.
func recordIDOf(rec Record) (uint32, error) {
	switch r := rec.(type) {
	case *GPSEphemeris:
		return RecordIDGPSEphemeris, nil
	case *GalEphemeris:
		return RecordIDGalileoEphemeris, nil
	case *GlonassEphemeris:
		return RecordIDGlonassEphemeris, nil
	case *SBASEphemeris:
		return RecordIDSBASEphemeris, nil
	case *MonumentGeo:
		return RecordIDMonumentGeo, nil
	case *Solutions:
		return RecordIDSolutions, nil
	case *ClosedSource:
		return r.RecordID, nil
	default:
		return 0, fmt.Errorf("binex: unknown record type %T", rec)
	}
}

func encodePayload(rec Record, bigEndian bool) ([]byte, error) {
	switch r := rec.(type) {
	case *GPSEphemeris:
		buf := make([]byte, GPSEphemerisSize)
		_, err := r.Encode(bigEndian, buf)
		return buf, err
	case *GalEphemeris:
		buf := make([]byte, GalEphemerisSize)
		_, err := r.Encode(bigEndian, buf)
		return buf, err
	case *GlonassEphemeris:
		buf := make([]byte, GlonassEphemerisSize)
		_, err := r.Encode(bigEndian, buf)
		return buf, err
	case *SBASEphemeris:
		buf := make([]byte, SBASEphemerisSize)
		_, err := r.Encode(bigEndian, buf)
		return buf, err
	case *MonumentGeo:
		buf := make([]byte, r.encodingSize())
		_, err := r.encode(bigEndian, buf)
		return buf, err
	case *Solutions:
		buf := make([]byte, r.encodingSize())
		_, err := r.encode(bigEndian, buf)
		return buf, err
	case *ClosedSource:
		return append([]byte(nil), r.Payload...), nil
	default:
		return nil, fmt.Errorf("binex: unknown record type %T", rec)
	}
}

// Encode renders msg as a complete framed BINEX message: sync byte,
// record ID, length, payload and CRC (spec.md §4.7).
func Encode(msg *Message) ([]byte, error) {
	recordID, err := recordIDOf(msg.Record)
	if err != nil {
		return nil, err
	}
	payload, err := encodePayload(msg.Record, msg.Meta.BigEndian)
	if err != nil {
		return nil, err
	}

	width := crcWidth(len(payload), msg.Meta.EnhancedCRC)
	crcOrder := BigEndian
	if !msg.Meta.BigEndian {
		crcOrder = LittleEndian
	}
	crc := computeCRC(payload, width, crcOrder)
	crcBuf := make([]byte, width)
	putCRC(crcBuf, crc, width, crcOrder)
	if width == 16 {
		putCRC128Hi(crcBuf, computeCRC128Hi(payload), crcOrder)
	}

	wirePayload := payload
	wireCRC := crcBuf
	if msg.Meta.Reversed {
		wirePayload = append([]byte(nil), payload...)
		wireCRC = append([]byte(nil), crcBuf...)
		reverseBytes(wirePayload)
		reverseBytes(wireCRC)
	}

	var out []byte
	out = append(out, encodeSyncByte(msg.Meta.Reversed, msg.Meta.EnhancedCRC, msg.Meta.BigEndian))
	out = append(out, binary.EncodeBNXI(recordID)...)
	out = append(out, binary.EncodeBNXI(uint32(len(payload)))...)
	out = append(out, wirePayload...)
	out = append(out, wireCRC...)
	return out, nil
}
