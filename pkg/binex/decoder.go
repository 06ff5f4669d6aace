package binex

import (
	"bufio"
	"io"
	"strconv"

	"github.com/de-bkg/gnssdata/pkg/binary"
)

// Decoder parses a BINEX byte stream message by message, implementing the
// Search/Header/Payload/Crc state machine of spec.md §4.7: a CRC mismatch
// or an unrecognised open-source record ID produces a diagnostic and
// resumes scanning from the next sync byte rather than failing the whole
// stream.
type Decoder struct {
	r           *bufio.Reader
	diagnostics []string
}

// NewDecoder wraps r for sequential message decoding.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Diagnostics returns the non-fatal issues (CRC mismatches, unknown
// open-source record IDs) observed since the decoder was created.
func (d *Decoder) Diagnostics() []string { return d.diagnostics }

func (d *Decoder) diag(msg string) { d.diagnostics = append(d.diagnostics, msg) }

// Next decodes and returns the next message, or io.EOF once the stream is
// exhausted with no message in progress. Any I/O error surfaces
// immediately (spec.md §4.7 "Cancellation").
func (d *Decoder) Next() (*Message, error) {
	for {
		syncByte, err := d.r.ReadByte()
		if err != nil {
			return nil, err
		}
		reversed, enhanced, bigEndian, err := syncMeta(syncByte)
		if err != nil {
			// Search state: not a recognised sync byte, keep scanning.
			continue
		}

		msg, err := d.readMessage(reversed, enhanced, bigEndian)
		if err != nil {
			if _, ok := err.(*ErrCrcMismatch); ok {
				d.diag(err.Error())
				continue
			}
			return nil, err
		}
		if msg == nil {
			// Unknown open-source record ID: already diagnosed, resync.
			continue
		}
		return msg, nil
	}
}

// readMessage consumes one message's header, payload and CRC once its
// sync byte has already been read. It returns (nil, nil) for an unknown
// open-source record ID, having emitted a diagnostic and consumed the
// message so the stream stays in sync.
func (d *Decoder) readMessage(reversed, enhancedCRC, bigEndian bool) (*Message, error) {
	recordID, err := d.readBNXI()
	if err != nil {
		return nil, err
	}
	length, err := d.readBNXI()
	if err != nil {
		return nil, err
	}

	payload := make([]byte, length)
	if n, err := io.ReadFull(d.r, payload); err != nil {
		return nil, &ErrTruncatedMessage{Need: int(length), Got: n}
	}

	width := crcWidth(int(length), enhancedCRC)
	crcBuf := make([]byte, width)
	if n, err := io.ReadFull(d.r, crcBuf); err != nil {
		return nil, &ErrTruncatedMessage{Need: width, Got: n}
	}

	// Reversed streams mirror payload and CRC byte order; the BNXI
	// record_id/length fields remain forward-encoded since BNXI's
	// self-terminating form cannot be byte-reversed before its total
	// length is known.
	if reversed {
		reverseBytes(payload)
		reverseBytes(crcBuf)
	}

	crcOrder := BigEndian
	if !bigEndian {
		crcOrder = LittleEndian
	}
	expected := readCRC(crcBuf, width, crcOrder)
	computed := computeCRC(payload, width, crcOrder)
	if width == 16 {
		expectedHi := readCRC128Hi(crcBuf, crcOrder)
		computedHi := computeCRC128Hi(payload)
		if expectedHi != computedHi {
			return nil, &ErrCrcMismatch{Expected: expectedHi, Computed: computedHi}
		}
	}
	if expected != computed {
		return nil, &ErrCrcMismatch{Expected: expected, Computed: computed}
	}

	rec, ok, err := decodeRecord(recordID, bigEndian, payload)
	if err != nil {
		return nil, err
	}
	if !ok {
		d.diag("binex: skipping unknown open-source record id " + strconv.FormatUint(uint64(recordID), 10))
		return nil, nil
	}

	return &Message{
		Meta: Meta{
			RecordID:    recordID,
			Length:      length,
			Reversed:    reversed,
			EnhancedCRC: enhancedCRC,
			BigEndian:   bigEndian,
		},
		Record: rec,
	}, nil
}

// readBNXI reads one BNXI value byte-by-byte from the buffered reader.
func (d *Decoder) readBNXI() (uint32, error) {
	var buf [4]byte
	n := 0
	for n < 4 {
		b, err := d.r.ReadByte()
		if err != nil {
			return 0, err
		}
		buf[n] = b
		n++
		if b&0x80 == 0 {
			v, _, err := binary.DecodeBNXI(buf[:n])
			return v, err
		}
	}
	return 0, binary.ErrTruncatedBNXI
}

// decodeRecord dispatches a payload to its typed decoder by record ID. ok
// is false for a recognised-as-unknown open-source ID (spec.md §4.7).
func decodeRecord(recordID uint32, bigEndian bool, payload []byte) (Record, bool, error) {
	if isClosedSource(recordID) {
		return &ClosedSource{
			RecordID: recordID,
			Provider: matchProvider(recordID),
			Payload:  append([]byte(nil), payload...),
		}, true, nil
	}
	switch recordID {
	case RecordIDGPSEphemeris:
		rec, err := DecodeGPSEphemeris(bigEndian, payload)
		return rec, err == nil, err
	case RecordIDGalileoEphemeris:
		rec, err := DecodeGalEphemeris(bigEndian, payload)
		return rec, err == nil, err
	case RecordIDGlonassEphemeris:
		rec, err := DecodeGlonassEphemeris(bigEndian, payload)
		return rec, err == nil, err
	case RecordIDSBASEphemeris:
		rec, err := DecodeSBASEphemeris(bigEndian, payload)
		return rec, err == nil, err
	case RecordIDMonumentGeo:
		rec, err := decodeMonumentGeo(bigEndian, payload)
		return rec, err == nil, err
	case RecordIDSolutions:
		rec, err := decodeSolutions(bigEndian, payload)
		return rec, err == nil, err
	default:
		return nil, false, nil
	}
}

func reverseBytes(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}

