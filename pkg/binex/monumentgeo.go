package binex

import (
	"github.com/de-bkg/gnssdata/pkg/binary"
	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// MonumentGeoFieldID tags a MonumentGeo sub-record (spec.md §4.7).
type MonumentGeoFieldID uint8

const (
	MonumentGeoComment        MonumentGeoFieldID = 0
	MonumentGeoSiteName       MonumentGeoFieldID = 1
	MonumentGeoFourCharSiteID MonumentGeoFieldID = 2
	MonumentGeoMonumentNum    MonumentGeoFieldID = 3
	MonumentGeoReceiverNum    MonumentGeoFieldID = 4
	MonumentGeoObserver       MonumentGeoFieldID = 5
	MonumentGeoAgency         MonumentGeoFieldID = 6
	MonumentGeoAntennaType    MonumentGeoFieldID = 7
	MonumentGeoReceiverType   MonumentGeoFieldID = 8
	MonumentGeoClimate        MonumentGeoFieldID = 9
)

// MonumentGeoFrame is one tagged MonumentGeo sub-record. Exactly one of
// Text or Raw is populated: Text for the recognised string-bearing field
// IDs, Raw (with FieldID left verbatim) for anything this package doesn't
// recognise, preserved forward-compatibly (spec.md §4.7 "Unknown field
// IDs are preserved as raw sub-records").
type MonumentGeoFrame struct {
	FieldID MonumentGeoFieldID
	Text    string
	Raw     []byte
	Known   bool
}

func (f *MonumentGeoFrame) encodingSize() int {
	body := f.Raw
	if f.Known {
		body = []byte(f.Text)
	}
	return 1 + len(binary.EncodeBNXI(uint32(len(body)))) + len(body)
}

func (f *MonumentGeoFrame) encode(buf []byte) int {
	body := f.Raw
	if f.Known {
		body = []byte(f.Text)
	}
	buf[0] = byte(f.FieldID)
	lenBytes := binary.EncodeBNXI(uint32(len(body)))
	n := 1
	n += copy(buf[n:], lenBytes)
	n += copy(buf[n:], body)
	return n
}

func decodeMonumentGeoFrame(buf []byte) (*MonumentGeoFrame, int, error) {
	if len(buf) < 2 {
		return nil, 0, &ErrNotEnoughBytes{Need: 2, Got: len(buf)}
	}
	fid := MonumentGeoFieldID(buf[0])
	n, consumed, err := binary.DecodeBNXI(buf[1:])
	if err != nil {
		return nil, 0, err
	}
	start := 1 + consumed
	if len(buf) < start+int(n) {
		return nil, 0, &ErrNotEnoughBytes{Need: start + int(n), Got: len(buf)}
	}
	body := buf[start : start+int(n)]
	known := fid >= MonumentGeoComment && fid <= MonumentGeoClimate
	frame := &MonumentGeoFrame{FieldID: fid, Known: known}
	if known {
		frame.Text = string(body)
	} else {
		frame.Raw = append([]byte(nil), body...)
	}
	return frame, start + int(n), nil
}

// MonumentGeo is the station/site metadata record (spec.md §3.5/§4.7):
// a timestamped sequence of tagged string sub-records.
type MonumentGeo struct {
	Epoch  gnss.Epoch
	Frames []MonumentGeoFrame
}

func (r *MonumentGeo) isRecord() {}

func (r *MonumentGeo) encodingSize() int {
	size := 6
	for i := range r.Frames {
		size += r.Frames[i].encodingSize()
	}
	return size
}

func (r *MonumentGeo) encode(bigEndian bool, buf []byte) (int, error) {
	size := r.encodingSize()
	if len(buf) < size {
		return 0, &ErrNotEnoughBytes{Need: size, Got: len(buf)}
	}
	encodeEpochPrefix(r.Epoch, bigEndian, buf[0:6])
	p := 6
	for i := range r.Frames {
		p += r.Frames[i].encode(buf[p:])
	}
	return p, nil
}

func decodeMonumentGeo(bigEndian bool, buf []byte) (*MonumentGeo, error) {
	if len(buf) < 6 {
		return nil, &ErrNotEnoughBytes{Need: 6, Got: len(buf)}
	}
	rec := &MonumentGeo{Epoch: decodeEpochPrefix(bigEndian, buf[0:6])}
	p := 6
	for p < len(buf) {
		frame, n, err := decodeMonumentGeoFrame(buf[p:])
		if err != nil {
			if p == 6 {
				return nil, err
			}
			break
		}
		rec.Frames = append(rec.Frames, *frame)
		p += n
	}
	return rec, nil
}
