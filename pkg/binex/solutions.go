package binex

import (
	"github.com/de-bkg/gnssdata/pkg/binary"
	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// SolutionsFieldID tags a PVT Solutions sub-record (spec.md §4.7), grounded
// byte-for-byte on original_source/binex/src/message/record/solutions/mod.rs's
// encode test (a Comment frame followed by a position/velocity/temporal
// PVT update).
type SolutionsFieldID uint8

const (
	SolutionsComment       SolutionsFieldID = 0
	SolutionsPositionECEF  SolutionsFieldID = 1
	SolutionsPositionGeo   SolutionsFieldID = 2
	SolutionsVelocityECEF  SolutionsFieldID = 3
	SolutionsVelocityNED   SolutionsFieldID = 4
	SolutionsExtra         SolutionsFieldID = 5
	SolutionsTemporalSol   SolutionsFieldID = 6
)

// PositionECEF3D is an ECEF antenna position update (ellipsoid 0 = WGS84,
// the only ellipsoid this package encodes).
type PositionECEF3D struct {
	X, Y, Z float64
}

// Velocity3D is an ECEF velocity update.
type Velocity3D struct {
	X, Y, Z float64
}

// TemporalSolution is a clock offset/drift update.
type TemporalSolution struct {
	OffsetS float64
	DriftSS *float64
}

// SolutionsFrame is one tagged Solutions sub-record; exactly one payload
// field is populated, selected by FieldID.
type SolutionsFrame struct {
	FieldID  SolutionsFieldID
	Comment  string
	Extra    string
	Position *PositionECEF3D
	Velocity *Velocity3D
	Temporal *TemporalSolution
}

func (f *SolutionsFrame) encodingSize() int {
	switch f.FieldID {
	case SolutionsComment:
		return 1 + len(binary.EncodeBNXI(uint32(len(f.Comment)))) + len(f.Comment)
	case SolutionsExtra:
		return 1 + len(binary.EncodeBNXI(uint32(len(f.Extra)))) + len(f.Extra)
	case SolutionsPositionECEF:
		return 1 + 1 + 8*3
	case SolutionsVelocityECEF:
		return 1 + 8*3
	case SolutionsTemporalSol:
		size := 1 + 8 + 1
		if f.Temporal != nil && f.Temporal.DriftSS != nil {
			size += 8
		}
		return size
	default:
		return 1
	}
}

func (f *SolutionsFrame) encode(bigEndian bool, buf []byte) int {
	order := orderOf(bigEndian)
	buf[0] = byte(f.FieldID)
	p := 1
	switch f.FieldID {
	case SolutionsComment:
		lb := binary.EncodeBNXI(uint32(len(f.Comment)))
		p += copy(buf[p:], lb)
		p += copy(buf[p:], f.Comment)
	case SolutionsExtra:
		lb := binary.EncodeBNXI(uint32(len(f.Extra)))
		p += copy(buf[p:], lb)
		p += copy(buf[p:], f.Extra)
	case SolutionsPositionECEF:
		buf[p] = 0 // WGS84
		p++
		putF64(buf[p:p+8], f.Position.X, order)
		p += 8
		putF64(buf[p:p+8], f.Position.Y, order)
		p += 8
		putF64(buf[p:p+8], f.Position.Z, order)
		p += 8
	case SolutionsVelocityECEF:
		putF64(buf[p:p+8], f.Velocity.X, order)
		p += 8
		putF64(buf[p:p+8], f.Velocity.Y, order)
		p += 8
		putF64(buf[p:p+8], f.Velocity.Z, order)
		p += 8
	case SolutionsTemporalSol:
		putF64(buf[p:p+8], f.Temporal.OffsetS, order)
		p += 8
		if f.Temporal.DriftSS != nil {
			buf[p] = 1
			p++
			putF64(buf[p:p+8], *f.Temporal.DriftSS, order)
			p += 8
		} else {
			buf[p] = 0
			p++
		}
	}
	return p
}

func decodeSolutionsFrame(bigEndian bool, buf []byte) (*SolutionsFrame, int, error) {
	if len(buf) < 1 {
		return nil, 0, &ErrNotEnoughBytes{Need: 1, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	fid := SolutionsFieldID(buf[0])
	p := 1
	fr := &SolutionsFrame{FieldID: fid}
	switch fid {
	case SolutionsComment, SolutionsExtra:
		n, consumed, err := binary.DecodeBNXI(buf[p:])
		if err != nil {
			return nil, 0, err
		}
		p += consumed
		if len(buf) < p+int(n) {
			return nil, 0, &ErrNotEnoughBytes{Need: p + int(n), Got: len(buf)}
		}
		s := string(buf[p : p+int(n)])
		p += int(n)
		if fid == SolutionsComment {
			fr.Comment = s
		} else {
			fr.Extra = s
		}
	case SolutionsPositionECEF:
		if len(buf) < p+1+24 {
			return nil, 0, &ErrNotEnoughBytes{Need: p + 25, Got: len(buf)}
		}
		p++ // ellipsoid id, WGS84-only
		fr.Position = &PositionECEF3D{
			X: getF64(buf[p:p+8], order),
			Y: getF64(buf[p+8:p+16], order),
			Z: getF64(buf[p+16:p+24], order),
		}
		p += 24
	case SolutionsVelocityECEF:
		if len(buf) < p+24 {
			return nil, 0, &ErrNotEnoughBytes{Need: p + 24, Got: len(buf)}
		}
		fr.Velocity = &Velocity3D{
			X: getF64(buf[p:p+8], order),
			Y: getF64(buf[p+8:p+16], order),
			Z: getF64(buf[p+16:p+24], order),
		}
		p += 24
	case SolutionsTemporalSol:
		if len(buf) < p+9 {
			return nil, 0, &ErrNotEnoughBytes{Need: p + 9, Got: len(buf)}
		}
		offset := getF64(buf[p:p+8], order)
		p += 8
		hasDrift := buf[p] != 0
		p++
		ts := &TemporalSolution{OffsetS: offset}
		if hasDrift {
			if len(buf) < p+8 {
				return nil, 0, &ErrNotEnoughBytes{Need: p + 8, Got: len(buf)}
			}
			d := getF64(buf[p:p+8], order)
			ts.DriftSS = &d
			p += 8
		}
		fr.Temporal = ts
	default:
		return nil, 0, &ErrNotEnoughBytes{Need: 0, Got: 0}
	}
	return fr, p, nil
}

// Solutions is the PVT record (spec.md §3.5/§4.7): a timestamped sequence
// of position/velocity/clock sub-records.
type Solutions struct {
	Epoch  gnss.Epoch
	Frames []SolutionsFrame
}

func (r *Solutions) isRecord() {}

func (r *Solutions) encodingSize() int {
	size := 6
	for i := range r.Frames {
		size += r.Frames[i].encodingSize()
	}
	return size
}

func (r *Solutions) encode(bigEndian bool, buf []byte) (int, error) {
	size := r.encodingSize()
	if len(buf) < size {
		return 0, &ErrNotEnoughBytes{Need: size, Got: len(buf)}
	}
	encodeEpochPrefix(r.Epoch, bigEndian, buf[0:6])
	p := 6
	for i := range r.Frames {
		p += r.Frames[i].encode(bigEndian, buf[p:])
	}
	return p, nil
}

const solutionsMinSize = 4 + 2 + 1

func decodeSolutions(bigEndian bool, buf []byte) (*Solutions, error) {
	if len(buf) < solutionsMinSize {
		return nil, &ErrNotEnoughBytes{Need: solutionsMinSize, Got: len(buf)}
	}
	rec := &Solutions{Epoch: decodeEpochPrefix(bigEndian, buf[0:6])}
	p := 6
	for p < len(buf) {
		fr, n, err := decodeSolutionsFrame(bigEndian, buf[p:])
		if err != nil {
			if p == 6 {
				return nil, &ErrNotEnoughBytes{Need: solutionsMinSize, Got: len(buf)}
			}
			break
		}
		rec.Frames = append(rec.Frames, *fr)
		p += n
	}
	return rec, nil
}
