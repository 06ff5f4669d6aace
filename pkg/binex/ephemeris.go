package binex

import (
	"math"
)

// Open-source ephemeris record IDs. The spec enumerates only the
// closed-source provider ranges (0x80+); the open-source IDs below that
// threshold are this package's own choice (an Open Question decision,
// recorded in DESIGN.md) since no literal values are named in the
// original material.
const (
	RecordIDGPSEphemeris     uint32 = 0x01
	RecordIDGalileoEphemeris uint32 = 0x02
	RecordIDGlonassEphemeris uint32 = 0x03
	RecordIDSBASEphemeris    uint32 = 0x04
	RecordIDMonumentGeo      uint32 = 0x05
	RecordIDSolutions        uint32 = 0x06
)

const piF32 = float32(math.Pi)

// GPSEphemeris is the 153-byte GPS/QZSS LNAV ephemeris frame (spec.md
// §4.7), grounded field-for-field and byte-offset-for-byte-offset on
// original_source/binex/src/message/record/ephemeris/gps/eph.rs.
type GPSEphemeris struct {
	SvPrn           uint8
	Toe             uint16
	Tow             int32
	Toc             int32
	Tgd             float32
	Iodc            int32
	ClockDriftRate  float32
	ClockDrift      float32
	ClockOffset     float32
	Iode            int32
	DeltaNRadS      float32 // stored already multiplied by pi on decode
	M0Rad           float64
	E               float64
	SqrtA           float64
	Cic             float32
	Crc             float32
	Cis             float32
	Crs             float32
	Cuc             float32
	Cus             float32
	Omega0Rad       float64
	OmegaRad        float64
	I0Rad           float64
	OmegaDotRadS    float32 // already multiplied by pi
	IDotRadS        float32 // already multiplied by pi
	URAM            float32 // already multiplied by 0.1
	SvHealth        uint16
	Uint2           uint16
}

// GPSEphemerisSize is the fixed wire size of a GPSEphemeris frame.
const GPSEphemerisSize = 153

func (e *GPSEphemeris) isRecord() {}

func (e *GPSEphemeris) EncodingSize() int { return GPSEphemerisSize }

func (e *GPSEphemeris) Encode(bigEndian bool, buf []byte) (int, error) {
	if len(buf) < GPSEphemerisSize {
		return 0, &ErrNotEnoughBytes{Need: GPSEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	buf[0] = e.SvPrn
	putU16(buf[1:3], e.Toe, order)
	putI32(buf[4:8], e.Tow, order)
	putI32(buf[9:13], e.Toc, order)
	putF32(buf[14:18], e.Tgd, order)
	putI32(buf[19:23], e.Iodc, order)
	putF32(buf[24:28], e.ClockDriftRate, order)
	putF32(buf[29:33], e.ClockDrift, order)
	putF32(buf[34:38], e.ClockOffset, order)
	putI32(buf[39:43], e.Iode, order)
	putF32(buf[44:48], e.DeltaNRadS/piF32, order)
	putF64(buf[49:57], e.M0Rad, order)
	putF64(buf[58:66], e.E, order)
	putF64(buf[67:75], e.SqrtA, order)
	putF32(buf[76:80], e.Cic, order)
	putF32(buf[81:85], e.Crc, order)
	putF32(buf[86:90], e.Cis, order)
	putF32(buf[91:95], e.Crs, order)
	putF32(buf[96:100], e.Cuc, order)
	putF32(buf[101:105], e.Cus, order)
	putF64(buf[106:114], e.Omega0Rad, order)
	putF64(buf[115:123], e.OmegaRad, order)
	putF64(buf[124:132], e.I0Rad, order)
	putF32(buf[133:137], e.OmegaDotRadS/piF32, order)
	putF32(buf[138:142], e.IDotRadS/piF32, order)
	putF32(buf[143:147], e.URAM/0.1, order)
	putU16(buf[148:150], e.SvHealth, order)
	putU16(buf[151:153], e.Uint2, order)
	return GPSEphemerisSize, nil
}

func DecodeGPSEphemeris(bigEndian bool, buf []byte) (*GPSEphemeris, error) {
	if len(buf) < GPSEphemerisSize {
		return nil, &ErrNotEnoughBytes{Need: GPSEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	return &GPSEphemeris{
		SvPrn:          buf[0],
		Toe:            getU16(buf[1:3], order),
		Tow:            getI32(buf[4:8], order),
		Toc:            getI32(buf[9:13], order),
		Tgd:            getF32(buf[14:18], order),
		Iodc:           getI32(buf[19:23], order),
		ClockDriftRate: getF32(buf[24:28], order),
		ClockDrift:     getF32(buf[29:33], order),
		ClockOffset:    getF32(buf[34:38], order),
		Iode:           getI32(buf[39:43], order),
		DeltaNRadS:     getF32(buf[44:48], order) * piF32,
		M0Rad:          getF64(buf[49:57], order),
		E:              getF64(buf[58:66], order),
		SqrtA:          getF64(buf[67:75], order),
		Cic:            getF32(buf[76:80], order),
		Crc:            getF32(buf[81:85], order),
		Cis:            getF32(buf[86:90], order),
		Crs:            getF32(buf[91:95], order),
		Cuc:            getF32(buf[96:100], order),
		Cus:            getF32(buf[101:105], order),
		Omega0Rad:      getF64(buf[106:114], order),
		OmegaRad:       getF64(buf[115:123], order),
		I0Rad:          getF64(buf[124:132], order),
		OmegaDotRadS:   getF32(buf[133:137], order) * piF32,
		IDotRadS:       getF32(buf[138:142], order) * piF32,
		URAM:           getF32(buf[143:147], order) * 0.1,
		SvHealth:       getU16(buf[148:150], order),
		Uint2:          getU16(buf[151:153], order),
	}, nil
}

// GalEphemeris is the 154-byte Galileo F/I-NAV ephemeris frame, grounded
// on original_source/binex/src/message/record/ephemeris/galileo.rs.
type GalEphemeris struct {
	SvPrn            uint8
	ToeWeek          uint16
	Tow              int32
	ToeS             int32
	BgdE5aE1S        float32
	BgdE5bE1S        float32
	Iodnav           int32
	ClockDriftRate   float32
	ClockDrift       float32
	ClockOffset      float32
	DeltaNSemiCircS  float32
	M0Rad            float64
	E                float64
	SqrtA            float64
	Cic              float32
	Crc              float32
	Cis              float32
	Crs              float32
	Cuc              float32
	Cus              float32
	Omega0Rad        float64
	OmegaRad         float64
	I0Rad            float64
	OmegaDotSemiCirc float32
	IDotSemiCircS    float32
	Sisa             float32
	SvHealth         uint16
	Source           uint16
}

const GalEphemerisSize = 154

func (e *GalEphemeris) isRecord() {}

func (e *GalEphemeris) EncodingSize() int { return GalEphemerisSize }

func (e *GalEphemeris) Encode(bigEndian bool, buf []byte) (int, error) {
	if len(buf) < GalEphemerisSize {
		return 0, &ErrNotEnoughBytes{Need: GalEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	buf[0] = e.SvPrn
	putU16(buf[1:3], e.ToeWeek, order)
	putI32(buf[4:8], e.Tow, order)
	putI32(buf[9:13], e.ToeS, order)
	putF32(buf[14:18], e.BgdE5aE1S, order)
	putF32(buf[19:23], e.BgdE5bE1S, order)
	putI32(buf[24:28], e.Iodnav, order)
	putF32(buf[29:33], e.ClockDriftRate, order)
	putF32(buf[34:38], e.ClockDrift, order)
	putF32(buf[39:43], e.ClockOffset, order)
	putF32(buf[44:48], e.DeltaNSemiCircS, order)
	putF64(buf[49:57], e.M0Rad, order)
	putF64(buf[58:66], e.E, order)
	putF64(buf[67:75], e.SqrtA, order)
	putF32(buf[76:80], e.Cic, order)
	putF32(buf[81:85], e.Crc, order)
	putF32(buf[86:90], e.Cis, order)
	putF32(buf[91:95], e.Crs, order)
	putF32(buf[96:100], e.Cuc, order)
	putF32(buf[101:105], e.Cus, order)
	putF64(buf[106:114], e.Omega0Rad, order)
	putF64(buf[115:123], e.OmegaRad, order)
	putF64(buf[124:132], e.I0Rad, order)
	putF32(buf[133:137], e.OmegaDotSemiCirc, order)
	putF32(buf[138:142], e.IDotSemiCircS, order)
	putF32(buf[143:147], e.Sisa, order)
	putU16(buf[148:150], e.SvHealth, order)
	putU16(buf[151:153], e.Source, order)
	return GalEphemerisSize, nil
}

func DecodeGalEphemeris(bigEndian bool, buf []byte) (*GalEphemeris, error) {
	if len(buf) < GalEphemerisSize {
		return nil, &ErrNotEnoughBytes{Need: GalEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	return &GalEphemeris{
		SvPrn:            buf[0],
		ToeWeek:          getU16(buf[1:3], order),
		Tow:              getI32(buf[4:8], order),
		ToeS:             getI32(buf[9:13], order),
		BgdE5aE1S:        getF32(buf[14:18], order),
		BgdE5bE1S:        getF32(buf[19:23], order),
		Iodnav:           getI32(buf[24:28], order),
		ClockDriftRate:   getF32(buf[29:33], order),
		ClockDrift:       getF32(buf[34:38], order),
		ClockOffset:      getF32(buf[39:43], order),
		DeltaNSemiCircS:  getF32(buf[44:48], order),
		M0Rad:            getF64(buf[49:57], order),
		E:                getF64(buf[58:66], order),
		SqrtA:            getF64(buf[67:75], order),
		Cic:              getF32(buf[76:80], order),
		Crc:              getF32(buf[81:85], order),
		Cis:              getF32(buf[86:90], order),
		Crs:              getF32(buf[91:95], order),
		Cuc:              getF32(buf[96:100], order),
		Cus:              getF32(buf[101:105], order),
		Omega0Rad:        getF64(buf[106:114], order),
		OmegaRad:         getF64(buf[115:123], order),
		I0Rad:            getF64(buf[124:132], order),
		OmegaDotSemiCirc: getF32(buf[133:137], order),
		IDotSemiCircS:    getF32(buf[138:142], order),
		Sisa:             getF32(buf[143:147], order),
		SvHealth:         getU16(buf[148:150], order),
		Source:           getU16(buf[151:153], order),
	}, nil
}

// GlonassEphemeris and SBASEphemeris have no byte-layout reference in the
// retrieved material; they are modelled on the same fixed-size,
// offset-separated shape the GPS/Galileo frames use (spec.md §4.7's
// "analogous layout" note), scaled down to the smaller Glonass/SBAS
// broadcast parameter set.
type GlonassEphemeris struct {
	SvSlot      uint8
	Tk          int32
	X, Y, Z     float64
	Vx, Vy, Vz  float64
	Ax, Ay, Az  float32
	ClockOffset float32
	FreqNum     int8
	Health      uint8
}

const GlonassEphemerisSize = 1 + 4 + 8*6 + 4*3 + 4 + 1 + 1 // 71

func (e *GlonassEphemeris) isRecord() {}

func (e *GlonassEphemeris) EncodingSize() int { return GlonassEphemerisSize }

func (e *GlonassEphemeris) Encode(bigEndian bool, buf []byte) (int, error) {
	if len(buf) < GlonassEphemerisSize {
		return 0, &ErrNotEnoughBytes{Need: GlonassEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	p := 0
	buf[p] = e.SvSlot
	p++
	putI32(buf[p:p+4], e.Tk, order)
	p += 4
	for _, v := range []float64{e.X, e.Y, e.Z, e.Vx, e.Vy, e.Vz} {
		putF64(buf[p:p+8], v, order)
		p += 8
	}
	for _, v := range []float32{e.Ax, e.Ay, e.Az, e.ClockOffset} {
		putF32(buf[p:p+4], v, order)
		p += 4
	}
	buf[p] = byte(e.FreqNum)
	p++
	buf[p] = e.Health
	p++
	return p, nil
}

func DecodeGlonassEphemeris(bigEndian bool, buf []byte) (*GlonassEphemeris, error) {
	if len(buf) < GlonassEphemerisSize {
		return nil, &ErrNotEnoughBytes{Need: GlonassEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	p := 0
	e := &GlonassEphemeris{SvSlot: buf[p]}
	p++
	e.Tk = getI32(buf[p:p+4], order)
	p += 4
	vals := make([]float64, 6)
	for i := range vals {
		vals[i] = getF64(buf[p:p+8], order)
		p += 8
	}
	e.X, e.Y, e.Z, e.Vx, e.Vy, e.Vz = vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	fvals := make([]float32, 4)
	for i := range fvals {
		fvals[i] = getF32(buf[p:p+4], order)
		p += 4
	}
	e.Ax, e.Ay, e.Az, e.ClockOffset = fvals[0], fvals[1], fvals[2], fvals[3]
	e.FreqNum = int8(buf[p])
	p++
	e.Health = buf[p]
	p++
	return e, nil
}

// SBASEphemeris mirrors the Glonass tabular-state shape (SBAS broadcasts
// position/velocity/acceleration rather than Keplerian elements, like
// Glonass) plus a clock rate term.
type SBASEphemeris struct {
	SvPrn          uint8
	Tk             int32
	X, Y, Z        float64
	Vx, Vy, Vz     float64
	Ax, Ay, Az     float32
	ClockOffset    float32
	ClockDriftRate float32
	Health         uint8
}

const SBASEphemerisSize = 1 + 4 + 8*6 + 4*3 + 4 + 4 + 1 // 74

func (e *SBASEphemeris) isRecord() {}

func (e *SBASEphemeris) EncodingSize() int { return SBASEphemerisSize }

func (e *SBASEphemeris) Encode(bigEndian bool, buf []byte) (int, error) {
	if len(buf) < SBASEphemerisSize {
		return 0, &ErrNotEnoughBytes{Need: SBASEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	p := 0
	buf[p] = e.SvPrn
	p++
	putI32(buf[p:p+4], e.Tk, order)
	p += 4
	for _, v := range []float64{e.X, e.Y, e.Z, e.Vx, e.Vy, e.Vz} {
		putF64(buf[p:p+8], v, order)
		p += 8
	}
	for _, v := range []float32{e.Ax, e.Ay, e.Az, e.ClockOffset, e.ClockDriftRate} {
		putF32(buf[p:p+4], v, order)
		p += 4
	}
	buf[p] = e.Health
	p++
	return p, nil
}

func DecodeSBASEphemeris(bigEndian bool, buf []byte) (*SBASEphemeris, error) {
	if len(buf) < SBASEphemerisSize {
		return nil, &ErrNotEnoughBytes{Need: SBASEphemerisSize, Got: len(buf)}
	}
	order := orderOf(bigEndian)
	p := 0
	e := &SBASEphemeris{SvPrn: buf[p]}
	p++
	e.Tk = getI32(buf[p:p+4], order)
	p += 4
	vals := make([]float64, 6)
	for i := range vals {
		vals[i] = getF64(buf[p:p+8], order)
		p += 8
	}
	e.X, e.Y, e.Z, e.Vx, e.Vy, e.Vz = vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	fvals := make([]float32, 5)
	for i := range fvals {
		fvals[i] = getF32(buf[p:p+4], order)
		p += 4
	}
	e.Ax, e.Ay, e.Az, e.ClockOffset, e.ClockDriftRate = fvals[0], fvals[1], fvals[2], fvals[3], fvals[4]
	e.Health = buf[p]
	p++
	return e, nil
}
