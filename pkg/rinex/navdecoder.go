package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// NavDecoder streams ephemeris entries out of a Navigation RINEX file, one
// at a time, the same way ObsDecoder streams epochs.
type NavDecoder struct {
	Header Header

	sc      *bufio.Scanner
	lineNum int
	eph     Eph
	err     error
}

// NewNavDecoder creates a decoder for RINEX Navigation data.
func NewNavDecoder(r io.Reader) (*NavDecoder, error) {
	dec := &NavDecoder{sc: bufio.NewScanner(r)}
	dec.sc.Buffer(make([]byte, 0, 4096), 1<<20)
	hs := newHeaderScanner(dec.sc)
	if err := hs.parseCommon(&dec.Header, nil); err != nil {
		dec.err = err
		return dec, err
	}
	dec.lineNum = hs.lineNum
	return dec, nil
}

func (dec *NavDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *NavDecoder) Eph() Eph { return dec.eph }

func (dec *NavDecoder) scan() (string, bool) {
	if !dec.sc.Scan() {
		return "", false
	}
	dec.lineNum++
	return dec.sc.Text(), true
}

// NextEph decodes the next ephemeris entry.
func (dec *NavDecoder) NextEph() bool {
	for {
		line, ok := dec.scan()
		if !ok {
			if err := dec.sc.Err(); err != nil {
				dec.err = err
			}
			return false
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			// v4 "> EPH <sys><prn> <msgtype>" record descriptor: the
			// broadcast data itself still follows on the next lines in the
			// same fixed format, so we only need to skip this header line.
			continue
		}

		sv, sysErr := dec.parseSVField(line)
		if sysErr != nil {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: sysErr}
			return false
		}
		toc, err := parseEpochTimeField(line[4:23])
		if err != nil {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
			return false
		}
		clk, err := parseNavFloats(line, 23)
		if err != nil {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
			return false
		}

		var contLines int
		switch sv.Constellation {
		case gnss.Glonass, gnss.SBAS:
			contLines = 3
		default:
			contLines = 7
		}
		cont := make([][4]float64, contLines)
		for i := 0; i < contLines; i++ {
			cl, ok := dec.scan()
			if !ok {
				dec.err = io.EOF
				dec.eph = nil
				return false
			}
			f, err := parseNavFloats(cl, 4)
			if err != nil {
				dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
				return false
			}
			cont[i] = f
		}

		epoch := gnss.NewEpoch(toc, epochScale(sv.Constellation))
		switch sv.Constellation {
		case gnss.Glonass:
			dec.eph = &EphGlonass{
				SV: sv, TOC: epoch,
				TauN: -clk[0], GammaN: clk[1], MessageFrameTime: clk[2],
				X: cont[0][0], VX: cont[0][1], AX: cont[0][2], Health: cont[0][3],
				Y: cont[1][0], VY: cont[1][1], AY: cont[1][2], FreqNum: cont[1][3],
				Z: cont[2][0], VZ: cont[2][1], AZ: cont[2][2], AgeOfOperation: cont[2][3],
			}
		case gnss.SBAS:
			dec.eph = &EphSBAS{
				SV: sv, TOC: epoch,
				ClockBias: clk[0], RelativeFreqBias: clk[1], MessageTransmissionTime: clk[2],
				X: cont[0][0], VX: cont[0][1], AX: cont[0][2], Health: cont[0][3],
				Y: cont[1][0], VY: cont[1][1], AY: cont[1][2], URA: cont[1][3],
				Z: cont[2][0], VZ: cont[2][1], AZ: cont[2][2], IODN: cont[2][3],
			}
		default:
			dec.eph = &EphKeplerian{
				SV: sv, TOC: epoch,
				ClockBias: clk[0], ClockDrift: clk[1], ClockDriftRate: clk[2],
				IODE: cont[0][0], Crs: cont[0][1], DeltaN: cont[0][2], M0: cont[0][3],
				Cuc: cont[1][0], Ecc: cont[1][1], Cus: cont[1][2], SqrtA: cont[1][3],
				Toe: cont[2][0], Cic: cont[2][1], Omega0: cont[2][2], Cis: cont[2][3],
				I0: cont[3][0], Crc: cont[3][1], Omega: cont[3][2], OmegaDot: cont[3][3],
				IDOT: cont[4][0], Codes: cont[4][1], ToeWeek: cont[4][2], L2PFlag: cont[4][3],
				URA: cont[5][0], Health: cont[5][1], TGD: cont[5][2], IODC: cont[5][3],
				TransmissionTime: cont[6][0], FitInterval: cont[6][1],
			}
		}
		return true
	}
}

func (dec *NavDecoder) parseSVField(line string) (gnss.SV, error) {
	if len(line) < 3 {
		return gnss.SV{}, fmt.Errorf("short ephemeris line %q", line)
	}
	if line[0] >= '0' && line[0] <= '9' {
		// RINEX-2 single-constellation file: bare 2-digit PRN.
		return parseSVv2(" "+line[0:2], dec.Header.Constellation)
	}
	return gnss.ParseSV(line[0:3])
}

// DecodeNavigation reads a complete Navigation RINEX stream into memory.
func DecodeNavigation(r io.Reader) (*NavRecord, error) {
	dec, err := NewNavDecoder(r)
	if err != nil {
		return nil, err
	}
	rec := &NavRecord{Header: dec.Header}
	for dec.NextEph() {
		rec.Ephs = append(rec.Ephs, dec.Eph())
	}
	if err := dec.Err(); err != nil {
		return rec, err
	}
	return rec, nil
}
