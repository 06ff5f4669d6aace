package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// AntexHeader extends Header with the PCV-convention metadata ANTEX
// carries in place of an observable table (spec.md §3.3 ANTEX).
type AntexHeader struct {
	Header
	PcvType      string
	RefAntenna   string
}

// FrequencyPattern is one frequency's phase-centre offset and
// elevation/azimuth-dependent variation grid for a single antenna
// calibration (spec.md §3.3/§3.5 ANTEX).
type FrequencyPattern struct {
	Carrier  gnss.Carrier
	NEUOffset CoordNEU
	// NoAzi is the azimuth-independent (non-azimuth) pattern, one value
	// per elevation bin from ZenStart to ZenStop stepping by ZenStep.
	NoAzi []float64
	// Azi, when present, maps an azimuth in degrees to its per-elevation
	// pattern row.
	Azi map[float64][]float64
}

// AntennaCalibration is one "START OF ANTENNA"/"END OF ANTENNA" block: a
// single antenna type/serial (or satellite) calibration with its
// frequency patterns (spec.md §3.3 ANTEX).
type AntennaCalibration struct {
	AntennaType string
	SerialOrSV  string
	SV          *gnss.SV
	PCVType     string
	ZenStart, ZenStop, ZenStep float64
	NumFrequencies int
	ValidFrom, ValidUntil string
	Frequencies []FrequencyPattern
}

// AntexRecord is a decoded ANTEX file: a header plus a sequence of antenna
// calibrations, in file order (spec.md §3.3).
type AntexRecord struct {
	Header       AntexHeader
	Calibrations []AntennaCalibration
}

// DecodeAntex reads a complete ANTEX stream into memory.
func DecodeAntex(r io.Reader) (*AntexRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	hs := newHeaderScanner(sc)
	hdr := AntexHeader{}

	err := hs.parseCommon(&hdr.Header, func(val, key string) (bool, error) {
		switch key {
		case "PCV TYPE / REFANT":
			hdr.PcvType = strings.TrimSpace(val[:1])
			hdr.RefAntenna = strings.TrimSpace(val[20:])
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	rec := &AntexRecord{Header: hdr}
	lineNum := hs.lineNum
	var cur *AntennaCalibration
	var curFreq *FrequencyPattern

	for sc.Scan() {
		lineNum++
		line := sc.Text()
		if len(line) < 60 {
			continue
		}
		val, label := line[:60], strings.TrimSpace(line[60:])

		switch label {
		case "START OF ANTENNA":
			cur = &AntennaCalibration{}
		case "TYPE / SERIAL NO":
			if cur == nil {
				continue
			}
			cur.AntennaType = strings.TrimSpace(val[:20])
			cur.SerialOrSV = strings.TrimSpace(val[20:40])
			if sv, err := gnss.ParseSV(strings.TrimSpace(val[20:23])); err == nil {
				cur.SV = &sv
			}
		case "DAZI":
			// azimuth step recorded implicitly via Azi map keys; value unused
		case "ZEN1 / ZEN2 / DZEN":
			if cur == nil {
				continue
			}
			f := strings.Fields(val)
			if len(f) >= 3 {
				cur.ZenStart, _ = strconv.ParseFloat(f[0], 64)
				cur.ZenStop, _ = strconv.ParseFloat(f[1], 64)
				cur.ZenStep, _ = strconv.ParseFloat(f[2], 64)
			}
		case "# OF FREQUENCIES":
			if cur == nil {
				continue
			}
			n, _ := strconv.Atoi(strings.TrimSpace(val[:6]))
			cur.NumFrequencies = n
		case "VALID FROM":
			if cur == nil {
				continue
			}
			cur.ValidFrom = strings.TrimSpace(val)
		case "VALID UNTIL":
			if cur == nil {
				continue
			}
			cur.ValidUntil = strings.TrimSpace(val)
		case "START OF FREQUENCY":
			if cur == nil {
				continue
			}
			code := strings.TrimSpace(val[3:6])
			fp := FrequencyPattern{Azi: map[float64][]float64{}}
			if len(code) >= 2 {
				if c, ok := carrierFromAntexCode(code); ok {
					fp.Carrier = c
				}
			}
			cur.Frequencies = append(cur.Frequencies, fp)
			curFreq = &cur.Frequencies[len(cur.Frequencies)-1]
		case "NORTH / EAST / UP":
			if curFreq == nil {
				continue
			}
			f := strings.Fields(val)
			if len(f) >= 3 {
				curFreq.NEUOffset.N, _ = strconv.ParseFloat(f[0], 64)
				curFreq.NEUOffset.E, _ = strconv.ParseFloat(f[1], 64)
				curFreq.NEUOffset.Up, _ = strconv.ParseFloat(f[2], 64)
			}
		case "END OF FREQUENCY":
			curFreq = nil
		case "END OF ANTENNA":
			if cur != nil {
				rec.Calibrations = append(rec.Calibrations, *cur)
			}
			cur = nil
		default:
			if curFreq != nil && strings.TrimSpace(val) != "" {
				parsePatternLine(val, curFreq)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return rec, err
	}
	return rec, nil
}

// parsePatternLine decodes one elevation/azimuth pattern row: an optional
// leading azimuth field (F8.1) followed by F8.2 values per elevation bin.
func parsePatternLine(val string, fp *FrequencyPattern) {
	if len(val) < 8 {
		return
	}
	aziField := strings.TrimSpace(val[:8])
	rest := val[8:]
	var row []float64
	for i := 0; i+8 <= len(rest); i += 8 {
		f := strings.TrimSpace(rest[i : i+8])
		if f == "" {
			continue
		}
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			continue
		}
		row = append(row, v)
	}
	if aziField == "" {
		fp.NoAzi = row
		return
	}
	azi, err := strconv.ParseFloat(aziField, 64)
	if err != nil {
		return
	}
	fp.Azi[azi] = row
}

func carrierFromAntexCode(code string) (gnss.Carrier, bool) {
	sys, err := gnss.ParseConstellation(code[:1])
	if err != nil {
		return 0, false
	}
	c, err := gnss.CarrierOf(sys, code[1:])
	if err != nil {
		return 0, false
	}
	return c, true
}

// EncodeAntex writes rec to w in canonical ANTEX calibration-block form.
func EncodeAntex(w io.Writer, rec *AntexRecord) error {
	bw := bufio.NewWriter(w)
	if err := rec.Header.Header.FormatCommon(bw, ""); err != nil {
		return err
	}
	for _, cal := range rec.Calibrations {
		if err := writeLabeled(bw, "", "START OF ANTENNA"); err != nil {
			return err
		}
		if err := writeLabeled(bw, fmt.Sprintf("%-20s%-20s", cal.AntennaType, cal.SerialOrSV), "TYPE / SERIAL NO"); err != nil {
			return err
		}
		if err := writeLabeled(bw, fmt.Sprintf("%6.1f%6.1f%6.1f", cal.ZenStart, cal.ZenStop, cal.ZenStep), "ZEN1 / ZEN2 / DZEN"); err != nil {
			return err
		}
		if err := writeLabeled(bw, fmt.Sprintf("%6d", cal.NumFrequencies), "# OF FREQUENCIES"); err != nil {
			return err
		}
		for _, fp := range cal.Frequencies {
			if err := writeLabeled(bw, fmt.Sprintf("   %3s", fp.Carrier.String()), "START OF FREQUENCY"); err != nil {
				return err
			}
			if err := writeLabeled(bw, fmt.Sprintf("%10.2f%10.2f%10.2f", fp.NEUOffset.N, fp.NEUOffset.E, fp.NEUOffset.Up), "NORTH / EAST / UP"); err != nil {
				return err
			}
			if len(fp.NoAzi) > 0 {
				line := fmt.Sprintf("%8s", "")
				for _, v := range fp.NoAzi {
					line += fmt.Sprintf("%8.2f", v)
				}
				if err := writeLabeled(bw, line, ""); err != nil {
					return err
				}
			}
			if err := writeLabeled(bw, "", "END OF FREQUENCY"); err != nil {
				return err
			}
		}
		if err := writeLabeled(bw, "", "END OF ANTENNA"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
