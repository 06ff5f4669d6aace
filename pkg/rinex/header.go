package rinex

import (
	"bufio"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)


// Coord is a geocentric XYZ coordinate, in metres.
type Coord struct{ X, Y, Z float64 }

// CoordNEU is a North/East/Up offset, in metres.
type CoordNEU struct{ N, E, Up float64 }

// IonosphericCorr carries a "IONOSPHERIC CORR" header entry (Klobuchar or
// NeQuick coefficients, carried opaquely: no almanac arithmetic is
// performed on them by this package per spec.md §1 Non-goals).
type IonosphericCorr struct {
	Kind   string // "GPSA", "GPSB", "GAL ", "BDSA", "BDSB", ...
	Params [4]float64
}

// TimeSystemCorr carries a "TIME SYSTEM CORR" header entry.
type TimeSystemCorr struct {
	Kind               string // "GPUT", "GLUT", "GAUT", ...
	A0, A1             float64
	ReferenceTime      int64
	ReferenceWeek      int
}

// PhaseShift carries a "SYS / PHASE SHIFT" header entry.
type PhaseShift struct {
	Constellation gnss.Constellation
	Observable    string
	Correction    float64
	SVs           []gnss.SV
}

// GlonassSlot pairs a Glonass SV with its FDMA channel offset.
type GlonassSlot struct {
	SV      gnss.SV
	Channel int8
}

// Header holds the fields common to every RINEX format (spec.md §4.3).
// Format-specific parsers embed this and add their own extension fields.
type Header struct {
	Version       float64
	FileType      string // "O", "N", "M", "C", ...
	Constellation gnss.Constellation

	Pgm, RunBy, Date string
	Comments          []string

	MarkerName, MarkerNumber, MarkerType string
	Observer, Agency                     string
	ReceiverNumber, ReceiverType, ReceiverVersion string
	AntennaNumber, AntennaType                    string
	Position                                      Coord
	AntennaDelta                                  CoordNEU

	ObsTypes map[gnss.Constellation][]gnss.Observable

	SignalStrengthUnit string
	Interval           float64
	TimeOfFirstObs     time.Time
	TimeOfLastObs      time.Time
	LeapSeconds        int
	NSatellites        int

	PhaseShifts       []PhaseShift
	GlonassSlots      []GlonassSlot
	IonosphericCorrs  []IonosphericCorr
	TimeSystemCorrs   []TimeSystemCorr

	// CrinexVersion is non-empty when "CRINEX VERS / TYPE" was seen: the
	// body that follows is Hatanaka-compressed (spec.md §4.3 invariant).
	CrinexVersion string
	CrinexProg    string
	CrinexDate    string

	labels []string
}

// headerScanner is the shared line-oriented, state-free-between-lines
// reader used by every per-format header parser (spec.md §9: "model as a
// small state object... not as inheritance").
type headerScanner struct {
	sc      *bufio.Scanner
	lineNum int
}

func newHeaderScanner(sc *bufio.Scanner) *headerScanner {
	return &headerScanner{sc: sc}
}

// parseCommon reads lines until "END OF HEADER" (inclusive), filling in
// every field this package recognises as common across formats. unknown
// is called for every label not handled here, so format-specific parsers
// can intercept their own extension labels before the default
// "unrecognised label kept as a plain label" fallback.
func (hs *headerScanner) parseCommon(hdr *Header, unknown func(val, key string) (handled bool, err error)) error {
	hdr.ObsTypes = map[gnss.Constellation][]gnss.Observable{}
	rememberSys := ""
	const maxLines = 2000

	for hs.sc.Scan() {
		hs.lineNum++
		line := hs.sc.Text()
		if hs.lineNum > maxLines {
			return fmt.Errorf("rinex: header exceeds %d lines without END OF HEADER", maxLines)
		}
		if len(line) < 60 {
			if strings.TrimSpace(line) == "" {
				continue
			}
			// short lines with a label-only trailing comment are tolerated
		}

		var val, key string
		if len(line) >= 60 {
			val, key = line[:60], strings.TrimSpace(line[60:])
		} else {
			val, key = line, ""
		}
		hdr.labels = append(hdr.labels, key)

		switch key {
		case "RINEX VERSION / TYPE":
			v, err := strconv.ParseFloat(strings.TrimSpace(val[:20]), 64)
			if err != nil {
				return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: err}
			}
			hdr.Version = v
			hdr.FileType = strings.TrimSpace(val[20:21])
			if sysCode := strings.TrimSpace(val[40:41]); sysCode != "" {
				sys, err := gnss.ParseConstellation(sysCode)
				if err != nil {
					return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: err}
				}
				hdr.Constellation = sys
			}
		case "PGM / RUN BY / DATE":
			hdr.Pgm = strings.TrimSpace(val[:20])
			hdr.RunBy = strings.TrimSpace(val[20:40])
			hdr.Date = strings.TrimSpace(val[40:])
		case "COMMENT":
			hdr.Comments = append(hdr.Comments, strings.TrimRight(val, " "))
		case "MARKER NAME":
			hdr.MarkerName = strings.TrimSpace(val)
		case "MARKER NUMBER":
			hdr.MarkerNumber = strings.TrimSpace(val[:20])
		case "MARKER TYPE":
			hdr.MarkerType = strings.TrimSpace(val[:20])
		case "OBSERVER / AGENCY":
			hdr.Observer = strings.TrimSpace(val[:20])
			hdr.Agency = strings.TrimSpace(val[20:])
		case "REC # / TYPE / VERS":
			hdr.ReceiverNumber = strings.TrimSpace(val[:20])
			hdr.ReceiverType = strings.TrimSpace(val[20:40])
			hdr.ReceiverVersion = strings.TrimSpace(val[40:])
		case "ANT # / TYPE":
			hdr.AntennaNumber = strings.TrimSpace(val[:20])
			hdr.AntennaType = strings.TrimSpace(val[20:40])
		case "APPROX POSITION XYZ":
			pos := strings.Fields(val)
			if len(pos) != 3 {
				return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: fmt.Errorf("expected 3 fields, got %d", len(pos))}
			}
			hdr.Position.X, _ = strconv.ParseFloat(pos[0], 64)
			hdr.Position.Y, _ = strconv.ParseFloat(pos[1], 64)
			hdr.Position.Z, _ = strconv.ParseFloat(pos[2], 64)
		case "ANTENNA: DELTA H/E/N":
			d := strings.Fields(val)
			if len(d) != 3 {
				return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: fmt.Errorf("expected 3 fields, got %d", len(d))}
			}
			hdr.AntennaDelta.Up, _ = strconv.ParseFloat(d[0], 64)
			hdr.AntennaDelta.E, _ = strconv.ParseFloat(d[1], 64)
			hdr.AntennaDelta.N, _ = strconv.ParseFloat(d[2], 64)
		case "SYS / # / OBS TYPES":
			sysStr := val[:1]
			if sysStr == " " {
				sysStr = rememberSys
			} else {
				rememberSys = sysStr
			}
			var sys gnss.Constellation
			if sysStr == "D" {
				// DORIS declares its observables under "D", which is not a
				// GNSS constellation; they are filed under Mixed.
				sys = gnss.Mixed
			} else {
				var err error
				sys, err = gnss.ParseConstellation(sysStr)
				if err != nil {
					return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: err}
				}
			}
			for _, code := range strings.Fields(val[7:]) {
				obs, err := gnss.ParseObservable(code)
				if err != nil {
					return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: err}
				}
				hdr.ObsTypes[sys] = append(hdr.ObsTypes[sys], obs)
			}
		case "# / TYPES OF OBSERV":
			sys := hdr.Constellation
			for _, code := range strings.Fields(val[7:]) {
				obs, err := gnss.ParseObservable(code)
				if err != nil {
					return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: err}
				}
				hdr.ObsTypes[sys] = append(hdr.ObsTypes[sys], obs)
			}
		case "SIGNAL STRENGTH UNIT":
			hdr.SignalStrengthUnit = strings.TrimSpace(val[:20])
		case "INTERVAL":
			v, err := strconv.ParseFloat(strings.TrimSpace(val[:10]), 64)
			if err == nil {
				hdr.Interval = v
			}
		case "TIME OF FIRST OBS":
			t, err := parseEpochTimeField(val[:43])
			if err != nil {
				return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: err}
			}
			hdr.TimeOfFirstObs = t
		case "TIME OF LAST OBS":
			t, err := parseEpochTimeField(val[:43])
			if err != nil {
				return &MalformedHeaderError{Line: hs.lineNum, Label: key, Err: err}
			}
			hdr.TimeOfLastObs = t
		case "LEAP SECONDS":
			n, err := strconv.Atoi(strings.TrimSpace(val[:6]))
			if err == nil {
				hdr.LeapSeconds = n
			}
		case "# OF SATELLITES":
			n, err := strconv.Atoi(strings.TrimSpace(val[:6]))
			if err == nil {
				hdr.NSatellites = n
			}
		case "SYS / PHASE SHIFT":
			ps, err := parsePhaseShift(val)
			if err == nil {
				hdr.PhaseShifts = append(hdr.PhaseShifts, ps)
			}
		case "GLONASS SLOT / FRQ #":
			hdr.GlonassSlots = append(hdr.GlonassSlots, parseGlonassSlots(val)...)
		case "IONOSPHERIC CORR":
			hdr.IonosphericCorrs = append(hdr.IonosphericCorrs, parseIonoCorr(val))
		case "TIME SYSTEM CORR":
			hdr.TimeSystemCorrs = append(hdr.TimeSystemCorrs, parseTimeSystemCorr(val))
		case "CRINEX VERS / TYPE":
			hdr.CrinexVersion = strings.TrimSpace(val[:20])
		case "CRINEX PROG / DATE":
			hdr.CrinexProg = strings.TrimSpace(val[:20])
			hdr.CrinexDate = strings.TrimSpace(val[20:])
		case "END OF HEADER":
			return nil
		case "":
			// unlabeled short/blank line, ignore
		default:
			if unknown != nil {
				handled, err := unknown(val, key)
				if err != nil {
					return err
				}
				if handled {
					continue
				}
			}
			hdr.Comments = append(hdr.Comments, fmt.Sprintf("(unhandled %s) %s", key, strings.TrimRight(val, " ")))
		}
	}

	if err := hs.sc.Err(); err != nil {
		return err
	}
	return ErrNoHeader
}

// parseEpochTimeField parses the whitespace-separated "year month day hour
// minute second[.fraction]" fields used by "TIME OF FIRST/LAST OBS" and by
// RINEX-3/4 epoch lines. Fixed-width column arithmetic is brittle here
// because the fractional-seconds field's width varies by RINEX sub-version;
// splitting on whitespace sidesteps that entirely.
func parseEpochTimeField(s string) (time.Time, error) {
	f := strings.Fields(s)
	if len(f) < 6 {
		return time.Time{}, fmt.Errorf("malformed epoch time field %q", s)
	}
	year, err := strconv.Atoi(f[0])
	if err != nil {
		return time.Time{}, err
	}
	if year < 100 {
		if year < 80 {
			year += 2000
		} else {
			year += 1900
		}
	}
	month, err := strconv.Atoi(f[1])
	if err != nil {
		return time.Time{}, err
	}
	day, err := strconv.Atoi(f[2])
	if err != nil {
		return time.Time{}, err
	}
	hour, err := strconv.Atoi(f[3])
	if err != nil {
		return time.Time{}, err
	}
	minute, err := strconv.Atoi(f[4])
	if err != nil {
		return time.Time{}, err
	}
	secFloat, err := strconv.ParseFloat(f[5], 64)
	if err != nil {
		return time.Time{}, err
	}
	sec := int(secFloat)
	nsec := int((secFloat - float64(sec)) * 1e9)
	return time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.UTC), nil
}

func parsePhaseShift(val string) (PhaseShift, error) {
	sys, err := gnss.ParseConstellation(val[:1])
	if err != nil {
		return PhaseShift{}, err
	}
	fields := strings.Fields(val[1:])
	if len(fields) < 1 {
		return PhaseShift{}, fmt.Errorf("empty SYS / PHASE SHIFT line")
	}
	ps := PhaseShift{Constellation: sys, Observable: fields[0]}
	if len(fields) >= 2 {
		ps.Correction, _ = strconv.ParseFloat(fields[1], 64)
	}
	for _, f := range fields[2:] {
		if sv, err := gnss.ParseSV(f); err == nil {
			ps.SVs = append(ps.SVs, sv)
		}
	}
	return ps, nil
}

func parseGlonassSlots(val string) []GlonassSlot {
	fields := strings.Fields(val)
	var slots []GlonassSlot
	for i := 1; i+1 < len(fields); i += 2 {
		sv, err := gnss.ParseSV(fields[i])
		if err != nil {
			continue
		}
		ch, err := strconv.Atoi(fields[i+1])
		if err != nil {
			continue
		}
		slots = append(slots, GlonassSlot{SV: sv, Channel: int8(ch)})
	}
	return slots
}

func parseIonoCorr(val string) IonosphericCorr {
	fields := strings.Fields(val)
	corr := IonosphericCorr{}
	if len(fields) > 0 {
		corr.Kind = fields[0]
	}
	for i := 0; i < 4 && i+1 < len(fields); i++ {
		corr.Params[i], _ = strconv.ParseFloat(strings.Replace(fields[i+1], "D", "E", 1), 64)
	}
	return corr
}

func parseTimeSystemCorr(val string) TimeSystemCorr {
	fields := strings.Fields(val)
	corr := TimeSystemCorr{}
	if len(fields) > 0 {
		corr.Kind = fields[0]
	}
	if len(fields) > 1 {
		corr.A0, _ = strconv.ParseFloat(strings.Replace(fields[1], "D", "E", 1), 64)
	}
	if len(fields) > 2 {
		corr.A1, _ = strconv.ParseFloat(strings.Replace(fields[2], "D", "E", 1), 64)
	}
	if len(fields) > 3 {
		ref, _ := strconv.ParseInt(fields[3], 10, 64)
		corr.ReferenceTime = ref
	}
	if len(fields) > 4 {
		week, _ := strconv.Atoi(fields[4])
		corr.ReferenceWeek = week
	}
	return corr
}

// writeLabeled right-pads payload to 60 columns and appends the 20-column
// label, matching the teacher's format() convention byte-for-byte.
func writeLabeled(w *bufio.Writer, payload, label string) error {
	if len(payload) > 60 {
		payload = payload[:60]
	}
	line := fmt.Sprintf("%-60s%-20s", payload, label)
	_, err := w.WriteString(line + "\n")
	return err
}

// FormatCommon writes, in canonical order and ending with "END OF HEADER",
// the version line, PGM / RUN BY / DATE, comments, marker name,
// observer/agency, receiver, antenna, approximate position, antenna delta,
// the observable table (when obsTypeLabel is non-empty), interval, time of
// first/last observation and leap seconds. Marker number and type, signal
// strength unit, number of satellites, phase shifts, Glonass slots,
// ionospheric and time-system corrections and the CRINEX lines are parsed
// by parseCommon but not written here.
func (hdr *Header) FormatCommon(w *bufio.Writer, obsTypeLabel string) error {
	typeCode := hdr.Constellation.Abbr()
	if err := writeLabeled(w, fmt.Sprintf("%9.2f%11s%1s%19s%1s", hdr.Version, "", hdr.FileType, "", typeCode), "RINEX VERSION / TYPE"); err != nil {
		return err
	}
	if err := writeLabeled(w, fmt.Sprintf("%-20s%-20s%-20s", hdr.Pgm, hdr.RunBy, hdr.Date), "PGM / RUN BY / DATE"); err != nil {
		return err
	}
	for _, c := range hdr.Comments {
		if err := writeLabeled(w, c, "COMMENT"); err != nil {
			return err
		}
	}
	if hdr.MarkerName != "" {
		if err := writeLabeled(w, hdr.MarkerName, "MARKER NAME"); err != nil {
			return err
		}
	}
	if hdr.Observer != "" || hdr.Agency != "" {
		if err := writeLabeled(w, fmt.Sprintf("%-20s%-40s", hdr.Observer, hdr.Agency), "OBSERVER / AGENCY"); err != nil {
			return err
		}
	}
	if hdr.ReceiverNumber != "" || hdr.ReceiverType != "" {
		if err := writeLabeled(w, fmt.Sprintf("%-20s%-20s%-20s", hdr.ReceiverNumber, hdr.ReceiverType, hdr.ReceiverVersion), "REC # / TYPE / VERS"); err != nil {
			return err
		}
	}
	if hdr.AntennaNumber != "" || hdr.AntennaType != "" {
		if err := writeLabeled(w, fmt.Sprintf("%-20s%-20s", hdr.AntennaNumber, hdr.AntennaType), "ANT # / TYPE"); err != nil {
			return err
		}
	}
	if hdr.Position != (Coord{}) {
		if err := writeLabeled(w, fmt.Sprintf("%14.4f%14.4f%14.4f", hdr.Position.X, hdr.Position.Y, hdr.Position.Z), "APPROX POSITION XYZ"); err != nil {
			return err
		}
	}
	if hdr.AntennaDelta != (CoordNEU{}) {
		if err := writeLabeled(w, fmt.Sprintf("%14.4f%14.4f%14.4f", hdr.AntennaDelta.Up, hdr.AntennaDelta.E, hdr.AntennaDelta.N), "ANTENNA: DELTA H/E/N"); err != nil {
			return err
		}
	}
	if obsTypeLabel != "" {
		if err := hdr.formatObsTypes(w, obsTypeLabel); err != nil {
			return err
		}
	}
	if hdr.Interval != 0 {
		if err := writeLabeled(w, fmt.Sprintf("%10.3f", hdr.Interval), "INTERVAL"); err != nil {
			return err
		}
	}
	if !hdr.TimeOfFirstObs.IsZero() {
		if err := writeLabeled(w, formatEpochTimeField(hdr.TimeOfFirstObs)+"     "+timeScaleTag(hdr.Constellation), "TIME OF FIRST OBS"); err != nil {
			return err
		}
	}
	if !hdr.TimeOfLastObs.IsZero() {
		if err := writeLabeled(w, formatEpochTimeField(hdr.TimeOfLastObs)+"     "+timeScaleTag(hdr.Constellation), "TIME OF LAST OBS"); err != nil {
			return err
		}
	}
	if hdr.LeapSeconds != 0 {
		if err := writeLabeled(w, fmt.Sprintf("%6d", hdr.LeapSeconds), "LEAP SECONDS"); err != nil {
			return err
		}
	}
	if err := writeLabeled(w, "", "END OF HEADER"); err != nil {
		return err
	}
	return w.Flush()
}

func timeScaleTag(c gnss.Constellation) string {
	switch c {
	case gnss.Glonass:
		return "GLO"
	case gnss.Galileo:
		return "GAL"
	case gnss.BeiDou:
		return "BDS"
	default:
		return "GPS"
	}
}

// formatEpochTimeField renders t in the fixed-width "TIME OF FIRST/LAST OBS"
// form: five I6 integer fields followed by an F13.7 seconds field.
func formatEpochTimeField(t time.Time) string {
	sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return fmt.Sprintf("%6d%6d%6d%6d%6d%13.7f", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), sec)
}

func (hdr *Header) formatObsTypes(w *bufio.Writer, label string) error {
	syss := make([]gnss.Constellation, 0, len(hdr.ObsTypes))
	for sys := range hdr.ObsTypes {
		syss = append(syss, sys)
	}
	sort.Slice(syss, func(i, j int) bool { return syss[i] < syss[j] })

	for _, sys := range syss {
		obsList := hdr.ObsTypes[sys]
		codes := make([]string, len(obsList))
		for i, o := range obsList {
			codes[i] = o.String()
		}

		const perLine = 13
		first := true
		for len(codes) > 0 {
			n := perLine
			if n > len(codes) {
				n = len(codes)
			}
			chunk := codes[:n]
			codes = codes[n:]

			var payload string
			if first {
				payload = fmt.Sprintf("%1s  %3d", sys.Abbr(), len(obsList))
				first = false
			} else {
				payload = "      "
			}
			for _, c := range chunk {
				payload += fmt.Sprintf(" %3s", c)
			}
			if err := writeLabeled(w, payload, label); err != nil {
				return err
			}
		}
	}
	return nil
}
