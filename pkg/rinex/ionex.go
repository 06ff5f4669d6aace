package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// IonexGrid describes one dimension of the IONEX 3-D TEC grid
// (latitude, longitude or height): start, end and step in the file's
// native units (degrees or km).
type IonexGrid struct {
	Start, End, Step float64
}

// IonexHeader extends Header with the map-grid and exponent metadata
// IONEX carries (spec.md §3.3 IONEX).
type IonexHeader struct {
	Header
	MapsInFile    int
	Exponent      int // defaults to -1 when the file omits "EXPONENT" (spec.md §9 open question)
	BaseRadius    float64
	MapDimension  int
	HgtGrid       IonexGrid
	LatGrid       IonexGrid
	LonGrid       IonexGrid
	ElevCutoff    float64
	ObservablesUsed string
	NumStations   int
	NumSatellites int
}

// TEC is one grid-point TEC value (spec.md §3.3 IONEX).
type TEC struct {
	Value float64
	RMS   *float64
}

// IonexKey identifies one TEC map entry: epoch, altitude in centimetres,
// and the grid point's latitude/longitude in millidegrees.
type IonexKey struct {
	Epoch      gnss.Epoch
	AltitudeCm int
	LatMdeg    int
	LonMdeg    int
}

// IonexRecord is a decoded IONEX file: a map from (epoch, altitude,
// lat/lon) to a TEC value, always expressed in UTC (spec.md §3.4
// invariant: "IONEX... always UTC").
type IonexRecord struct {
	Header  IonexHeader
	Maps    map[IonexKey]TEC
	epochOrder []gnss.Epoch
}

// newIonexHeader defaults Exponent to -1 when the "EXPONENT" label is
// absent, matching the reference implementation's tolerated omission
// (spec.md §9 Open Questions, decision recorded in SPEC_FULL.md).
func newIonexHeader() IonexHeader {
	return IonexHeader{Exponent: -1}
}

// DecodeIonex reads a complete IONEX stream into memory: the header grid
// spec plus every TEC map entry.
func DecodeIonex(r io.Reader) (*IonexRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	hs := newHeaderScanner(sc)
	hdr := newIonexHeader()

	err := hs.parseCommon(&hdr.Header, func(val, key string) (bool, error) {
		switch key {
		case "EXPONENT":
			n, err := strconv.Atoi(strings.TrimSpace(val[:6]))
			if err == nil {
				hdr.Exponent = n
			}
			return true, nil
		case "# OF MAPS IN FILE":
			n, _ := strconv.Atoi(strings.TrimSpace(val[:6]))
			hdr.MapsInFile = n
			return true, nil
		case "BASE RADIUS":
			v, _ := strconv.ParseFloat(strings.TrimSpace(val[:8]), 64)
			hdr.BaseRadius = v
			return true, nil
		case "MAP DIMENSION":
			n, _ := strconv.Atoi(strings.TrimSpace(val[:6]))
			hdr.MapDimension = n
			return true, nil
		case "HGT1 / HGT2 / DHGT":
			hdr.HgtGrid = parseIonexGridLine(val)
			return true, nil
		case "LAT1 / LAT2 / DLAT":
			hdr.LatGrid = parseIonexGridLine(val)
			return true, nil
		case "LON1 / LON2 / DLON":
			hdr.LonGrid = parseIonexGridLine(val)
			return true, nil
		case "ELEVATION CUTOFF":
			v, _ := strconv.ParseFloat(strings.TrimSpace(val[:8]), 64)
			hdr.ElevCutoff = v
			return true, nil
		case "OBSERVABLES USED":
			hdr.ObservablesUsed = strings.TrimSpace(val)
			return true, nil
		case "# OF STATIONS":
			n, _ := strconv.Atoi(strings.TrimSpace(val[:6]))
			hdr.NumStations = n
			return true, nil
		case "# OF SATELLITES":
			n, _ := strconv.Atoi(strings.TrimSpace(val[:6]))
			hdr.NumSatellites = n
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	rec := &IonexRecord{Header: hdr, Maps: map[IonexKey]TEC{}}
	lineNum := hs.lineNum
	var curEpoch gnss.Epoch
	var curAlt int
	inMap := false

	for sc.Scan() {
		lineNum++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		label := ""
		if len(line) >= 60 {
			label = strings.TrimSpace(line[60:])
		}
		switch {
		case strings.Contains(label, "START OF TEC MAP"):
			inMap = true
		case strings.Contains(label, "END OF TEC MAP"):
			inMap = false
		case strings.Contains(label, "START OF RMS MAP"):
			inMap = false // RMS maps are correlated to the preceding TEC map below
		case strings.Contains(label, "END OF RMS MAP"):
		case strings.Contains(label, "EPOCH OF CURRENT MAP"):
			t, err := parseEpochTimeField(line[:60])
			if err != nil {
				return rec, &MalformedEpochError{Line: lineNum, Err: err}
			}
			curEpoch = gnss.NewEpoch(t, gnss.UTC)
			rec.epochOrder = append(rec.epochOrder, curEpoch)
		case inMap && label == "LAT/LON1/LON2/DLON/H":
			curAlt = int(parseIonexRowHeader(line, rec, curEpoch, hdr, sc, &lineNum))
		}
	}
	if err := sc.Err(); err != nil {
		return rec, err
	}
	_ = curAlt
	return rec, nil
}

// parseIonexRowHeader decodes one "LAT/LON1/LON2/DLON/H" row descriptor and
// its following data lines (16 values per line, I5 fixed width, scaled by
// 10^Exponent), inserting each grid point into rec.Maps.
func parseIonexRowHeader(line string, rec *IonexRecord, epoch gnss.Epoch, hdr IonexHeader, sc *bufio.Scanner, lineNum *int) float64 {
	lat, _ := strconv.ParseFloat(strings.TrimSpace(line[2:8]), 64)
	lon1, _ := strconv.ParseFloat(strings.TrimSpace(line[8:14]), 64)
	lon2, _ := strconv.ParseFloat(strings.TrimSpace(line[14:20]), 64)
	dlon, _ := strconv.ParseFloat(strings.TrimSpace(line[20:26]), 64)
	hgt, _ := strconv.ParseFloat(strings.TrimSpace(line[26:32]), 64)

	n := 0
	if dlon != 0 {
		n = int((lon2-lon1)/dlon+0.5) + 1
	}
	scale := pow10(hdr.Exponent)

	values := make([]int, 0, n)
	for len(values) < n && sc.Scan() {
		*lineNum++
		row := sc.Text()
		for i := 0; i+5 <= len(row); i += 5 {
			field := strings.TrimSpace(row[i : i+5])
			if field == "" {
				continue
			}
			v, err := strconv.Atoi(field)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
	}

	for i, v := range values {
		lon := lon1 + float64(i)*dlon
		key := IonexKey{
			Epoch:      epoch,
			AltitudeCm: int(hgt * 1e5),
			LatMdeg:    int(lat * 1000),
			LonMdeg:    int(lon * 1000),
		}
		tec := rec.Maps[key]
		tec.Value = float64(v) * scale
		rec.Maps[key] = tec
	}
	return hgt
}

func pow10(exp int) float64 {
	v := 1.0
	if exp >= 0 {
		for i := 0; i < exp; i++ {
			v *= 10
		}
		return v
	}
	for i := 0; i < -exp; i++ {
		v /= 10
	}
	return v
}

func parseIonexGridLine(val string) IonexGrid {
	f := strings.Fields(val)
	g := IonexGrid{}
	if len(f) > 0 {
		g.Start, _ = strconv.ParseFloat(f[0], 64)
	}
	if len(f) > 1 {
		g.End, _ = strconv.ParseFloat(f[1], 64)
	}
	if len(f) > 2 {
		g.Step, _ = strconv.ParseFloat(f[2], 64)
	}
	return g
}

// EncodeIonex writes rec to w in canonical IONEX TEC-map form, one map per
// distinct epoch in rec.epochOrder, I5-fixed-width scaled integer values
// 16 per line.
func EncodeIonex(w io.Writer, rec *IonexRecord) error {
	bw := bufio.NewWriter(w)
	if err := rec.Header.Header.FormatCommon(bw, ""); err != nil {
		return err
	}
	scale := pow10(-rec.Header.Exponent)
	mapNum := 0
	for _, epoch := range rec.epochOrder {
		mapNum++
		fmt.Fprintf(bw, "%6d%54s%-20s\n", mapNum, "", "START OF TEC MAP")
		fmt.Fprintf(bw, "%s%-20s\n", padEpochLabel(epoch), "EPOCH OF CURRENT MAP")

		lat := rec.Header.LatGrid
		lon := rec.Header.LonGrid
		for h := rec.Header.HgtGrid.Start; stepLE(h, rec.Header.HgtGrid.End, rec.Header.HgtGrid.Step); h += stepOrOne(rec.Header.HgtGrid.Step) {
			for la := lat.Start; stepLE(la, lat.End, lat.Step); la += stepOrOne(lat.Step) {
				fmt.Fprintf(bw, "%2s%6.1f%6.1f%6.1f%6.1f%6.1f%28s%-20s\n", "", la, lon.Start, lon.End, lon.Step, h, "", "LAT/LON1/LON2/DLON/H")
				line := ""
				col := 0
				for lo := lon.Start; stepLE(lo, lon.End, lon.Step); lo += stepOrOne(lon.Step) {
					key := IonexKey{Epoch: epoch, AltitudeCm: int(h * 1e5), LatMdeg: int(la * 1000), LonMdeg: int(lo * 1000)}
					tec := rec.Maps[key]
					line += fmt.Sprintf("%5d", int(tec.Value*scale+sign(tec.Value)*0.5))
					col++
					if col%16 == 0 {
						fmt.Fprintln(bw, line)
						line = ""
					}
				}
				if line != "" {
					fmt.Fprintln(bw, line)
				}
			}
		}
		fmt.Fprintf(bw, "%6d%54s%-20s\n", mapNum, "", "END OF TEC MAP")
	}
	return bw.Flush()
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func stepOrOne(step float64) float64 {
	if step == 0 {
		return 1
	}
	return step
}

func stepLE(v, end, step float64) bool {
	if step >= 0 {
		return v <= end+1e-9
	}
	return v >= end-1e-9
}

func padEpochLabel(e gnss.Epoch) string {
	return fmt.Sprintf("%-60s", formatEpochTimeField(e.Time))
}
