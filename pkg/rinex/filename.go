package rinex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Rnx2FileNamePattern matches the RINEX-2 short filename convention.
var Rnx2FileNamePattern = regexp.MustCompile(`(([a-z0-9]{4})(\d{3})([a-x0])(\d{2})?\.(\d{2})([a-z]))\.?([a-zA-Z0-9]+)?`)

// Rnx3FileNamePattern matches the RINEX-3/4 long filename convention
// described in spec.md §6.1.
var Rnx3FileNamePattern = regexp.MustCompile(`((([A-Z0-9]{4})(\d)(\d)([A-Z]{3})_([RSU])_((\d{4})(\d{3})(\d{2})(\d{2}))_(\d{2}[A-Z])_?(\d{2}[SMHDU])?_([GREJCSIM][MNOC]))\.(rnx|crx))\.?([a-zA-Z0-9]+)?`)

// FileName holds the parsed fields of a RINEX filename, independently of
// the file's content (spec.md §9: "keep strictly separate from content
// parsing; a misnamed file with valid content must parse").
type FileName struct {
	Station        string // 4-char station ID
	MonumentNumber int
	ReceiverNumber int
	CountryCode    string // ISO 3-char
	DataSource     string // R, S or U
	StartTime      time.Time
	FilePeriod     string // 15M, 01H, 01D, 01Y, 00U
	SampleRate     string // 30S, 01M, ...
	DataType       string // MO, MN, MM, ...
	Format         string // rnx or crx
	Compression    string // gz, or empty
}

// ParseFileName parses a RINEX-3/4 long-form or RINEX-2 short-form
// filename. It only inspects the name; it never opens the file.
func ParseFileName(name string) (FileName, error) {
	base := name
	if idx := strings.LastIndexByte(base, '/'); idx >= 0 {
		base = base[idx+1:]
	}

	if m := Rnx3FileNamePattern.FindStringSubmatch(base); m != nil {
		fn := FileName{
			Station:     m[3],
			CountryCode: m[6],
			DataSource:  m[7],
			FilePeriod:  m[13],
			SampleRate:  m[14],
			DataType:    m[15],
			Format:      m[16],
			Compression: m[17],
		}
		fn.MonumentNumber, _ = strconv.Atoi(m[4])
		fn.ReceiverNumber, _ = strconv.Atoi(m[5])

		year, _ := strconv.Atoi(m[9])
		doy, _ := strconv.Atoi(m[10])
		hour, _ := strconv.Atoi(m[11])
		minute, _ := strconv.Atoi(m[12])
		fn.StartTime = time.Date(year, 1, 1, hour, minute, 0, 0, time.UTC).AddDate(0, 0, doy-1)
		return fn, nil
	}

	if m := Rnx2FileNamePattern.FindStringSubmatch(base); m != nil {
		fn := FileName{
			Station:     strings.ToUpper(m[2]),
			DataType:    m[7],
			Compression: m[8],
		}
		doy, _ := strconv.Atoi(m[3])
		yy, _ := strconv.Atoi(m[6])
		year := 2000 + yy
		if yy > 80 {
			year = 1900 + yy
		}
		fn.StartTime = time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
		return fn, nil
	}

	return FileName{}, fmt.Errorf("rinex: %q is not a recognised RINEX filename", base)
}

// Rnx3Name reconstructs the RINEX-3 long filename for fn.
func (fn FileName) Rnx3Name() (string, error) {
	if len(fn.Station) != 4 {
		return "", fmt.Errorf("rinex: station id %q must be 4 chars", fn.Station)
	}
	if len(fn.CountryCode) != 3 {
		return "", fmt.Errorf("rinex: country code %q must be 3 chars", fn.CountryCode)
	}
	src := fn.DataSource
	if src == "" {
		src = "U"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s%d%d%s_%s_%04d%03d%02d%02d_%s_%s_%s.%s",
		strings.ToUpper(fn.Station), fn.MonumentNumber, fn.ReceiverNumber, strings.ToUpper(fn.CountryCode),
		src,
		fn.StartTime.Year(), fn.StartTime.YearDay(), fn.StartTime.Hour(), fn.StartTime.Minute(),
		fn.FilePeriod, fn.SampleRate, fn.DataType, fn.Format)

	name := b.String()
	if fn.Compression != "" {
		name += "." + fn.Compression
	}
	return name, nil
}
