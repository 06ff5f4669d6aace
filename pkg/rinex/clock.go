package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// ClockDataType is the RINEX Clock record discriminator (spec.md §4.6).
type ClockDataType string

const (
	ClockReceiver        ClockDataType = "AR"
	ClockSatellite       ClockDataType = "AS"
	ClockCalibration     ClockDataType = "CR"
	ClockDiscontinuity   ClockDataType = "DR"
	ClockMeasurement     ClockDataType = "MS"
)

// ClockHeader extends Header with the clock-reference and analysis-center
// metadata a Clock file carries.
type ClockHeader struct {
	Header
	AnalysisCenter    string
	AnalysisCenterFull string
	ReferenceClocks   []string
}

// ClockRecord is one decoded Clock data line: an epoch, a named reference
// (station marker or satellite), and one to six clock solution terms
// (bias, drift, drift-rate and their std-deviations, per spec.md §4.6).
type ClockRecord struct {
	Type   ClockDataType
	Name   string
	Epoch  gnss.Epoch
	Values []float64
}

// ClockFile is a decoded Clock RINEX file.
type ClockFile struct {
	Header  ClockHeader
	Records []ClockRecord
}

// ClockDecoder streams Clock data lines.
type ClockDecoder struct {
	Header  ClockHeader
	sc      *bufio.Scanner
	lineNum int
	rec     *ClockRecord
	err     error
}

func NewClockDecoder(r io.Reader) (*ClockDecoder, error) {
	dec := &ClockDecoder{sc: bufio.NewScanner(r)}
	dec.sc.Buffer(make([]byte, 0, 4096), 1<<20)
	hs := newHeaderScanner(dec.sc)
	err := hs.parseCommon(&dec.Header.Header, func(val, key string) (bool, error) {
		switch key {
		case "ANALYSIS CENTER":
			dec.Header.AnalysisCenter = strings.TrimSpace(val[:3])
			dec.Header.AnalysisCenterFull = strings.TrimSpace(val[5:])
			return true, nil
		case "# / TYPES OF DATA":
			return true, nil // data types are implied per-record by the 2-char type code
		case "STATION NAME / NUM", "STATION CLK REF":
			dec.Header.ReferenceClocks = append(dec.Header.ReferenceClocks, strings.TrimSpace(val))
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		dec.err = err
		return dec, err
	}
	dec.lineNum = hs.lineNum
	return dec, nil
}

func (dec *ClockDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *ClockDecoder) Record() *ClockRecord { return dec.rec }

// NextRecord decodes the next Clock data line. Every token after the name
// and epoch fields is whitespace-separated (unlike Navigation's packed
// fixed-width continuation lines), so field-based splitting is safe here.
func (dec *ClockDecoder) NextRecord() bool {
	if !dec.sc.Scan() {
		if err := dec.sc.Err(); err != nil {
			dec.err = err
		}
		return false
	}
	dec.lineNum++
	line := dec.sc.Text()
	if strings.TrimSpace(line) == "" {
		return dec.NextRecord()
	}

	tokens := strings.Fields(line)
	if len(tokens) < 9 {
		dec.err = &TruncatedRecordError{Line: dec.lineNum}
		dec.rec = nil
		return false
	}

	t, err := parseEpochTimeField(strings.Join(tokens[2:8], " "))
	if err != nil {
		dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
		return false
	}
	n, err := strconv.Atoi(tokens[8])
	if err != nil || 9+n > len(tokens) {
		dec.err = &MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("bad value count in clock record %q", line)}
		return false
	}

	values := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(tokens[9+i], 64)
		if err != nil {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
			return false
		}
		values[i] = v
	}

	dec.rec = &ClockRecord{
		Type:   ClockDataType(tokens[0]),
		Name:   tokens[1],
		Epoch:  gnss.NewEpoch(t, gnss.GPST),
		Values: values,
	}
	return true
}

// DecodeClock reads a complete Clock RINEX stream into memory.
func DecodeClock(r io.Reader) (*ClockFile, error) {
	dec, err := NewClockDecoder(r)
	if err != nil {
		return nil, err
	}
	cf := &ClockFile{Header: dec.Header}
	for dec.NextRecord() {
		cf.Records = append(cf.Records, *dec.Record())
	}
	if err := dec.Err(); err != nil {
		return cf, err
	}
	return cf, nil
}

// EncodeClock writes cf to w.
func EncodeClock(w io.Writer, cf *ClockFile) error {
	bw := bufio.NewWriter(w)
	if err := cf.Header.Header.FormatCommon(bw, ""); err != nil {
		return err
	}
	for _, rec := range cf.Records {
		line := fmt.Sprintf("%-2s %-4s %s %3d", rec.Type, rec.Name, formatEpochTimeField(rec.Epoch.Time), len(rec.Values))
		for _, v := range rec.Values {
			line += fmt.Sprintf(" %19.12E", v)
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
