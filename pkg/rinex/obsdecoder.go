package rinex

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// ObsDecoder reads and decodes an Observation RINEX stream one epoch at a
// time, in the teacher's ObsDecoder style (bufio.Scanner, Header valid
// after construction, NextEpoch()/Epoch()/Err()).
type ObsDecoder struct {
	Header Header

	sc      *bufio.Scanner
	epo     *ObsEpoch
	lineNum int
	err     error
}

// NewObsDecoder creates a decoder for RINEX Observation data, reading and
// validating the header immediately. version < 3 requires
// "# / TYPES OF OBSERV"; version >= 3 requires "SYS / # / OBS TYPES"
// (spec.md §4.3 invariant).
func NewObsDecoder(r io.Reader) (*ObsDecoder, error) {
	dec := &ObsDecoder{sc: bufio.NewScanner(r)}
	dec.sc.Buffer(make([]byte, 0, 4096), 1<<20)
	hs := newHeaderScanner(dec.sc)
	if err := hs.parseCommon(&dec.Header, nil); err != nil {
		dec.err = err
		return dec, err
	}
	dec.lineNum = hs.lineNum

	if len(dec.Header.ObsTypes) == 0 {
		err := fmt.Errorf("rinex: observation header carries no observable table")
		dec.err = err
		return dec, err
	}
	return dec, nil
}

// Err returns the first non-EOF error encountered.
func (dec *ObsDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *ObsDecoder) setErr(err error) {
	if dec.err == nil || dec.err == io.EOF {
		dec.err = err
	}
}

// Epoch returns the most recently decoded epoch entry.
func (dec *ObsDecoder) Epoch() *ObsEpoch { return dec.epo }

// NextEpoch decodes the next epoch entry. It returns false at EOF or on
// error; callers must then check Err().
func (dec *ObsDecoder) NextEpoch() bool {
	if dec.Header.Version < 3 {
		return dec.nextEpochV2()
	}
	return dec.nextEpochV3()
}

func (dec *ObsDecoder) scan() (string, bool) {
	if !dec.sc.Scan() {
		return "", false
	}
	dec.lineNum++
	return dec.sc.Text(), true
}

func (dec *ObsDecoder) nextEpochV3() bool {
	for {
		line, ok := dec.scan()
		if !ok {
			if err := dec.sc.Err(); err != nil {
				dec.setErr(err)
			}
			return false
		}
		if len(line) == 0 {
			continue
		}
		if !strings.HasPrefix(line, ">") {
			continue // tolerate stray/garbage lines between records
		}

		tokens := strings.Fields(line[1:])
		if len(tokens) < 8 {
			dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("short epoch record line %q", line)})
			return false
		}
		t, err := parseEpochTimeField(strings.Join(tokens[:6], " "))
		if err != nil {
			dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
			return false
		}
		flagN, err := strconv.Atoi(tokens[6])
		if err != nil {
			dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
			return false
		}
		numSat, err := strconv.Atoi(tokens[7])
		if err != nil {
			dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
			return false
		}

		epo := &ObsEpoch{
			Key: ObsKey{Epoch: gnss.NewEpoch(t, epochScale(dec.Header.Constellation)), Flag: EpochFlag(flagN)},
			SVs: make(map[gnss.SV]map[gnss.Observable]ObsData, numSat),
		}
		if len(tokens) > 8 {
			if off, err := strconv.ParseFloat(tokens[8], 64); err == nil {
				epo.ClockOffset = &off
			}
		}

		for i := 0; i < numSat; i++ {
			line, ok = dec.scan()
			if !ok {
				// truncated last record: tolerated, return what we have
				dec.setErr(io.EOF)
				dec.epo = nil
				return false
			}
			if err := dec.parseObsLineV3(line, epo); err != nil {
				dec.setErr(err)
				return false
			}
		}

		dec.epo = epo
		return true
	}
}

func (dec *ObsDecoder) parseObsLineV3(line string, epo *ObsEpoch) error {
	if len(line) < 3 {
		return &MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("short observation line %q", line)}
	}
	sv, err := gnss.ParseSV(line[0:3])
	if err != nil {
		return &MalformedEpochError{Line: dec.lineNum, Err: err}
	}

	obsTypes := dec.Header.ObsTypes[sv.Constellation]
	perObs := make(map[gnss.Observable]ObsData, len(obsTypes))
	pos := 3
	linelen := len(line)
	for i, obsType := range obsTypes {
		if i > 0 && i%5 == 0 {
			next, ok := dec.scan()
			if !ok {
				return io.EOF
			}
			line = next
			linelen = len(line)
			pos = 0
		}
		if pos >= linelen {
			perObs[obsType] = ObsData{}
			pos += 16
			continue
		}
		end := pos + 16
		if end > linelen {
			end = linelen
		}
		data, err := decodeObsField(line[pos:end])
		if err != nil {
			return &MalformedEpochError{Line: dec.lineNum, Err: err}
		}
		perObs[obsType] = data
		pos += 16
	}
	epo.SVs[sv] = perObs
	return nil
}

func (dec *ObsDecoder) nextEpochV2() bool {
	line, ok := dec.scan()
	if !ok {
		if err := dec.sc.Err(); err != nil {
			dec.setErr(err)
		}
		return false
	}
	if len(line) < 29 {
		dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("short epoch line %q", line)})
		return false
	}

	tokens := strings.Fields(line)
	if len(tokens) < 8 {
		dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("short epoch line %q", line)})
		return false
	}
	t, err := parseEpochTimeField(strings.Join(tokens[:6], " "))
	if err != nil {
		dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
		return false
	}
	flagN, err := strconv.Atoi(tokens[6])
	if err != nil {
		dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
		return false
	}
	numSat, err := strconv.Atoi(tokens[7])
	if err != nil {
		dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
		return false
	}

	epo := &ObsEpoch{
		Key: ObsKey{Epoch: gnss.NewEpoch(t, epochScale(dec.Header.Constellation)), Flag: EpochFlag(flagN)},
		SVs: make(map[gnss.SV]map[gnss.Observable]ObsData, numSat),
	}

	pos := 32
	sats := make([]gnss.SV, 0, numSat)
	for i := 0; i < numSat; i++ {
		if i > 0 && i%12 == 0 {
			line, ok = dec.scan()
			if !ok {
				dec.setErr(io.EOF)
				dec.epo = nil
				return false
			}
			pos = 32
		}
		if pos+3 > len(line) {
			dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("satellite list truncated")})
			return false
		}
		sv, err := parseSVv2(line[pos:pos+3], dec.Header.Constellation)
		if err != nil {
			dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
			return false
		}
		sats = append(sats, sv)
		pos += 3
	}

	for _, sv := range sats {
		line, ok = dec.scan()
		if !ok {
			dec.setErr(io.EOF)
			dec.epo = nil
			return false
		}
		obsTypes := dec.Header.ObsTypes[sv.Constellation]
		perObs := make(map[gnss.Observable]ObsData, len(obsTypes))
		pos := 0
		linelen := len(line)
		for i, obsType := range obsTypes {
			if i > 0 && i%5 == 0 {
				line, ok = dec.scan()
				if !ok {
					dec.setErr(io.EOF)
					dec.epo = nil
					return false
				}
				linelen = len(line)
				pos = 0
			}
			if pos >= linelen {
				perObs[obsType] = ObsData{}
				pos += 16
				continue
			}
			end := pos + 16
			if end > linelen {
				end = linelen
			}
			data, err := decodeObsField(line[pos:end])
			if err != nil {
				dec.setErr(&MalformedEpochError{Line: dec.lineNum, Err: err})
				return false
			}
			perObs[obsType] = data
			pos += 16
		}
		epo.SVs[sv] = perObs
	}

	dec.epo = epo
	return true
}

// parseSVv2 parses a satellite field from a RINEX-2 satellite list,
// defaulting to the file's declared constellation when the system letter
// is blank (single-constellation files).
func parseSVv2(field string, fileSys gnss.Constellation) (gnss.SV, error) {
	if strings.TrimSpace(field[:1]) == "" {
		return gnss.ParseSVInSystem(fileSys, field[1:])
	}
	return gnss.ParseSV(field)
}

func epochScale(c gnss.Constellation) gnss.TimeScale {
	switch c {
	case gnss.Glonass:
		return gnss.GLONASST
	case gnss.Galileo:
		return gnss.GST
	case gnss.BeiDou:
		return gnss.BDT
	default:
		return gnss.GPST
	}
}

// decodeObsField parses one 14+1+1 column observation field: value, LLI,
// SNR. A blank value field means "absent", not zero (spec.md §4.4).
func decodeObsField(s string) (ObsData, error) {
	if strings.TrimSpace(s) == "" {
		return ObsData{}, nil
	}

	width := len(s)
	valEnd := 14
	if valEnd > width {
		valEnd = width
	}
	valStr := strings.TrimSpace(s[:valEnd])
	if valStr == "" {
		return ObsData{}, nil
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return ObsData{}, fmt.Errorf("parse observation %q: %w", s, err)
	}
	data := ObsData{Value: val, Present: true}

	if width > 14 && s[14] != ' ' {
		n, err := strconv.Atoi(string(s[14]))
		if err != nil {
			return ObsData{}, fmt.Errorf("parse LLI %q: %w", s, err)
		}
		lli := LliFlags(n)
		data.LLI = &lli
	}
	if width > 15 && s[15] != ' ' {
		n, err := strconv.Atoi(string(s[15]))
		if err != nil {
			return ObsData{}, fmt.Errorf("parse SNR %q: %w", s, err)
		}
		snr := SNR(n)
		data.SNR = &snr
	}
	return data, nil
}

// DecodeObservation reads a complete Observation RINEX stream into memory.
// A truncated trailing record is tolerated: all fully-parsed prior epochs
// are returned together with a nil error (spec.md §4.4/§7).
func DecodeObservation(r io.Reader) (*ObservationRecord, error) {
	dec, err := NewObsDecoder(r)
	if err != nil {
		return nil, err
	}
	rec := &ObservationRecord{Header: dec.Header}
	for dec.NextEpoch() {
		rec.Epochs = append(rec.Epochs, *dec.Epoch())
	}
	sort.SliceStable(rec.Epochs, func(i, j int) bool {
		a, b := rec.Epochs[i].Key, rec.Epochs[j].Key
		if !a.Epoch.Equal(b.Epoch) {
			return a.Epoch.Before(b.Epoch)
		}
		return a.Flag < b.Flag
	})
	if err := dec.Err(); err != nil {
		return rec, err
	}
	return rec, nil
}
