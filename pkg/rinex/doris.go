package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// DorisStation identifies a DORIS ground beacon the way an SV identifies a
// satellite: DORIS observation records are indexed by ground station
// rather than space vehicle (spec.md §3.3 DORIS).
type DorisStation struct {
	Code string // 4-char DORIS beacon code, e.g. "GLAA"
	ID   int    // 2-digit beacon ID
}

func (s DorisStation) String() string { return fmt.Sprintf("D%02d", s.ID) }

// DorisHeader extends Header with the beacon-table metadata DORIS carries
// in place of a per-constellation observable table.
type DorisHeader struct {
	Header
	Stations []DorisStation
}

// DorisEpoch is one decoded DORIS epoch entry: same shape as an
// Observation epoch, keyed by ground station instead of SV (spec.md §3.3:
// "like Observation but indexed by ground station").
type DorisEpoch struct {
	Key      ObsKey
	Stations map[DorisStation]map[gnss.Observable]ObsData
}

// DorisRecord is a decoded DORIS RINEX file.
type DorisRecord struct {
	Header DorisHeader
	Epochs []DorisEpoch
}

// DorisDecoder streams DORIS epochs, reusing the Observation-3 epoch-line
// and per-entity-line grammar (spec.md §4.4) with ground stations standing
// in for satellites.
type DorisDecoder struct {
	Header DorisHeader

	sc      *bufio.Scanner
	lineNum int
	epo     *DorisEpoch
	err     error
}

func NewDorisDecoder(r io.Reader) (*DorisDecoder, error) {
	dec := &DorisDecoder{sc: bufio.NewScanner(r)}
	dec.sc.Buffer(make([]byte, 0, 4096), 1<<20)
	hs := newHeaderScanner(dec.sc)
	err := hs.parseCommon(&dec.Header.Header, func(val, key string) (bool, error) {
		if key == "STATION REFERENCE" || key == "# / TYPES OF STATIONS" {
			return true, nil
		}
		if key == "STATION CODE" {
			id, _ := strconv.Atoi(strings.TrimSpace(val[1:3]))
			dec.Header.Stations = append(dec.Header.Stations, DorisStation{
				Code: strings.TrimSpace(val[5:9]),
				ID:   id,
			})
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		dec.err = err
		return dec, err
	}
	if codes, ok := dec.Header.ObsTypes[dec.Header.Constellation]; ok {
		delete(dec.Header.ObsTypes, dec.Header.Constellation)
		dec.Header.ObsTypes[gnss.Mixed] = codes
	}
	dec.lineNum = hs.lineNum
	return dec, nil
}

func (dec *DorisDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *DorisDecoder) Epoch() *DorisEpoch { return dec.epo }

func (dec *DorisDecoder) scan() (string, bool) {
	if !dec.sc.Scan() {
		return "", false
	}
	dec.lineNum++
	return dec.sc.Text(), true
}

// NextEpoch decodes the next DORIS epoch: a ">" epoch line followed by one
// line per station, mirroring Observation-3 (spec.md §4.4).
func (dec *DorisDecoder) NextEpoch() bool {
	for {
		line, ok := dec.scan()
		if !ok {
			if err := dec.sc.Err(); err != nil {
				dec.err = err
			}
			return false
		}
		if len(line) == 0 {
			continue
		}
		if !strings.HasPrefix(line, ">") {
			continue
		}
		tokens := strings.Fields(line[1:])
		if len(tokens) < 8 {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("short DORIS epoch line %q", line)}
			return false
		}
		t, err := parseEpochTimeField(strings.Join(tokens[:6], " "))
		if err != nil {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
			return false
		}
		flagN, _ := strconv.Atoi(tokens[6])
		numSta, err := strconv.Atoi(tokens[7])
		if err != nil {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
			return false
		}

		epo := &DorisEpoch{
			Key:      ObsKey{Epoch: gnss.NewEpoch(t, gnss.UTC), Flag: EpochFlag(flagN)},
			Stations: make(map[DorisStation]map[gnss.Observable]ObsData, numSta),
		}
		codes := dec.Header.ObsTypes[gnss.Mixed]

		for i := 0; i < numSta; i++ {
			dl, ok := dec.scan()
			if !ok {
				dec.err = io.EOF
				dec.epo = nil
				return false
			}
			if len(dl) < 3 {
				dec.err = &MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("short DORIS station line %q", dl)}
				return false
			}
			id, _ := strconv.Atoi(strings.TrimSpace(dl[1:3]))
			sta := DorisStation{ID: id}
			perObs := make(map[gnss.Observable]ObsData, len(codes))
			for j, code := range codes {
				pos := 3 + 16*j
				if pos >= len(dl) {
					perObs[code] = ObsData{}
					continue
				}
				end := pos + 16
				if end > len(dl) {
					end = len(dl)
				}
				data, err := decodeObsField(dl[pos:end])
				if err != nil {
					dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
					return false
				}
				perObs[code] = data
			}
			epo.Stations[sta] = perObs
		}
		dec.epo = epo
		return true
	}
}

// DecodeDoris reads a complete DORIS RINEX stream into memory.
func DecodeDoris(r io.Reader) (*DorisRecord, error) {
	dec, err := NewDorisDecoder(r)
	if err != nil {
		return nil, err
	}
	rec := &DorisRecord{Header: dec.Header}
	for dec.NextEpoch() {
		rec.Epochs = append(rec.Epochs, *dec.Epoch())
	}
	if err := dec.Err(); err != nil {
		return rec, err
	}
	return rec, nil
}

// EncodeDoris writes rec to w: the common header with the observable
// table, then each epoch in the epoch-line and station-line layout
// NextEpoch reads. The header's station list and the LLI/SNR flags of
// each value are not written, so decoding the output yields a record
// without them.
func EncodeDoris(w io.Writer, rec *DorisRecord) error {
	bw := bufio.NewWriter(w)
	if err := rec.Header.Header.FormatCommon(bw, "SYS / # / OBS TYPES"); err != nil {
		return err
	}
	codes := rec.Header.ObsTypes[gnss.Mixed]
	for _, epo := range rec.Epochs {
		t := epo.Key.Epoch.Time
		fmt.Fprintf(bw, "> %s  %d%3d\n",
			fmt.Sprintf("%4d %02d %02d %02d %02d%11.7f", t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), float64(t.Second())+float64(t.Nanosecond())/1e9),
			int(epo.Key.Flag), len(epo.Stations))
		ids := make([]int, 0, len(epo.Stations))
		for sta := range epo.Stations {
			ids = append(ids, sta.ID)
		}
		for _, id := range ids {
			var sta DorisStation
			for s := range epo.Stations {
				if s.ID == id {
					sta = s
					break
				}
			}
			line := fmt.Sprintf("D%02d", sta.ID)
			for _, code := range codes {
				data := epo.Stations[sta][code]
				if !data.Present {
					line += strings.Repeat(" ", 16)
					continue
				}
				line += fmt.Sprintf("%14.3f  ", data.Value)
			}
			if _, err := fmt.Fprintln(bw, line); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}
