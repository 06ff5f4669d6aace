package rinex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// MeteoHeader extends Header with the sensor metadata Meteo files carry in
// place of an observable table keyed by constellation.
type MeteoHeader struct {
	Header
	SensorTypes []MeteoSensor
}

// MeteoSensor describes one "SENSOR MOD/TYPE/ACC" + position entry.
type MeteoSensor struct {
	Model, Type string
	Accuracy    float64
	Observable  gnss.Observable
	Position    Coord
	Height      float64
}

// MeteoEpoch is one row of meteorological measurements.
type MeteoEpoch struct {
	Epoch  gnss.Epoch
	Values map[gnss.Observable]float64
}

// MeteoRecord is a decoded Meteo RINEX file.
type MeteoRecord struct {
	Header MeteoHeader
	Epochs []MeteoEpoch
}

// MeteoDecoder streams Meteo epochs.
type MeteoDecoder struct {
	Header  MeteoHeader
	sc      *bufio.Scanner
	lineNum int
	epo     *MeteoEpoch
	err     error
}

func NewMeteoDecoder(r io.Reader) (*MeteoDecoder, error) {
	dec := &MeteoDecoder{sc: bufio.NewScanner(r)}
	dec.sc.Buffer(make([]byte, 0, 4096), 1<<20)
	hs := newHeaderScanner(dec.sc)
	err := hs.parseCommon(&dec.Header.Header, func(val, key string) (bool, error) {
		switch key {
		case "SENSOR MOD/TYPE/ACC":
			sensor := MeteoSensor{
				Model: strings.TrimSpace(val[:20]),
				Type:  strings.TrimSpace(val[20:40]),
			}
			sensor.Accuracy, _ = strconv.ParseFloat(strings.TrimSpace(val[46:54]), 64)
			if code := strings.TrimSpace(val[57:59]); code != "" {
				if obs, err := gnss.ParseObservable(code); err == nil {
					sensor.Observable = obs
				}
			}
			dec.Header.SensorTypes = append(dec.Header.SensorTypes, sensor)
			return true, nil
		case "SENSOR POS XYZ/H":
			if len(dec.Header.SensorTypes) == 0 {
				return true, nil
			}
			fields := strings.Fields(val)
			if len(fields) >= 4 {
				last := &dec.Header.SensorTypes[len(dec.Header.SensorTypes)-1]
				last.Position.X, _ = strconv.ParseFloat(fields[0], 64)
				last.Position.Y, _ = strconv.ParseFloat(fields[1], 64)
				last.Position.Z, _ = strconv.ParseFloat(fields[2], 64)
				last.Height, _ = strconv.ParseFloat(fields[3], 64)
			}
			return true, nil
		}
		return false, nil
	})
	if err != nil {
		dec.err = err
		return dec, err
	}
	// Meteo headers carry no per-constellation system letter, so the common
	// "# / TYPES OF OBSERV" handler files the codes under the header's
	// (zero-value) Constellation; rekey them under a constellation-free
	// Mixed bucket for a stable lookup key.
	if codes, ok := dec.Header.ObsTypes[dec.Header.Constellation]; ok {
		delete(dec.Header.ObsTypes, dec.Header.Constellation)
		dec.Header.ObsTypes[gnss.Mixed] = codes
	}
	dec.lineNum = hs.lineNum
	return dec, nil
}

func (dec *MeteoDecoder) Err() error {
	if dec.err == io.EOF {
		return nil
	}
	return dec.err
}

func (dec *MeteoDecoder) Epoch() *MeteoEpoch { return dec.epo }

func (dec *MeteoDecoder) NextEpoch() bool {
	if !dec.sc.Scan() {
		if err := dec.sc.Err(); err != nil {
			dec.err = err
		}
		return false
	}
	dec.lineNum++
	line := dec.sc.Text()
	if strings.TrimSpace(line) == "" {
		return dec.NextEpoch()
	}

	codes := dec.Header.ObsTypes[gnss.Mixed]
	tokens := strings.Fields(line)
	if len(tokens) < 6+len(codes) {
		dec.err = &TruncatedRecordError{Line: dec.lineNum}
		dec.epo = nil
		return false
	}
	t, err := parseEpochTimeField(strings.Join(tokens[:6], " "))
	if err != nil {
		dec.err = &MalformedEpochError{Line: dec.lineNum, Err: err}
		return false
	}

	epo := &MeteoEpoch{Epoch: gnss.NewEpoch(t, gnss.UTC), Values: make(map[gnss.Observable]float64, len(codes))}
	for i, code := range codes {
		v, err := strconv.ParseFloat(tokens[6+i], 64)
		if err != nil {
			dec.err = &MalformedEpochError{Line: dec.lineNum, Err: fmt.Errorf("parse %s: %w", code, err)}
			return false
		}
		epo.Values[code] = v
	}
	dec.epo = epo
	return true
}

// DecodeMeteo reads a complete Meteo RINEX stream into memory.
func DecodeMeteo(r io.Reader) (*MeteoRecord, error) {
	dec, err := NewMeteoDecoder(r)
	if err != nil {
		return nil, err
	}
	rec := &MeteoRecord{Header: dec.Header}
	for dec.NextEpoch() {
		rec.Epochs = append(rec.Epochs, *dec.Epoch())
	}
	if err := dec.Err(); err != nil {
		return rec, err
	}
	return rec, nil
}

// EncodeMeteo writes rec to w.
func EncodeMeteo(w io.Writer, rec *MeteoRecord) error {
	bw := bufio.NewWriter(w)
	if err := rec.Header.Header.FormatCommon(bw, ""); err != nil {
		return err
	}
	codes := rec.Header.ObsTypes[gnss.Mixed]
	for _, epo := range rec.Epochs {
		line := formatEpochTimeField(epo.Epoch.Time)
		for _, code := range codes {
			line += fmt.Sprintf("%7.1f", epo.Values[code])
		}
		if _, err := fmt.Fprintln(bw, line); err != nil {
			return err
		}
	}
	return bw.Flush()
}
