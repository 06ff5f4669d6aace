package crinex

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
)

const absentToken = "_"

type svObsKey struct {
	sv  gnss.SV
	obs gnss.Observable
}

// Compress renders rec as a Hatanaka-compressed (CRINEX) byte stream.
// State resets (spec.md §4.6) occur on the first epoch, on any epoch whose
// flag isn't Ok, and the first time each (SV, Observable) pair is seen.
func Compress(rec *rinex.ObservationRecord) ([]byte, error) {
	var buf bytes.Buffer
	bw := bufio.NewWriter(&buf)

	fmt.Fprintln(bw, strings.TrimRight(FormatVersionLine(DefaultVersion), " "))
	fmt.Fprintln(bw, strings.TrimRight(FormatProgDateLine(rec.Header.Pgm, rec.Header.RunBy, rec.Header.Date), " "))
	hdr := rec.Header
	hdr.CrinexVersion = DefaultVersion
	if err := hdr.FormatCommon(bw, "SYS / # / OBS TYPES"); err != nil {
		return nil, err
	}

	epochChain := newDiffChain(1)
	states := map[svObsKey]*obsState{}
	firstEpoch := true

	for _, epo := range rec.Epochs {
		forceReset := firstEpoch || epo.Key.Flag != rinex.Ok
		firstEpoch = false

		nanos := epo.Key.Epoch.Time.UnixNano()
		var secField string
		if forceReset {
			epochChain.reset(nanos)
			secField = "&" + strconv.FormatInt(nanos, 10)
		} else {
			secField = strconv.FormatInt(epochChain.step(nanos), 10)
		}

		svs := make([]gnss.SV, 0, len(epo.SVs))
		for sv := range epo.SVs {
			svs = append(svs, sv)
		}
		sort.Sort(gnss.BySV(svs))

		fmt.Fprintf(bw, ">%d %d %s\n", int(epo.Key.Flag), len(svs), secField)

		for _, sv := range svs {
			obsMap := epo.SVs[sv]
			obsTypes := rec.Header.ObsTypes[sv.Constellation]

			var values []string
			var flags strings.Builder
			for _, obsType := range obsTypes {
				key := svObsKey{sv: sv, obs: obsType}
				data, present := obsMap[obsType]

				if !present || !data.Present {
					values = append(values, absentToken)
					flags.WriteString("  ")
					continue
				}

				st, ok := states[key]
				svReset := forceReset || !ok
				if !ok {
					st = newObsState()
					states[key] = st
				}

				scaled := int64(math.Round(data.Value * valueScale))
				if svReset {
					st.value.reset(scaled)
					values = append(values, "&"+strconv.FormatInt(scaled, 10))
				} else {
					values = append(values, strconv.FormatInt(st.value.step(scaled), 10))
				}

				var lli, snr byte = ' ', ' '
				if data.LLI != nil {
					lli = byte('0' + int(*data.LLI))
				}
				if data.SNR != nil {
					snr = byte('0' + int(*data.SNR))
				}
				flags.WriteByte(flagCharOrReset(&st.lliChar, lli, svReset))
				flags.WriteByte(flagCharOrReset(&st.snrChar, snr, svReset))
				st.lliChar, st.snrChar = lli, snr
			}

			fmt.Fprintf(bw, "%s %s |%s\n", sv.String(), strings.Join(values, " "), flags.String())
		}
	}

	if err := bw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// flagCharOrReset emits the literal char on a reset (so the decoder never
// needs prior state to interpret it) and the differential ' '/literal
// encoding otherwise.
func flagCharOrReset(stored *byte, next byte, reset bool) byte {
	if reset {
		return next
	}
	return flagChar(stored, next)
}

// Decompress parses a Hatanaka-compressed stream back into the typed
// Observation representation. A step arriving before its reset is
// ErrStateUninitialised; a malformed differential integer is
// ErrBadInteger (spec.md §7).
func Decompress(r io.Reader) (*rinex.ObservationRecord, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	if !sc.Scan() { // "CRINEX VERS / TYPE"
		return nil, fmt.Errorf("crinex: empty stream")
	}
	if !sc.Scan() { // "CRINEX PROG / DATE"
		return nil, fmt.Errorf("crinex: truncated stream header")
	}

	// Re-parse the embedded RINEX Observation header by feeding the
	// remaining lines to the ordinary Observation decoder: it stops
	// consuming at "END OF HEADER" and the scanner position carries
	// forward from there.
	var headerBuf bytes.Buffer
	for sc.Scan() {
		line := sc.Text()
		headerBuf.WriteString(line)
		headerBuf.WriteByte('\n')
		if len(line) >= 60 && strings.TrimSpace(line[60:]) == "END OF HEADER" {
			break
		}
	}

	hdr, err := rinex.DecodeObservation(bytes.NewReader(headerBuf.Bytes()))
	if err != nil {
		return nil, err
	}
	rec := &rinex.ObservationRecord{Header: hdr.Header}

	epochChain := newDiffChain(1)
	states := map[svObsKey]*obsState{}
	seenSV := map[svObsKey]bool{}
	epochInit := false

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		if line[0] != '>' {
			return rec, fmt.Errorf("crinex: expected epoch line, got %q", line)
		}
		fields := strings.Fields(line[1:])
		if len(fields) < 3 {
			return rec, fmt.Errorf("crinex: malformed epoch line %q", line)
		}
		flagN, err := strconv.Atoi(fields[0])
		if err != nil {
			return rec, &ErrBadInteger{Field: fields[0], Err: err}
		}
		nsat, err := strconv.Atoi(fields[1])
		if err != nil {
			return rec, &ErrBadInteger{Field: fields[1], Err: err}
		}

		var nanos int64
		secField := fields[2]
		forceReset := !epochInit || rinex.EpochFlag(flagN) != rinex.Ok
		epochInit = true
		if strings.HasPrefix(secField, "&") {
			nanos, err = strconv.ParseInt(secField[1:], 10, 64)
			if err != nil {
				return rec, &ErrBadInteger{Field: secField, Err: err}
			}
			epochChain.reset(nanos)
		} else {
			diff, err := strconv.ParseInt(secField, 10, 64)
			if err != nil {
				return rec, &ErrBadInteger{Field: secField, Err: err}
			}
			nanos = epochChain.decodeStep(diff)
		}

		t := time.Unix(0, nanos).UTC()
		epo := rinex.ObsEpoch{
			Key: rinex.ObsKey{Epoch: gnss.NewEpoch(t, fileTimeScale(hdr.Header.Constellation)), Flag: rinex.EpochFlag(flagN)},
			SVs: make(map[gnss.SV]map[gnss.Observable]rinex.ObsData, nsat),
		}

		for i := 0; i < nsat; i++ {
			if !sc.Scan() {
				return rec, fmt.Errorf("crinex: truncated data block")
			}
			dataLine := sc.Text()
			valuePart, flagsStr, hasBar := strings.Cut(dataLine, "|")
			tokens := strings.Fields(valuePart)
			if len(tokens) < 1 {
				return rec, fmt.Errorf("crinex: empty data line")
			}
			sv, err := gnss.ParseSV(tokens[0])
			if err != nil {
				return rec, err
			}
			obsTypes := hdr.Header.ObsTypes[sv.Constellation]
			values := tokens[1 : 1+len(obsTypes)]
			if !hasBar {
				flagsStr = ""
			}
			for len(flagsStr) < 2*len(obsTypes) {
				flagsStr += " "
			}

			perObs := make(map[gnss.Observable]rinex.ObsData, len(obsTypes))
			for j, obsType := range obsTypes {
				key := svObsKey{sv: sv, obs: obsType}
				valStr := values[j]
				lliCh, snrCh := flagsStr[2*j], flagsStr[2*j+1]

				if valStr == absentToken {
					perObs[obsType] = rinex.ObsData{}
					continue
				}

				st, ok := states[key]
				entryReset := forceReset || !seenSV[key]
				if !ok {
					st = newObsState()
					states[key] = st
				}

				var scaled int64
				if strings.HasPrefix(valStr, "&") {
					scaled, err = strconv.ParseInt(valStr[1:], 10, 64)
					if err != nil {
						return rec, &ErrBadInteger{Field: valStr, Err: err}
					}
					st.value.reset(scaled)
				} else {
					if entryReset {
						return rec, &ErrStateUninitialised{SV: sv, Observable: obsType}
					}
					diff, err := strconv.ParseInt(valStr, 10, 64)
					if err != nil {
						return rec, &ErrBadInteger{Field: valStr, Err: err}
					}
					scaled = st.value.decodeStep(diff)
				}
				seenSV[key] = true

				data := rinex.ObsData{Value: float64(scaled) / valueScale, Present: true}
				lli := applyFlagChar(st.lliChar, lliCh)
				snr := applyFlagChar(st.snrChar, snrCh)
				if strings.HasPrefix(valStr, "&") {
					lli, snr = lliCh, snrCh
				}
				st.lliChar, st.snrChar = lli, snr
				if lli != ' ' {
					l := rinex.LliFlags(lli - '0')
					data.LLI = &l
				}
				if snr != ' ' {
					s := rinex.SNR(snr - '0')
					data.SNR = &s
				}
				perObs[obsType] = data
			}
			epo.SVs[sv] = perObs
		}

		rec.Epochs = append(rec.Epochs, epo)
	}
	if err := sc.Err(); err != nil {
		return rec, err
	}
	return rec, nil
}

// fileTimeScale mirrors rinex's internal epochScale: the time scale implied
// by a file's declared constellation (spec.md §3.4: every record key's
// scale must match the file's declared time system).
func fileTimeScale(c gnss.Constellation) gnss.TimeScale {
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
