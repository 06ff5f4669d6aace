package rinex

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// EncodeObservation writes rec to w in RINEX-3/4 form (the only form this
// package emits; RINEX-2 is read-only here, matching spec.md §4.4's
// "decode both, encode the current version").
func EncodeObservation(w io.Writer, rec *ObservationRecord) error {
	bw := bufio.NewWriter(w)
	if rec.Header.Version < 3 {
		rec.Header.Version = 3.04
	}
	if err := rec.Header.FormatCommon(bw, "SYS / # / OBS TYPES"); err != nil {
		return err
	}
	for _, epo := range rec.Epochs {
		if err := formatObsEpoch(bw, rec.Header, epo); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func formatObsEpoch(w *bufio.Writer, hdr Header, epo ObsEpoch) error {
	svs := make([]gnss.SV, 0, len(epo.SVs))
	for sv := range epo.SVs {
		svs = append(svs, sv)
	}
	sort.Slice(svs, func(i, j int) bool { return svs[i].Less(svs[j]) })

	clk := ""
	if epo.ClockOffset != nil {
		clk = fmt.Sprintf("      %15.12f", *epo.ClockOffset)
	}
	if _, err := fmt.Fprintf(w, "> %s  %1d%3d%s\n",
		formatEpochTimeField(epo.Key.Epoch.Time), int(epo.Key.Flag), len(svs), clk); err != nil {
		return err
	}

	for _, sv := range svs {
		if err := formatObsLine(w, sv, hdr.ObsTypes[sv.Constellation], epo.SVs[sv]); err != nil {
			return err
		}
	}
	return nil
}

// formatObsLine writes one SV's observables, wrapping onto a continuation
// line every 5 fields (spec.md §4.4: "up to 5 observations per 80-column
// line, continuation lines follow for the remaining observables in
// header-declared order"); continuation lines start directly at column 0,
// the SV field only appears on the first line.
func formatObsLine(w *bufio.Writer, sv gnss.SV, obsTypes []gnss.Observable, data map[gnss.Observable]ObsData) error {
	line := sv.String()
	for i, obsType := range obsTypes {
		if i > 0 && i%5 == 0 {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
			line = ""
		}
		d, ok := data[obsType]
		if !ok || !d.Present {
			line += fmt.Sprintf("%16s", "")
			continue
		}
		field := fmt.Sprintf("%14.3f", d.Value)
		lli := " "
		if d.LLI != nil {
			lli = fmt.Sprintf("%d", *d.LLI&0xF)
		}
		snr := " "
		if d.SNR != nil {
			snr = fmt.Sprintf("%d", *d.SNR)
		}
		line += field + lli + snr
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
