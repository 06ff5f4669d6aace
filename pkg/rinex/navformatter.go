package rinex

import (
	"bufio"
	"fmt"
	"io"
	"time"
)

// formatNavEpoch renders the 19-column "yyyy mm dd hh mm ss" time-of-clock
// field used by broadcast ephemeris records (integer seconds only, unlike
// the fractional-second epoch lines in Observation data).
func formatNavEpoch(t time.Time) string {
	return fmt.Sprintf("%4d %02d %02d %02d %02d %02d", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
}

// EncodeNavigation writes rec to w in RINEX-3/4 form.
func EncodeNavigation(w io.Writer, rec *NavRecord) error {
	bw := bufio.NewWriter(w)
	if rec.Header.Version < 3 {
		rec.Header.Version = 3.04
	}
	if err := rec.Header.FormatCommon(bw, ""); err != nil {
		return err
	}
	for _, eph := range rec.Ephs {
		if err := formatEph(bw, eph); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func navField(v float64) string { return fmt.Sprintf("%19.12E", v) }

func formatEph(w *bufio.Writer, eph Eph) error {
	switch e := eph.(type) {
	case *EphKeplerian:
		return formatEphKeplerian(w, e)
	case *EphGlonass:
		return formatEphGlonass(w, e)
	case *EphSBAS:
		return formatEphSBAS(w, e)
	default:
		return fmt.Errorf("rinex: unsupported ephemeris type %T", eph)
	}
}

func formatEphKeplerian(w *bufio.Writer, e *EphKeplerian) error {
	lines := []string{
		fmt.Sprintf("%-3s %s%s%s%s", e.SV.String(), formatNavEpoch(e.TOC.Time),
			navField(e.ClockBias), navField(e.ClockDrift), navField(e.ClockDriftRate)),
		fmt.Sprintf("    %s%s%s%s", navField(e.IODE), navField(e.Crs), navField(e.DeltaN), navField(e.M0)),
		fmt.Sprintf("    %s%s%s%s", navField(e.Cuc), navField(e.Ecc), navField(e.Cus), navField(e.SqrtA)),
		fmt.Sprintf("    %s%s%s%s", navField(e.Toe), navField(e.Cic), navField(e.Omega0), navField(e.Cis)),
		fmt.Sprintf("    %s%s%s%s", navField(e.I0), navField(e.Crc), navField(e.Omega), navField(e.OmegaDot)),
		fmt.Sprintf("    %s%s%s%s", navField(e.IDOT), navField(e.Codes), navField(e.ToeWeek), navField(e.L2PFlag)),
		fmt.Sprintf("    %s%s%s%s", navField(e.URA), navField(e.Health), navField(e.TGD), navField(e.IODC)),
		fmt.Sprintf("    %s%s", navField(e.TransmissionTime), navField(e.FitInterval)),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func formatEphGlonass(w *bufio.Writer, e *EphGlonass) error {
	lines := []string{
		fmt.Sprintf("%-3s %s%s%s%s", e.SV.String(), formatNavEpoch(e.TOC.Time),
			navField(-e.TauN), navField(e.GammaN), navField(e.MessageFrameTime)),
		fmt.Sprintf("    %s%s%s%s", navField(e.X), navField(e.VX), navField(e.AX), navField(e.Health)),
		fmt.Sprintf("    %s%s%s%s", navField(e.Y), navField(e.VY), navField(e.AY), navField(e.FreqNum)),
		fmt.Sprintf("    %s%s%s%s", navField(e.Z), navField(e.VZ), navField(e.AZ), navField(e.AgeOfOperation)),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func formatEphSBAS(w *bufio.Writer, e *EphSBAS) error {
	lines := []string{
		fmt.Sprintf("%-3s %s%s%s%s", e.SV.String(), formatNavEpoch(e.TOC.Time),
			navField(e.ClockBias), navField(e.RelativeFreqBias), navField(e.MessageTransmissionTime)),
		fmt.Sprintf("    %s%s%s%s", navField(e.X), navField(e.VX), navField(e.AX), navField(e.Health)),
		fmt.Sprintf("    %s%s%s%s", navField(e.Y), navField(e.VY), navField(e.AY), navField(e.URA)),
		fmt.Sprintf("    %s%s%s%s", navField(e.Z), navField(e.VZ), navField(e.AZ), navField(e.IODN)),
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}
