package collector

import (
	"time"

	"github.com/de-bkg/gnssdata/pkg/binex"
	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
)

// gpsWeekOrigin is the GPS time origin (1980-01-06T00:00:00 GPST), used to
// resolve a BINEX ephemeris frame's week+tow pair into an absolute epoch
// the same way pkg/binex's own MonumentGeo/Solutions epoch prefix does
// (pkg/binex/epoch.go's gpsOrigin).
var gpsWeekOrigin = gnss.NewEpoch(time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC), gnss.GPST)

func gpsWeekTow(week int, towSeconds float64) gnss.Epoch {
	d := gnss.DurationFromWeekSeconds(week, towSeconds)
	return gnss.NewEpoch(gpsWeekOrigin.Time.Add(time.Duration(d)), gnss.GPST)
}

// ephemerisFromRecord converts a decoded BINEX ephemeris record into the
// RINEX navigation model (pkg/rinex.Eph), grounded on pkg/rinex/nav.go's
// EphKeplerian/EphGlonass/EphSBAS field layout. fallback supplies the
// reference epoch for the Glonass/SBAS frames, whose payload (spec.md
// §4.7's "analogous layout" note) carries no absolute week number of its
// own — the collector's last-known epoch is the best available anchor
// (an Open Question decision, see DESIGN.md).
func ephemerisFromRecord(rec binex.Record, fallback gnss.Epoch) (rinex.Eph, bool) {
	switch e := rec.(type) {
	case *binex.GPSEphemeris:
		toc := gpsWeekTow(int(e.Toe), float64(e.Toc))
		return &rinex.EphKeplerian{
			SV:             gnss.SV{Constellation: gnss.GPS, PRN: e.SvPrn},
			TOC:            toc,
			ClockBias:      float64(e.ClockOffset),
			ClockDrift:     float64(e.ClockDrift),
			ClockDriftRate: float64(e.ClockDriftRate),
			IODE:           float64(e.Iode),
			IODC:           float64(e.Iodc),
			DeltaN:         float64(e.DeltaNRadS),
			M0:             e.M0Rad,
			Ecc:            e.E,
			SqrtA:          e.SqrtA,
			Cic:            float64(e.Cic),
			Crc:            float64(e.Crc),
			Cis:            float64(e.Cis),
			Crs:            float64(e.Crs),
			Cuc:            float64(e.Cuc),
			Cus:            float64(e.Cus),
			Omega0:         e.Omega0Rad,
			Omega:          e.OmegaRad,
			I0:             e.I0Rad,
			OmegaDot:       float64(e.OmegaDotRadS),
			IDOT:           float64(e.IDotRadS),
			URA:            float64(e.URAM),
			Health:         float64(e.SvHealth),
			TGD:            float64(e.Tgd),
			ToeWeek:        float64(e.Toe),
			Toe:            float64(e.Tow),
		}, true

	case *binex.GalEphemeris:
		toc := gpsWeekTow(int(e.ToeWeek), float64(e.Tow))
		return &rinex.EphKeplerian{
			SV:             gnss.SV{Constellation: gnss.Galileo, PRN: e.SvPrn},
			TOC:            toc,
			ClockBias:      float64(e.ClockOffset),
			ClockDrift:     float64(e.ClockDrift),
			ClockDriftRate: float64(e.ClockDriftRate),
			IODE:           float64(e.Iodnav),
			IODC:           float64(e.Iodnav),
			DeltaN:         float64(e.DeltaNSemiCircS),
			M0:             e.M0Rad,
			Ecc:            e.E,
			SqrtA:          e.SqrtA,
			Cic:            float64(e.Cic),
			Crc:            float64(e.Crc),
			Cis:            float64(e.Cis),
			Crs:            float64(e.Crs),
			Cuc:            float64(e.Cuc),
			Cus:            float64(e.Cus),
			Omega0:         e.Omega0Rad,
			Omega:          e.OmegaRad,
			I0:             e.I0Rad,
			OmegaDot:       float64(e.OmegaDotSemiCirc),
			IDOT:           float64(e.IDotSemiCircS),
			URA:            float64(e.Sisa),
			Health:         float64(e.SvHealth),
			TGD:            float64(e.BgdE5aE1S),
			ToeWeek:        float64(e.ToeWeek),
			Toe:            float64(e.ToeS),
		}, true

	case *binex.GlonassEphemeris:
		return &rinex.EphGlonass{
			SV:               gnss.SV{Constellation: gnss.Glonass, PRN: e.SvSlot},
			TOC:              fallback.ConvertTo(gnss.GLONASST),
			MessageFrameTime: float64(e.Tk),
			X:                e.X, Y: e.Y, Z: e.Z,
			VX: e.Vx, VY: e.Vy, VZ: e.Vz,
			AX: float64(e.Ax), AY: float64(e.Ay), AZ: float64(e.Az),
			TauN:    -float64(e.ClockOffset),
			FreqNum: float64(e.FreqNum),
			Health:  float64(e.Health),
		}, true

	case *binex.SBASEphemeris:
		return &rinex.EphSBAS{
			SV:   gnss.SV{Constellation: gnss.SBAS, PRN: e.SvPrn},
			TOC:  fallback,
			X:    e.X, Y: e.Y, Z: e.Z,
		}, true

	default:
		return nil, false
	}
}
