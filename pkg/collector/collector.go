package collector

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/de-bkg/gnssdata/pkg/binex"
	"github.com/de-bkg/gnssdata/pkg/crinex"
	"github.com/de-bkg/gnssdata/pkg/gnss"
	"github.com/de-bkg/gnssdata/pkg/rinex"
)

// Collector drives a BINEX message stream into RINEX Navigation and
// Observation files on the schedule described by its Config (spec.md
// §4.9). It is fed one message at a time, in wall-clock order, exactly
// the way the teacher's ObsDecoder is fed one line at a time.
type Collector struct {
	cfg Config

	started     bool
	periodStart time.Time
	periodEnd   time.Time

	nav           *rinex.NavRecord
	obsHeader     rinex.Header
	obsHeaderInit bool
	lastEpoch     gnss.Epoch

	seenMessages int64
	seenBytes    int64

	diagnostics []string
}

// New validates cfg and builds a Collector.
func New(cfg Config) (*Collector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Collector{cfg: cfg}, nil
}

// Diagnostics returns the non-fatal issues observed since the collector
// was created: discarded records, dropped late messages, write failures.
func (c *Collector) Diagnostics() []string { return c.diagnostics }

func (c *Collector) diag(msg string) { c.diagnostics = append(c.diagnostics, msg) }

// Feed consumes one decoded BINEX message. It returns the path of the
// Navigation file written on a call that closes a period holding at least
// one ephemeris, and ("", false) otherwise; closing a period without
// ephemerides writes only the Observation file and reports no path.
// Messages arriving for an already-closed period are dropped, not
// back-filled (spec.md §4.9 "Ordering").
func (c *Collector) Feed(msg *binex.Message) (string, bool) {
	c.seenMessages++
	c.seenBytes += int64(msg.Meta.Length)

	epoch, hasEpoch, eph, keep, diagMsg := c.classify(msg)
	if diagMsg != "" {
		c.diag(diagMsg)
	}

	if c.postponed(epoch, hasEpoch) {
		return "", false
	}
	if !keep {
		return "", false
	}

	if !c.started {
		c.openPeriod(epoch)
		c.started = true
	}

	t := epoch.ConvertTo(gnss.UTC).Time
	if t.Before(c.periodStart) {
		c.diag(fmt.Sprintf("collector: dropped late message for period ending %s (epoch %s)", c.periodEnd, t))
		return "", false
	}

	var path string
	var emitted bool
	if !t.Before(c.periodEnd) {
		path, emitted = c.flush()
		c.openPeriod(epoch)
	}

	if eph != nil {
		c.nav.Ephs = append(c.nav.Ephs, eph)
		c.lastEpoch = epoch
	}

	return path, emitted
}

// Flush closes the current period unconditionally (e.g. at end of
// stream) and returns the emitted path, if any.
func (c *Collector) Flush() (string, bool) {
	if !c.started {
		return "", false
	}
	return c.flush()
}

// classify determines how msg's record maps onto the RINEX model.
// ClosedSource and Solutions (PVT) records have no RINEX representation
// and are always discarded (spec.md §4.9). MonumentGeo carries no epoched
// record of its own; it seeds the Observation header's site/receiver/
// antenna metadata instead (an Open Question decision recorded in
// DESIGN.md — the teacher corpus has no observation-bearing BINEX record
// to drive, so MonumentGeo's station fields are the only BINEX input this
// collector can route into an Observation header).
func (c *Collector) classify(msg *binex.Message) (epoch gnss.Epoch, hasEpoch bool, eph rinex.Eph, keep bool, diagMsg string) {
	switch rec := msg.Record.(type) {
	case *binex.ClosedSource:
		return gnss.Epoch{}, false, nil, false,
			fmt.Sprintf("collector: discarded closed-source record id %d (%s): no RINEX representation", rec.RecordID, rec.Provider)

	case *binex.Solutions:
		return rec.Epoch, true, nil, false,
			"collector: discarded Solutions (PVT) record: no RINEX Observation representation"

	case *binex.MonumentGeo:
		c.absorbMonumentGeo(rec)
		return rec.Epoch, true, nil, false, ""

	default:
		eph, ok := ephemerisFromRecord(rec, c.lastEpoch)
		if !ok {
			return gnss.Epoch{}, false, nil, false, "collector: dropped unrecognised record"
		}
		return eph.ReferenceEpoch(), true, eph, true, ""
	}
}

func (c *Collector) absorbMonumentGeo(rec *binex.MonumentGeo) {
	for _, f := range rec.Frames {
		if !f.Known {
			continue
		}
		switch f.FieldID {
		case binex.MonumentGeoSiteName, binex.MonumentGeoFourCharSiteID:
			c.obsHeader.MarkerName = f.Text
		case binex.MonumentGeoMonumentNum:
			c.obsHeader.MarkerNumber = f.Text
		case binex.MonumentGeoObserver:
			c.obsHeader.Observer = f.Text
		case binex.MonumentGeoAgency:
			c.obsHeader.Agency = f.Text
		case binex.MonumentGeoAntennaType:
			c.obsHeader.AntennaType = f.Text
		case binex.MonumentGeoReceiverType:
			c.obsHeader.ReceiverType = f.Text
		}
	}
}

// postponed reports whether msg should be silently ignored under the
// configured Postponement (spec.md §4.9).
func (c *Collector) postponed(epoch gnss.Epoch, hasEpoch bool) bool {
	switch c.cfg.Postponement.Kind {
	case PostponeNone:
		return false
	case PostponeUntilSystemTime:
		if !hasEpoch {
			return true
		}
		return epoch.Before(c.cfg.Postponement.SystemTime)
	case PostponeAfterBytes:
		return c.seenBytes < c.cfg.Postponement.AfterBytes
	case PostponeAfterMessages:
		return c.seenMessages < c.cfg.Postponement.AfterMessages
	default:
		return false
	}
}

func (c *Collector) openPeriod(epoch gnss.Epoch) {
	t := epoch.ConvertTo(gnss.UTC).Time
	c.periodStart, c.periodEnd = c.bounds(t)
	c.nav = &rinex.NavRecord{Header: c.newHeader("N")}
	if !c.obsHeaderInit {
		seeded := c.obsHeader
		c.obsHeader = c.newHeader("O")
		c.obsHeader.MarkerName = seeded.MarkerName
		c.obsHeader.MarkerNumber = seeded.MarkerNumber
		c.obsHeader.Observer = seeded.Observer
		c.obsHeader.Agency = seeded.Agency
		c.obsHeader.AntennaType = seeded.AntennaType
		c.obsHeader.ReceiverType = seeded.ReceiverType
		c.obsHeaderInit = true
	}
}

// bounds resolves t into the [start, end) window of the period it falls
// in, per the configured Periodicity.
func (c *Collector) bounds(t time.Time) (start, end time.Time) {
	switch c.cfg.Periodicity {
	case DailyMidnight:
		start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return start, start.Add(24 * time.Hour)
	case DailyMidnightAndNoon:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		noon := day.Add(12 * time.Hour)
		if t.Before(noon) {
			return day, noon
		}
		return noon, day.Add(24 * time.Hour)
	case Hourly:
		start = time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, time.UTC)
		return start, start.Add(time.Hour)
	case Periodic:
		interval := c.cfg.PeriodicInterval
		bucket := t.UnixNano() - t.UnixNano()%int64(interval)
		start = time.Unix(0, bucket).UTC()
		return start, start.Add(interval)
	default:
		return t, t.Add(24 * time.Hour)
	}
}

func (c *Collector) newHeader(fileType string) rinex.Header {
	return rinex.Header{
		Version:       3.04,
		FileType:      fileType,
		Constellation: gnss.Mixed,
		MarkerName:    c.cfg.Station,
		Pgm:           "gnssdata-collector",
		Date:          "",
	}
}

// filePeriodCode maps Periodicity onto the RINEX-3 filename's
// period-production-unit field (spec.md §6.1).
func (c *Collector) filePeriodCode() string {
	switch c.cfg.Periodicity {
	case Hourly:
		return "01H"
	case DailyMidnight, DailyMidnightAndNoon:
		return "01D"
	case Periodic:
		switch c.cfg.PeriodicInterval {
		case time.Hour:
			return "01H"
		case 24 * time.Hour:
			return "01D"
		default:
			return "00U"
		}
	default:
		return "00U"
	}
}

// flush writes out the accumulated Navigation record (if it carries any
// ephemerides) and an Observation file carrying only the MonumentGeo-
// derived header (spec.md §8 "Empty record" boundary), using the CRINEX
// encoder when Config.Crinex is set. It returns the Navigation file's
// path, matching the single path_emitted contract of spec.md §4.9 (the
// Observation companion file's name differs in its data-type field, MO
// instead of MN, and in its extension when Config.Crinex is set).
func (c *Collector) flush() (string, bool) {
	defer func() { c.nav = nil }()

	var navPath string
	var navEmitted bool
	if c.nav != nil && len(c.nav.Ephs) > 0 {
		sort.Slice(c.nav.Ephs, func(i, j int) bool {
			return c.nav.Ephs[i].Satellite().Less(c.nav.Ephs[j].Satellite())
		})
		var err error
		navPath, err = c.writeNav()
		if err != nil {
			c.diag(err.Error())
		} else {
			navEmitted = true
		}
	}

	if err := c.writeObs(); err != nil {
		c.diag(err.Error())
	}

	return navPath, navEmitted
}

func (c *Collector) writeNav() (string, error) {
	name, err := c.filename("MN", "rnx")
	if err != nil {
		return "", err
	}
	path := filepath.Join(c.cfg.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if err := rinex.EncodeNavigation(f, c.nav); err != nil {
		return "", err
	}
	return path, nil
}

func (c *Collector) writeObs() error {
	rec := &rinex.ObservationRecord{Header: c.obsHeader}
	rec.Header.TimeOfFirstObs = c.periodStart
	rec.Header.TimeOfLastObs = c.periodEnd

	ext := "rnx"
	if c.cfg.Crinex {
		ext = "crx"
	}
	name, err := c.filename("MO", ext)
	if err != nil {
		return err
	}
	path := filepath.Join(c.cfg.OutputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if c.cfg.Crinex {
		body, err := crinex.Compress(rec)
		if err != nil {
			return err
		}
		_, err = f.Write(body)
		return err
	}
	return rinex.EncodeObservation(f, rec)
}

func (c *Collector) filename(dataType, format string) (string, error) {
	fn := rinex.FileName{
		Station:     c.cfg.Station,
		CountryCode: c.cfg.CountryCode,
		DataSource:  "S",
		StartTime:   c.periodStart,
		FilePeriod:  c.filePeriodCode(),
		SampleRate:  "00U",
		DataType:    dataType,
		Format:      format,
	}
	return fn.Rnx3Name()
}
