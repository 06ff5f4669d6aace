package binex

import (
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// gpsOrigin is the reference instant date/ms prefixes are counted from:
// the GPS time origin, 1980-01-06T00:00:00 GPST.
var gpsOrigin = gnss.NewEpoch(time.Date(1980, 1, 6, 0, 0, 0, 0, time.UTC), gnss.GPST)

const msPerDay = 86_400_000

// encodeEpochPrefix writes the 4-byte date + 2-byte millisecond-of-day
// prefix shared by MonumentGeo and Solutions records (spec.md §4.7). The
// reference Rust implementation derives these two fields from an internal
// time representation (hifitime's Epoch/Duration) not otherwise specified
// by the material available here; this package instead defines date as
// whole days since the GPS time origin (1980-01-06) and ms as
// milliseconds into that GPS day, a self-consistent scheme that
// round-trips exactly through decodeEpochPrefix (an Open Question
// decision, see DESIGN.md).
func encodeEpochPrefix(e gnss.Epoch, bigEndian bool, buf []byte) {
	order := orderOf(bigEndian)
	days, msOfDay := gpsDayMs(e)
	order.PutUint32(buf[0:4], days)
	order.PutUint16(buf[4:6], msOfDay)
}

func decodeEpochPrefix(bigEndian bool, buf []byte) gnss.Epoch {
	order := orderOf(bigEndian)
	days := order.Uint32(buf[0:4])
	ms := order.Uint16(buf[4:6])
	return epochFromGpsDayMs(days, ms)
}

func gpsDayMs(e gnss.Epoch) (days uint32, msOfDay uint16) {
	d := e.ConvertTo(gnss.GPST).Sub(gpsOrigin).Seconds()
	if d < 0 {
		d = 0
	}
	totalMs := int64(d * 1000)
	return uint32(totalMs / msPerDay), uint16(totalMs % msPerDay)
}

func epochFromGpsDayMs(days uint32, ms uint16) gnss.Epoch {
	total := int64(days)*msPerDay + int64(ms)
	return gnss.NewEpoch(gpsOrigin.Time.Add(time.Duration(total)*time.Millisecond), gnss.GPST)
}
