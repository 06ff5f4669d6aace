package rinex

import (
	"fmt"
	"sort"
	"time"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// EpochRelation selects epochs relative to a time window for Mask.
type EpochRelation struct {
	From, To gnss.Epoch
}

func (r EpochRelation) contains(e gnss.Epoch) bool {
	if !r.From.Time.IsZero() && e.Before(r.From) {
		return false
	}
	if !r.To.Time.IsZero() && e.After(r.To) {
		return false
	}
	return true
}

// MaskOptions narrows an ObservationRecord along several independent axes;
// a zero-value field leaves that axis unfiltered (spec.md §8 "mask
// operations compose: applying an empty mask is the identity").
type MaskOptions struct {
	Epochs        *EpochRelation
	SVs           map[gnss.SV]bool
	Constellations gnss.Constellations
	Observables   map[gnss.Observable]bool
	MinSNR        *SNR
}

// Mask returns a new ObservationRecord keeping only the epochs, satellites
// and observables MaskOptions allows. The source record is never mutated
// (spec.md §8: "processing operations are pure functions over records").
func Mask(rec *ObservationRecord, opt MaskOptions) *ObservationRecord {
	out := &ObservationRecord{Header: rec.Header}
	for _, epo := range rec.Epochs {
		if opt.Epochs != nil && !opt.Epochs.contains(epo.Key.Epoch) {
			continue
		}
		newEpo := ObsEpoch{Key: epo.Key, ClockOffset: epo.ClockOffset, SVs: map[gnss.SV]map[gnss.Observable]ObsData{}}
		for sv, obsMap := range epo.SVs {
			if !maskAllowsSV(opt, sv) {
				continue
			}
			filtered := map[gnss.Observable]ObsData{}
			for obs, data := range obsMap {
				if opt.Observables != nil && !opt.Observables[obs] {
					continue
				}
				if opt.MinSNR != nil && (data.SNR == nil || *data.SNR < *opt.MinSNR) {
					continue
				}
				filtered[obs] = data
			}
			if len(filtered) > 0 {
				newEpo.SVs[sv] = filtered
			}
		}
		if len(newEpo.SVs) > 0 {
			out.Epochs = append(out.Epochs, newEpo)
		}
	}
	return out
}

// MaskInPlace applies opt to rec's own epoch slice, preserving key order,
// instead of returning a new record (spec.md §5: "a parallel in-place
// variant must preserve key ordering... there is no interior mutability"
// beyond the caller's own exclusive access).
func MaskInPlace(rec *ObservationRecord, opt MaskOptions) {
	kept := rec.Epochs[:0]
	for _, epo := range rec.Epochs {
		if opt.Epochs != nil && !opt.Epochs.contains(epo.Key.Epoch) {
			continue
		}
		for sv, obsMap := range epo.SVs {
			if !maskAllowsSV(opt, sv) {
				delete(epo.SVs, sv)
				continue
			}
			for obs, data := range obsMap {
				if opt.Observables != nil && !opt.Observables[obs] {
					delete(obsMap, obs)
					continue
				}
				if opt.MinSNR != nil && (data.SNR == nil || *data.SNR < *opt.MinSNR) {
					delete(obsMap, obs)
				}
			}
			if len(obsMap) == 0 {
				delete(epo.SVs, sv)
			}
		}
		if len(epo.SVs) > 0 {
			kept = append(kept, epo)
		}
	}
	rec.Epochs = kept
}

func maskAllowsSV(opt MaskOptions, sv gnss.SV) bool {
	if opt.SVs != nil && !opt.SVs[sv] {
		return false
	}
	if opt.Constellations != nil && !opt.Constellations.Contains(sv.Constellation) {
		return false
	}
	return true
}

// Decimate keeps every nth epoch (ratio-based) or, if minInterval > 0, the
// first epoch and then each epoch at least minInterval after the previously
// kept one (spec.md §8: "decimation must be idempotent: decimating an already
// decimated stream at the same interval is a no-op").
func Decimate(rec *ObservationRecord, ratio int, minInterval gnss.Duration) *ObservationRecord {
	out := &ObservationRecord{Header: rec.Header}
	if ratio <= 0 {
		ratio = 1
	}
	var lastKept *gnss.Epoch
	for i, epo := range rec.Epochs {
		if minInterval > 0 {
			if lastKept != nil && epo.Key.Epoch.Sub(*lastKept).Seconds() < minInterval.Seconds() {
				continue
			}
			e := epo.Key.Epoch
			lastKept = &e
			out.Epochs = append(out.Epochs, epo)
			continue
		}
		if i%ratio == 0 {
			out.Epochs = append(out.Epochs, epo)
		}
	}
	return out
}

// DecimateInPlace applies Decimate's ratio/minInterval selection to rec's
// own epoch slice instead of returning a new record.
func DecimateInPlace(rec *ObservationRecord, ratio int, minInterval gnss.Duration) {
	if ratio <= 0 {
		ratio = 1
	}
	kept := rec.Epochs[:0]
	var lastKept *gnss.Epoch
	for i, epo := range rec.Epochs {
		if minInterval > 0 {
			if lastKept != nil && epo.Key.Epoch.Sub(*lastKept).Seconds() < minInterval.Seconds() {
				continue
			}
			e := epo.Key.Epoch
			lastKept = &e
			kept = append(kept, epo)
			continue
		}
		if i%ratio == 0 {
			kept = append(kept, epo)
		}
	}
	rec.Epochs = kept
}

// Merge combines several Observation records into one, de-duplicating by
// (epoch, flag): when two inputs carry the same epoch, the earlier record
// in args wins for any SV it already reports, and the later record fills
// in any SV the earlier one is missing (spec.md §8 "merge never overwrites
// data from a higher-priority input"). stamp is recorded as a header
// comment naming the merge instant; the core stays pure by taking it as a
// parameter rather than reading the wall clock itself (spec.md §9 "the
// merge function must take the stamp as a parameter so the core remains
// pure").
func Merge(stamp time.Time, recs ...*ObservationRecord) (*ObservationRecord, error) {
	if len(recs) == 0 {
		return nil, fmt.Errorf("rinex: Merge requires at least one record")
	}
	out := &ObservationRecord{Header: recs[0].Header}
	mergeEpochs(out, recs, stamp)
	return out, nil
}

// MergeInPlace merges recs into rec's own epoch slice, in exclusive
// mutable access to rec rather than returning a new record; rec itself is
// treated as the highest-priority (first) input.
func MergeInPlace(rec *ObservationRecord, stamp time.Time, recs ...*ObservationRecord) {
	self := &ObservationRecord{Header: rec.Header, Epochs: rec.Epochs}
	rec.Epochs = nil
	mergeEpochs(rec, append([]*ObservationRecord{self}, recs...), stamp)
}

func mergeEpochs(out *ObservationRecord, recs []*ObservationRecord, stamp time.Time) {
	byKey := map[ObsKey]*ObsEpoch{}
	var order []ObsKey

	for _, rec := range recs {
		for _, epo := range rec.Epochs {
			existing, ok := byKey[epo.Key]
			if !ok {
				copyEpo := epo
				copyEpo.SVs = map[gnss.SV]map[gnss.Observable]ObsData{}
				for sv, obs := range epo.SVs {
					copyEpo.SVs[sv] = obs
				}
				byKey[epo.Key] = &copyEpo
				order = append(order, epo.Key)
				continue
			}
			for sv, obs := range epo.SVs {
				if _, present := existing.SVs[sv]; !present {
					existing.SVs[sv] = obs
				}
			}
			if existing.ClockOffset == nil {
				existing.ClockOffset = epo.ClockOffset
			}
		}
	}

	sort.Slice(order, func(i, j int) bool {
		if !order[i].Epoch.Equal(order[j].Epoch) {
			return order[i].Epoch.Before(order[j].Epoch)
		}
		return order[i].Flag < order[j].Flag
	})
	for _, k := range order {
		out.Epochs = append(out.Epochs, *byKey[k])
	}
	out.Header.Comments = append(out.Header.Comments,
		fmt.Sprintf("merged %d records at %s", len(recs), stamp.UTC().Format(time.RFC3339)))
}

// Split divides rec into two records at the given epoch: everything
// strictly before at goes left, everything at-or-after goes right. Each
// half's header TimeOfFirstObs/TimeOfLastObs is adjusted to its own
// content (spec.md §8 "Split followed by Merge must reproduce the
// original record").
func Split(rec *ObservationRecord, at gnss.Epoch) (left, right *ObservationRecord) {
	left = &ObservationRecord{Header: rec.Header}
	right = &ObservationRecord{Header: rec.Header}
	for _, epo := range rec.Epochs {
		if epo.Key.Epoch.Before(at) {
			left.Epochs = append(left.Epochs, epo)
		} else {
			right.Epochs = append(right.Epochs, epo)
		}
	}
	adjustObsWindow(left)
	adjustObsWindow(right)
	return left, right
}

// SplitInPlace splits rec at the given epoch the same way Split does, but
// mutates rec down to its own left half (epoch < at) in place and returns
// the right half (epoch >= at) as a new record, rather than allocating
// both sides fresh.
func SplitInPlace(rec *ObservationRecord, at gnss.Epoch) (right *ObservationRecord) {
	right = &ObservationRecord{Header: rec.Header}
	left := rec.Epochs[:0]
	for _, epo := range rec.Epochs {
		if epo.Key.Epoch.Before(at) {
			left = append(left, epo)
		} else {
			right.Epochs = append(right.Epochs, epo)
		}
	}
	rec.Epochs = left
	adjustObsWindow(rec)
	adjustObsWindow(right)
	return right
}

func adjustObsWindow(rec *ObservationRecord) {
	if len(rec.Epochs) == 0 {
		return
	}
	rec.Header.TimeOfFirstObs = rec.Epochs[0].Key.Epoch.Time
	rec.Header.TimeOfLastObs = rec.Epochs[len(rec.Epochs)-1].Key.Epoch.Time
}
