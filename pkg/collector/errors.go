package collector

import "fmt"

// ErrDiscarded records a message the collector chose not to carry into
// RINEX output (spec.md §4.9: "Closed-source messages are discarded with
// a diagnostic since RINEX has no representation for them").
type ErrDiscarded struct {
	RecordID uint32
	Reason   string
}

func (e *ErrDiscarded) Error() string {
	return fmt.Sprintf("collector: discarded record id %d: %s", e.RecordID, e.Reason)
}
