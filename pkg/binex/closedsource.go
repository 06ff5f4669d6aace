package binex

// ClosedSource is a preserved, uninterpreted vendor-specific record
// (spec.md §3.5): everything needed to re-encode it byte-identically, but
// nothing a caller can introspect.
type ClosedSource struct {
	RecordID uint32
	Provider Provider
	Payload  []byte
}

func (r *ClosedSource) isRecord() {}
