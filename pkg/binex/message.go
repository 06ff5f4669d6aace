package binex

// Record is implemented by every BINEX record payload this package can
// interpret, plus ClosedSource for everything it can only preserve
// (spec.md §3.5).
type Record interface {
	isRecord()
}

// Message is one decoded BINEX stream element: its framing metadata plus
// the typed record it carries.
type Message struct {
	Meta   Meta
	Record Record
}
