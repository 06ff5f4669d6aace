// Package crinex implements the Hatanaka text-differential compressor and
// decompressor layered over RINEX Observation data (spec.md §4.6), in the
// Go-native differencing-state idiom shown by the satoshi-pes CRINEX
// reader's sequential scanner (other_examples/0642deb7_satoshi-pes-crinex__reader.go.go)
// adapted into per-(SV,Observable) state objects per spec.md §9.
package crinex

// diffChain holds the Nth-order difference state used to compress and
// decompress one numeric series (an observable value, or the per-epoch
// fractional-second field). spec.md §4.6: "an integer Kalman-like
// difference chain of configurable order N".
type diffChain struct {
	order int
	s     []int64 // s[0] = current absolute value, s[k] = kth difference
	init  bool
}

func newDiffChain(order int) *diffChain {
	if order < 1 {
		order = 1
	}
	return &diffChain{order: order, s: make([]int64, order+1)}
}

// reset reinitialises the chain to an absolute value, as if a leading "&N"
// had just been received (spec.md §4.6 "Reset").
func (d *diffChain) reset(value int64) {
	for i := range d.s {
		d.s[i] = 0
	}
	d.s[0] = value
	d.init = true
}

// step pushes a new absolute value through the chain and returns the
// Nth-order difference to transmit (spec.md §4.6 "Step").
func (d *diffChain) step(value int64) int64 {
	prev := make([]int64, len(d.s))
	copy(prev, d.s)

	d.s[0] = value
	for k := 1; k <= d.order; k++ {
		d.s[k] = d.s[k-1] - prev[k-1]
	}
	return d.s[d.order]
}

// decodeStep reconstructs the next absolute value from a transmitted
// Nth-order difference, the inverse of step.
func (d *diffChain) decodeStep(diff int64) int64 {
	prev := make([]int64, len(d.s))
	copy(prev, d.s)

	d.s[d.order] = diff
	for k := d.order; k >= 1; k-- {
		d.s[k-1] = d.s[k] + prev[k-1]
	}
	return d.s[0]
}

// value returns the chain's current reconstructed absolute value.
func (d *diffChain) value() int64 { return d.s[0] }
