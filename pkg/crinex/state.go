package crinex

// defaultOrder is the typical Hatanaka difference-chain order used for
// observable values (spec.md §4.6 "typical 3").
const defaultOrder = 3

// valueScale converts floating-point observations (cycles or metres) to
// the integer units CRINEX transmits (spec.md §4.6 "1/1000 cycles or
// metres").
const valueScale = 1000.0

// obsState is the differential-compression state for one (SV, Observable)
// pair: a numeric diff chain for the value plus single-character
// differential state for LLI and SNR (spec.md §9: "one small struct per
// (SV, Observable) held in an ordered map; do not share mutable state
// across observables").
type obsState struct {
	value   *diffChain
	lliChar byte
	snrChar byte
}

func newObsState() *obsState {
	return &obsState{value: newDiffChain(defaultOrder)}
}

// flagChar picks the character to transmit for a flag field: ' ' ("repeat
// previous") when unchanged from the stored state, the literal character
// otherwise (spec.md §4.6 "Flag strings").
func flagChar(cur *byte, next byte) byte {
	if cur != nil && *cur == next {
		return ' '
	}
	return next
}

// applyFlagChar resolves a received flag character against the stored
// state: ' ' means "keep previous", anything else replaces it.
func applyFlagChar(stored byte, received byte) byte {
	if received == ' ' {
		return stored
	}
	return received
}
