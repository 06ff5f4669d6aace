package gnss

import "fmt"

// Carrier is a GNSS broadcast frequency band.
type Carrier int

const (
	L1 Carrier = iota + 1
	L2
	L5
	L6
	E1
	E5
	E5a
	E5b
	E6
	B1I
	B1C
	B2
	B2A
	B2I
	B2B
	B3
	G1
	G2
	S
)

var carrierNames = map[Carrier]string{
	L1: "L1", L2: "L2", L5: "L5", L6: "L6",
	E1: "E1", E5: "E5", E5a: "E5a", E5b: "E5b", E6: "E6",
	B1I: "B1I", B1C: "B1C", B2: "B2", B2A: "B2A", B2I: "B2I", B2B: "B2B", B3: "B3",
	G1: "G1", G2: "G2", S: "S",
}

func (c Carrier) String() string {
	if n, ok := carrierNames[c]; ok {
		return n
	}
	return "Unknown"
}

// nominal carrier frequencies in Hz, for non-FDMA bands.
var nominalFrequency = map[Carrier]float64{
	L1: 1575.42e6, L2: 1227.60e6, L5: 1176.45e6, L6: 1278.75e6,
	E1: 1575.42e6, E5: 1191.795e6, E5a: 1176.45e6, E5b: 1207.14e6, E6: 1278.75e6,
	B1I: 1561.098e6, B1C: 1575.42e6, B2: 1191.795e6, B2A: 1176.45e6, B2I: 1207.14e6, B2B: 1207.14e6, B3: 1268.52e6,
	S: 2492.028e6,
}

// Glonass FDMA base frequency and per-channel spacing, L1 and L2 bands.
const (
	glonassL1Base    = 1602.0e6
	glonassL1Spacing = 0.5625e6
	glonassL2Base    = 1246.0e6
	glonassL2Spacing = 0.4375e6
)

// Frequency returns the nominal carrier frequency in Hz. For the Glonass
// FDMA bands (G1/G2) the result depends on the channel offset k and
// GlonassFrequency must be used instead; Frequency returns the k=0 value.
func (c Carrier) Frequency() (float64, error) {
	switch c {
	case G1:
		return glonassL1Base, nil
	case G2:
		return glonassL2Base, nil
	}
	if f, ok := nominalFrequency[c]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("gnss: no nominal frequency for carrier %s", c)
}

// GlonassFrequency computes the FDMA carrier frequency f0 + k*delta for the
// given channel offset k, for carrier bands G1 or G2.
func GlonassFrequency(band Carrier, k int8) (float64, error) {
	switch band {
	case G1:
		return glonassL1Base + float64(k)*glonassL1Spacing, nil
	case G2:
		return glonassL2Base + float64(k)*glonassL2Spacing, nil
	default:
		return 0, fmt.Errorf("gnss: %s is not a Glonass FDMA band", band)
	}
}

// ErrUnknownCarrier reports a (constellation, observable-code) pair with no
// known carrier. CarrierOf returns it for pairs outside the RINEX registry;
// it maps Glonass codes to G1/G2 whatever the FDMA channel offset.
type ErrUnknownCarrier struct {
	Constellation Constellation
	Code          string
}

func (e *ErrUnknownCarrier) Error() string {
	return fmt.Sprintf("gnss: no carrier for %s code %q", e.Constellation, e.Code)
}

// carrierRegistry maps (constellation, 1st char of the 2-3 char signal
// code) to a carrier band. This is the RINEX-3/4 "band" digit used in
// observation codes like "1C", "2W", "5Q", "7Q", "6A"...
var carrierRegistry = map[Constellation]map[byte]Carrier{
	GPS:     {'1': L1, '2': L2, '5': L5},
	QZSS:    {'1': L1, '2': L2, '5': L5, '6': L6},
	Glonass: {'1': G1, '2': G2, '3': L5},
	Galileo: {'1': E1, '5': E5a, '7': E5b, '8': E5, '6': E6},
	BeiDou:  {'1': B1I, '2': B1I, '5': B2A, '6': B3, '7': B2I, '8': B2, '9': B2B},
	IRNSS:   {'5': L5, '9': S},
	SBAS:    {'1': L1, '5': L5},
}

// CarrierOf returns the unique carrier band broadcasting the given
// observable code (e.g. "1C", "5Q") for a constellation. Meteo observables
// (which carry no band digit) must not be passed here.
func CarrierOf(c Constellation, code string) (Carrier, error) {
	if len(code) == 0 {
		return 0, &ErrUnknownCarrier{Constellation: c, Code: code}
	}
	bands, ok := carrierRegistry[c]
	if !ok {
		return 0, &ErrUnknownCarrier{Constellation: c, Code: code}
	}
	band, ok := bands[code[0]]
	if !ok {
		return 0, &ErrUnknownCarrier{Constellation: c, Code: code}
	}
	return band, nil
}
