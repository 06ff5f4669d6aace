package rinex

import (
	"strconv"
	"strings"

	"github.com/de-bkg/gnssdata/pkg/gnss"
)

// Eph is implemented by every broadcast ephemeris/almanac record kind this
// package decodes. Satellite() and ReferenceEpoch() are what the analysis
// package's ephemeris selection needs regardless of concrete type.
type Eph interface {
	Satellite() gnss.SV
	ReferenceEpoch() gnss.Epoch
}

// EphKeplerian is the broadcast orbit message shared by GPS, Galileo,
// BeiDou, QZSS and IRNSS: a degraded two-body Keplerian orbit plus
// perturbation terms, refreshed every broadcast cycle (spec.md §4.5). Field
// names follow the GPS LNAV message; Galileo/BeiDou/QZSS/IRNSS reuse the
// same slots for their ICD-equivalent terms (e.g. TGD holds BGD_E5a for
// Galileo) rather than duplicating the struct.
type EphKeplerian struct {
	SV  gnss.SV
	TOC gnss.Epoch

	ClockBias      float64
	ClockDrift     float64
	ClockDriftRate float64

	IODE   float64
	Crs    float64
	DeltaN float64
	M0     float64

	Cuc   float64
	Ecc   float64
	Cus   float64
	SqrtA float64

	Toe    float64
	Cic    float64
	Omega0 float64
	Cis    float64

	I0       float64
	Crc      float64
	Omega    float64
	OmegaDot float64

	IDOT     float64
	Codes    float64 // codes on L2 (GPS) / data sources (Galileo/BeiDou)
	ToeWeek  float64
	L2PFlag  float64 // L2 P data flag (GPS only)

	URA    float64
	Health float64
	TGD    float64
	IODC   float64 // IODC (GPS) / IODNAV (Galileo) / AODC (BeiDou)

	TransmissionTime float64
	FitInterval      float64
}

func (e *EphKeplerian) Satellite() gnss.SV         { return e.SV }
func (e *EphKeplerian) ReferenceEpoch() gnss.Epoch { return e.TOC }

// EphGlonass is the GLONASS broadcast ephemeris: a state vector (position,
// velocity, luni-solar acceleration) in PZ-90 plus clock terms, valid for a
// short window around TOC rather than a Keplerian model (spec.md §4.5).
type EphGlonass struct {
	SV  gnss.SV
	TOC gnss.Epoch

	TauN              float64
	GammaN            float64
	MessageFrameTime  float64

	X, VX, AX float64
	Health    float64

	Y, VY, AY float64
	FreqNum   float64

	Z, VZ, AZ      float64
	AgeOfOperation float64
}

func (e *EphGlonass) Satellite() gnss.SV         { return e.SV }
func (e *EphGlonass) ReferenceEpoch() gnss.Epoch { return e.TOC }

// EphSBAS is the SBAS broadcast ephemeris: the same state-vector shape as
// GLONASS, without the FDMA frequency slot.
type EphSBAS struct {
	SV  gnss.SV
	TOC gnss.Epoch

	ClockBias                 float64
	RelativeFreqBias          float64
	MessageTransmissionTime   float64

	X, VX, AX float64
	Health    float64

	Y, VY, AY float64
	URA       float64

	Z, VZ, AZ float64
	IODN      float64
}

func (e *EphSBAS) Satellite() gnss.SV         { return e.SV }
func (e *EphSBAS) ReferenceEpoch() gnss.Epoch { return e.TOC }

// NavHeader extends Header with nothing beyond the common model; kept as a
// named alias for symmetry with ObsHeader.
type NavHeader = Header

// NavRecord is a decoded Navigation file: header plus every ephemeris
// entry in file order (possibly several per satellite, one per broadcast).
type NavRecord struct {
	Header Header
	Ephs   []Eph
}

// parseNavFloat parses one fixed-width broadcast-orbit field, tolerating
// the legacy Fortran "D" exponent character alongside "E".
func parseNavFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.Replace(s, "D", "E", 1)
	s = strings.Replace(s, "d", "e", 1)
	return strconv.ParseFloat(s, 64)
}

// navFieldWidth is the fixed width of each broadcast-orbit float column.
const navFieldWidth = 19

// parseNavFloats reads up to 4 navFieldWidth-wide fields from a navigation
// continuation line, starting at the fixed prefix offset. Trailing fields
// that don't exist in a short line default to zero: broadcast messages
// sometimes omit the final (spare) slot (spec.md §4.5 edge case).
func parseNavFloats(line string, prefix int) (f [4]float64, err error) {
	for i := 0; i < 4; i++ {
		start := prefix + i*navFieldWidth
		if start >= len(line) {
			break
		}
		end := start + navFieldWidth
		if end > len(line) {
			end = len(line)
		}
		v, perr := parseNavFloat(line[start:end])
		if perr != nil {
			return f, perr
		}
		f[i] = v
	}
	return f, nil
}
