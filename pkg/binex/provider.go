package binex

// Provider identifies the organisation behind a closed-source BINEX
// record, derived purely from the record ID range (spec.md §3.5, grounded
// on original_source/binex/src/stream.rs's Provider::match_any).
type Provider int

const (
	ProviderUnknown Provider = iota
	ProviderUCAR
	ProviderAshtech
	ProviderTopcon
	ProviderGPSSolutions
	ProviderNRCan
	ProviderJPL
	ProviderCUBoulder
)

func (p Provider) String() string {
	switch p {
	case ProviderUCAR:
		return "UCAR"
	case ProviderAshtech:
		return "Ashtech"
	case ProviderTopcon:
		return "Topcon"
	case ProviderGPSSolutions:
		return "GPSSolutions"
	case ProviderNRCan:
		return "NRCan"
	case ProviderJPL:
		return "JPL"
	case ProviderCUBoulder:
		return "CU Boulder"
	default:
		return "Unknown"
	}
}

// matchProvider identifies a closed-source provider from a record ID, or
// ProviderUnknown if it falls outside every disclosed range.
func matchProvider(recordID uint32) Provider {
	switch {
	case recordID >= 0x80 && recordID < 0x88:
		return ProviderUCAR
	case recordID >= 0x88 && recordID < 0xA8:
		return ProviderAshtech
	case recordID >= 0xA8 && recordID < 0xB0:
		return ProviderTopcon
	case recordID >= 0xB0 && recordID < 0xB4:
		return ProviderGPSSolutions
	case recordID >= 0xB4 && recordID < 0xB8:
		return ProviderNRCan
	case recordID >= 0xB8 && recordID < 0xC0:
		return ProviderJPL
	case recordID >= 0xC0 && recordID < 0xC4:
		return ProviderCUBoulder
	default:
		return ProviderUnknown
	}
}

// isClosedSource reports whether recordID falls in the disclosed
// closed-source range at all (0x80 and above is reserved for vendors,
// spec.md §3.5).
func isClosedSource(recordID uint32) bool {
	return recordID >= 0x80
}
