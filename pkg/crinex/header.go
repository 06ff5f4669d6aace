package crinex

import "fmt"

// DefaultVersion is the Hatanaka-compression version this package emits.
const DefaultVersion = "3.0"

// FormatVersionLine renders the "CRINEX VERS / TYPE" marker line, the
// leading line of every compressed stream (spec.md §4.3, concrete
// end-to-end scenario 3): 60-column payload, 20-column label.
func FormatVersionLine(version string) string {
	return fmt.Sprintf("%-20s%-40s%-20s", version, "COMPACT RINEX FORMAT", "CRINEX VERS   / TYPE")
}

// FormatProgDateLine renders the "CRINEX PROG / DATE" marker line that
// follows the version line in a compressed stream's leading bytes.
func FormatProgDateLine(pgm, runBy, date string) string {
	return fmt.Sprintf("%-20s%-20s%-20s%-20s", pgm, runBy, date, "CRINEX PROG / DATE")
}
