// Package units is the single authority for converting histogram values
// between the raw recorded unit (nanosecond-equivalent) and the display
// unit (millisecond-equivalent). Every value leaving the analysis engine
// in display mode passes through this package exactly once.
package units

// Scale is the ratio between raw histogram units and display units.
// Recorded values are nanosecond-equivalent, display values millisecond-equivalent.
const Scale = 1.0e6

// ToDisplay converts a raw-unit value to display units.
func ToDisplay(v float64) float64 {
	return v / Scale
}

// ToRaw converts a display-unit value back to raw units.
func ToRaw(v float64) float64 {
	return v * Scale
}

// Name returns the label for the active value unit: "RU" when raw values
// are kept as found in the histograms, "ms" otherwise.
func Name(raw bool) string {
	if raw {
		return "RU"
	}
	return "ms"
}
