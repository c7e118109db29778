package score

import (
	"math"
	"strconv"
)

// noiseDigits is the precision used to strip binary representation noise
// before rounding, e.g. 1.15*10 = 11.499999999999998.
const noiseDigits = 6

// Round1 rounds v to one decimal place, half away from zero.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	scaled, err := strconv.ParseFloat(strconv.FormatFloat(v*10, 'f', noiseDigits, 64), 64)
	if err != nil {
		return 0
	}
	r := math.Round(scaled) / 10
	if r == 0 {
		return 0
	}
	return r
}

// FormatTotal renders a total with exactly one decimal digit.
func FormatTotal(total float64) string {
	return strconv.FormatFloat(Round1(total), 'f', 1, 64)
}

// formatValue renders v in its shortest decimal form: 2, 1.5, 0.125.
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
