package pkg

import (
	"strconv"
)

// Round rounds v to the given number of decimals, correctly rounded on
// the exact binary value (same results as python's round(v, n)).
func Round(v float64, decimals int) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}
