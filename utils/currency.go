package utils

import "math"

// Round2 rounds a monetary amount to two decimals. Order totals are
// recomputed locally while offline, so every intermediate sum goes through
// this before it is stored.
func Round2(amount float64) float64 {
	return math.Round(amount*100) / 100
}
