// README: Money rounding helpers shared by fare and ledger math.
package types

import "math"

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	return RoundTo(v, 2)
}

func RoundTo(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
