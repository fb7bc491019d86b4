// README: Pure fare arithmetic: base + distance x rate + ceil(waiting / interval) x interval charge.
package fare

import (
	"math"

	"autometer/internal/types"
)

// Calculate prices a trip against cfg. A partial waiting interval is charged
// as a full one.
func Calculate(cfg Config, distance, waitingMinutes float64) (Quote, error) {
	if err := validateTrip(distance, waitingMinutes); err != nil {
		return Quote{}, err
	}
	interval := cfg.IntervalMinutes
	if interval <= 0 {
		interval = DefaultIntervalMinutes
	}

	intervals := 0
	if waitingMinutes > 0 {
		intervals = int(math.Ceil(waitingMinutes / float64(interval)))
	}

	base := types.Round2(cfg.BaseFare)
	distanceFare := types.Round2(distance * cfg.PerKmRate)
	waitingCharge := types.Round2(float64(intervals) * cfg.WaitingChargePerInterval)

	return Quote{
		Distance:         distance,
		WaitingMinutes:   waitingMinutes,
		WaitingIntervals: intervals,
		IntervalMinutes:  interval,
		PerKmRate:        cfg.PerKmRate,
		BaseFare:         base,
		DistanceFare:     distanceFare,
		WaitingCharge:    waitingCharge,
		TotalFare:        types.Round2(base + distanceFare + waitingCharge),
	}, nil
}

func validateTrip(distance, waitingMinutes float64) error {
	if math.IsNaN(distance) || math.IsInf(distance, 0) || distance <= 0 {
		return types.Invalid("distance must be greater than 0")
	}
	if math.IsNaN(waitingMinutes) || math.IsInf(waitingMinutes, 0) || waitingMinutes < 0 {
		return types.Invalid("waiting minutes cannot be negative")
	}
	return nil
}

func validateRates(r Rates, maxPerKm float64) error {
	switch {
	case !finite(r.BaseFare) || r.BaseFare <= 0:
		return types.Invalid("base fare is required and must be greater than 0")
	case !finite(r.PerKmRate) || r.PerKmRate <= 0:
		return types.Invalid("per km rate must be greater than 0")
	case maxPerKm > 0 && r.PerKmRate > maxPerKm:
		return types.Invalid("per km rate cannot exceed %g", maxPerKm)
	case !finite(r.WaitingChargePerInterval) || r.WaitingChargePerInterval < 0:
		return types.Invalid("waiting charge cannot be negative")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
