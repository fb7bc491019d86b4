// README: Driver ledger record, ride outcomes, trip details and derived statistics.
package ledger

import (
	"math"
	"time"

	"autometer/internal/types"
)

// Record holds one driver's cumulative ride counters and earnings.
// TotalRides == CompletedRides + CancelledRides after every applied event.
type Record struct {
	ID              string     `json:"id"`
	AccountID       string     `json:"userId"`
	Name            string     `json:"name"`
	PhoneNumber     string     `json:"phoneNumber"`
	TotalRides      int64      `json:"totalRides"`
	CompletedRides  int64      `json:"completedRides"`
	CancelledRides  int64      `json:"cancelledRides"`
	TotalTrips      int64      `json:"totalTrips"`
	Earnings        float64    `json:"earnings"`
	TotalEarnings   float64    `json:"totalEarnings"`
	LastCompletedAt *time.Time `json:"lastCompletedAt,omitempty"`
	LastCancelledAt *time.Time `json:"lastCancelledAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type Outcome string

const (
	OutcomeCompleted Outcome = "completed"
	OutcomeCancelled Outcome = "cancelled"
)

// Owner is the account a ledger is bound to; name and phone are copied onto
// the record when it is opened.
type Owner struct {
	ID          string
	Name        string
	PhoneNumber string
}

// TripData is the optional trip breakdown sent with a completion. Pointer
// fields distinguish "absent" from zero.
type TripData struct {
	Distance      *float64 `json:"distance"`
	Duration      *float64 `json:"duration"`
	TotalFare     *float64 `json:"totalFare"`
	BaseFare      *float64 `json:"baseFare,omitempty"`
	WaitingCharge *float64 `json:"waitingCharge,omitempty"`
}

// Trip is one row of the per-ledger trip log.
type Trip struct {
	LedgerID      string
	RideEarnings  float64
	DistanceKm    float64
	DurationMin   float64
	BaseFare      *float64
	WaitingCharge *float64
	TotalFare     float64
	RecordedAt    time.Time
}

// Completion is the result of a recorded completion; PreviousTotal is
// TotalEarnings before this ride.
type Completion struct {
	Record        Record  `json:"-"`
	RideEarnings  float64 `json:"rideEarnings"`
	PreviousTotal float64 `json:"previousTotal"`
}

type Stats struct {
	Record
	SuccessRate     int64   `json:"successRate"`
	AverageEarnings float64 `json:"averageEarnings"`
}

// StatsOf derives success rate (whole percent) and average earnings per
// completed ride; both are 0 when their denominator is 0.
func StatsOf(r Record) Stats {
	s := Stats{Record: r}
	if r.TotalRides > 0 {
		s.SuccessRate = int64(math.Round(float64(r.CompletedRides) / float64(r.TotalRides) * 100))
	}
	if r.CompletedRides > 0 {
		s.AverageEarnings = types.Round2(r.TotalEarnings / float64(r.CompletedRides))
	}
	return s
}
