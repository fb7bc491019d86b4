// README: System fare configuration and trip quote definitions.
package fare

import "time"

// SchemaVersion is the only stored fare shape the read path understands.
// Older rows are rewritten by the 0002 migration at deploy time.
const SchemaVersion = 2

const DefaultIntervalMinutes = 60

// Built-in rates used when the first reader finds no configuration.
const (
	DefaultBaseFare                 = 25.0
	DefaultPerKmRate                = 10.0
	DefaultWaitingChargePerInterval = 60.0
)

// Config is the single active, system-wide fare table.
type Config struct {
	ID                       string    `json:"id"`
	BaseFare                 float64   `json:"baseFare"`
	PerKmRate                float64   `json:"perKmRate"`
	WaitingChargePerInterval float64   `json:"waitingChargePerInterval"`
	IntervalMinutes          int       `json:"intervalMinutes"`
	IsSystemDefault          bool      `json:"isSystemDefault"`
	IsActive                 bool      `json:"isActive"`
	SchemaVersion            int       `json:"schemaVersion"`
	CreatedAt                time.Time `json:"createdAt"`
	UpdatedAt                time.Time `json:"updatedAt"`
}

// Rates are the admin-editable parts of Config.
type Rates struct {
	BaseFare                 float64
	PerKmRate                float64
	WaitingChargePerInterval float64
}

func defaultRates() Rates {
	return Rates{
		BaseFare:                 DefaultBaseFare,
		PerKmRate:                DefaultPerKmRate,
		WaitingChargePerInterval: DefaultWaitingChargePerInterval,
	}
}

type QuoteRequest struct {
	Distance       float64
	WaitingMinutes float64
	// Origin and Destination are used only when Distance is zero.
	Origin      string
	Destination string
}

// Quote is the full price breakdown shown to the rider; it is never stored.
type Quote struct {
	Distance         float64 `json:"distance"`
	WaitingMinutes   float64 `json:"waitingMinutes"`
	WaitingIntervals int     `json:"waitingIntervals"`
	IntervalMinutes  int     `json:"intervalMinutes"`
	PerKmRate        float64 `json:"perKmRate"`
	BaseFare         float64 `json:"baseFare"`
	DistanceFare     float64 `json:"distanceFare"`
	WaitingCharge    float64 `json:"waitingCharge"`
	TotalFare        float64 `json:"totalFare"`
}
