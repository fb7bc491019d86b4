// README: Driver ledger service: resolves the caller's identifier to a ledger and applies ride outcomes.
package ledger

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"autometer/internal/config"
	"autometer/internal/modules/account"
	"autometer/internal/observability"
	"autometer/internal/types"
)

// AccountFinder is the account lookup used by the last resolution tier.
type AccountFinder interface {
	FindByID(ctx context.Context, id string) (account.Account, error)
}

type Service struct {
	store    Repository
	accounts AccountFinder
	cfg      config.LedgerConfig
	log      *slog.Logger
}

func NewService(store Repository, accounts AccountFinder, cfg config.LedgerConfig, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, accounts: accounts, cfg: cfg, log: log.With("module", "ledger")}
}

// Resolve maps id to a ledger record. id may be the ledger's own key or its
// owning account's key; when neither matches but an account with that key
// exists, a zeroed ledger is opened for it. Every ledger operation goes
// through here.
func (s *Service) Resolve(ctx context.Context, id string) (Record, error) {
	id = strings.TrimSpace(id)
	if !types.IsValidID(id) {
		return Record{}, types.Invalid("invalid driver id format")
	}

	rec, err := s.store.GetByID(ctx, id)
	if err == nil {
		observability.LedgerResolutions.WithLabelValues("ledger_id").Inc()
		return rec, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return Record{}, err
	}

	rec, err = s.store.GetByAccountID(ctx, id)
	if err == nil {
		observability.LedgerResolutions.WithLabelValues("account_ref").Inc()
		return rec, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		return Record{}, err
	}

	acc, err := s.accounts.FindByID(ctx, id)
	if errors.Is(err, types.ErrNotFound) {
		return Record{}, types.Missing("driver record not found")
	}
	if err != nil {
		return Record{}, err
	}
	rec, err = s.Open(ctx, acc)
	if err != nil {
		return Record{}, err
	}
	observability.LedgerResolutions.WithLabelValues("synthesized").Inc()
	s.log.Warn("ledger synthesized for account without one", "account_id", acc.ID, "ledger_id", rec.ID)
	return rec, nil
}

// Open creates the zeroed ledger bound to acc, or returns the existing one.
func (s *Service) Open(ctx context.Context, acc account.Account) (Record, error) {
	return s.store.CreateForAccount(ctx, Owner{ID: acc.ID, Name: acc.Name, PhoneNumber: acc.PhoneNumber})
}

// RecordCompletion adds one completed ride and its earnings. trip is optional;
// when given it must agree with rideEarnings and is appended to the trip log
// after the counters are updated.
func (s *Service) RecordCompletion(ctx context.Context, id string, rideEarnings float64, trip *TripData) (Completion, error) {
	rideEarnings = types.Round2(rideEarnings)
	if err := s.validateEarnings(rideEarnings, false); err != nil {
		return Completion{}, err
	}
	if trip != nil {
		if err := validateTrip(*trip, rideEarnings); err != nil {
			return Completion{}, err
		}
	}

	rec, err := s.Resolve(ctx, id)
	if err != nil {
		return Completion{}, err
	}
	rec, err = s.store.IncrementCompleted(ctx, rec.ID, rideEarnings)
	if err != nil {
		return Completion{}, err
	}
	observability.RideOutcomesTotal.WithLabelValues(string(OutcomeCompleted)).Inc()
	observability.RideEarningsTotal.Add(rideEarnings)
	s.log.Info("ride completed", "ledger_id", rec.ID, "ride_earnings", rideEarnings, "total_earnings", rec.TotalEarnings)

	if trip != nil {
		s.appendTrip(ctx, rec.ID, rideEarnings, *trip)
	}
	return Completion{
		Record:        rec,
		RideEarnings:  rideEarnings,
		PreviousTotal: types.Round2(rec.TotalEarnings - rideEarnings),
	}, nil
}

func (s *Service) RecordCancellation(ctx context.Context, id string) (Record, error) {
	rec, err := s.Resolve(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec, err = s.store.IncrementCancelled(ctx, rec.ID)
	if err != nil {
		return Record{}, err
	}
	observability.RideOutcomesTotal.WithLabelValues(string(OutcomeCancelled)).Inc()
	s.log.Info("ride cancelled", "ledger_id", rec.ID, "cancelled_rides", rec.CancelledRides)
	return rec, nil
}

// RecordOutcome applies an admin correction without earnings.
func (s *Service) RecordOutcome(ctx context.Context, id string, outcome Outcome) (Record, error) {
	switch outcome {
	case OutcomeCompleted:
		rec, err := s.Resolve(ctx, id)
		if err != nil {
			return Record{}, err
		}
		rec, err = s.store.IncrementCompleted(ctx, rec.ID, 0)
		if err != nil {
			return Record{}, err
		}
		observability.RideOutcomesTotal.WithLabelValues(string(OutcomeCompleted)).Inc()
		return rec, nil
	case OutcomeCancelled:
		return s.RecordCancellation(ctx, id)
	default:
		return Record{}, types.Invalid("status must be %q or %q", OutcomeCompleted, OutcomeCancelled)
	}
}

// AdjustEarnings credits amount to the ledger without touching ride counters.
func (s *Service) AdjustEarnings(ctx context.Context, id string, amount float64) (Record, error) {
	amount = types.Round2(amount)
	if err := s.validateEarnings(amount, true); err != nil {
		return Record{}, err
	}
	rec, err := s.Resolve(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec, err = s.store.AddEarnings(ctx, rec.ID, amount)
	if err != nil {
		return Record{}, err
	}
	s.log.Info("earnings adjusted", "ledger_id", rec.ID, "amount", amount)
	return rec, nil
}

func (s *Service) GetStats(ctx context.Context, id string) (Stats, error) {
	rec, err := s.Resolve(ctx, id)
	if err != nil {
		return Stats{}, err
	}
	return StatsOf(rec), nil
}

func (s *Service) List(ctx context.Context) ([]Record, error) {
	return s.store.List(ctx)
}

func (s *Service) validateEarnings(v float64, allowZero bool) error {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return types.Invalid("earnings must be a valid number")
	case allowZero && v < 0:
		return types.Invalid("amount cannot be negative")
	case !allowZero && v <= 0:
		return types.Invalid("ride earnings must be greater than 0")
	case s.cfg.MaxRideEarnings > 0 && v > s.cfg.MaxRideEarnings:
		return types.Invalid("earnings cannot exceed %g", s.cfg.MaxRideEarnings)
	}
	return nil
}

func validateTrip(t TripData, rideEarnings float64) error {
	if t.Distance == nil || t.Duration == nil || t.TotalFare == nil {
		return types.Invalid("trip data requires distance, duration and totalFare")
	}
	for _, v := range []float64{*t.Distance, *t.Duration, *t.TotalFare} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return types.Invalid("trip data values must be non-negative numbers")
		}
	}
	if types.Round2(math.Abs(*t.TotalFare-rideEarnings)) > 0.01 {
		return types.Invalid("trip total fare does not match ride earnings")
	}
	return nil
}

func (s *Service) appendTrip(ctx context.Context, ledgerID string, rideEarnings float64, t TripData) {
	err := s.store.AppendTrip(ctx, Trip{
		LedgerID:      ledgerID,
		RideEarnings:  rideEarnings,
		DistanceKm:    *t.Distance,
		DurationMin:   *t.Duration,
		BaseFare:      t.BaseFare,
		WaitingCharge: t.WaitingCharge,
		TotalFare:     *t.TotalFare,
	})
	if err != nil {
		s.log.Warn("trip log append failed", "ledger_id", ledgerID, "error", err)
	}
}
