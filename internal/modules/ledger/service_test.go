// README: Ledger service tests (resolver tiers + ride events).
package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"autometer/internal/config"
	"autometer/internal/logging"
	"autometer/internal/modules/account"
	"autometer/internal/types"
)

type fixture struct {
	svc      *Service
	store    *MemoryStore
	accounts *account.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := NewMemoryStore()
	accounts := account.NewMemoryStore()
	svc := NewService(store, accounts, config.LedgerConfig{MaxRideEarnings: 10000}, logging.Discard())
	return fixture{svc: svc, store: store, accounts: accounts}
}

func (f fixture) driver(t *testing.T, phone string) account.Account {
	t.Helper()
	acc, err := f.accounts.Create(context.Background(), account.Account{
		ID:          string(types.NewID()),
		PhoneNumber: phone,
		Role:        account.RoleDriver,
		Name:        "Driver " + phone[len(phone)-2:],
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return acc
}

func floatPtr(v float64) *float64 { return &v }

func TestResolveTiers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.driver(t, "9876500001")

	synthesized, err := f.svc.Resolve(ctx, acc.ID)
	if err != nil {
		t.Fatalf("Resolve by account id (synthesize): %v", err)
	}
	if synthesized.AccountID != acc.ID || synthesized.Name != acc.Name || synthesized.PhoneNumber != acc.PhoneNumber {
		t.Fatalf("synthesized ledger not bound to account: %+v", synthesized)
	}
	if synthesized.TotalRides != 0 || synthesized.TotalEarnings != 0 {
		t.Fatalf("synthesized ledger not zeroed: %+v", synthesized)
	}

	byOwnKey, err := f.svc.Resolve(ctx, synthesized.ID)
	if err != nil || byOwnKey.ID != synthesized.ID {
		t.Fatalf("Resolve by ledger id = %+v, %v", byOwnKey, err)
	}
	byAccount, err := f.svc.Resolve(ctx, acc.ID)
	if err != nil || byAccount.ID != synthesized.ID {
		t.Fatalf("Resolve by account id after synthesis = %+v, %v", byAccount, err)
	}

	all, _ := f.store.List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected exactly one ledger, got %d", len(all))
	}
}

func TestResolveErrors(t *testing.T) {
	f := newFixture(t)
	cases := []struct {
		name string
		id   string
		want error
	}{
		{"malformed", "not-an-id", types.ErrValidation},
		{"undefined", "undefined", types.ErrValidation},
		{"null", "null", types.ErrValidation},
		{"empty", "", types.ErrValidation},
		{"unknown", string(types.NewID()), types.ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Resolve(context.Background(), tc.id); !errors.Is(err, tc.want) {
				t.Fatalf("Resolve(%q): expected %v, got %v", tc.id, tc.want, err)
			}
		})
	}
}

func TestRecordCompletionSynthesizesLedger(t *testing.T) {
	f := newFixture(t)
	acc := f.driver(t, "9876500001")

	c, err := f.svc.RecordCompletion(context.Background(), acc.ID, 150, nil)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	r := c.Record
	if r.CompletedRides != 1 || r.TotalRides != 1 || r.TotalTrips != 1 || r.TotalEarnings != 150 || r.Earnings != 150 {
		t.Fatalf("unexpected counters: %+v", r)
	}
	if c.PreviousTotal != 0 || c.RideEarnings != 150 {
		t.Fatalf("unexpected completion: %+v", c)
	}
	if r.LastCompletedAt == nil {
		t.Fatal("lastCompletedAt not stamped")
	}
}

func TestRecordCompletionRejectsBadEarnings(t *testing.T) {
	f := newFixture(t)
	acc := f.driver(t, "9876500001")
	for _, v := range []float64{-5, 0, 0.004, 10000.01} {
		if _, err := f.svc.RecordCompletion(context.Background(), acc.ID, v, nil); !errors.Is(err, types.ErrValidation) {
			t.Fatalf("RecordCompletion(%v): expected validation error, got %v", v, err)
		}
	}
	all, _ := f.store.List(context.Background())
	if len(all) != 0 {
		t.Fatalf("rejected completions must not open a ledger, got %d", len(all))
	}
}

func TestRecordCompletionPreviousTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.driver(t, "9876500001")

	if _, err := f.svc.RecordCompletion(ctx, acc.ID, 120.5, nil); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	c, err := f.svc.RecordCompletion(ctx, acc.ID, 79.25, nil)
	if err != nil {
		t.Fatalf("second completion: %v", err)
	}
	if c.Record.TotalEarnings != 199.75 || c.PreviousTotal != 120.5 {
		t.Fatalf("unexpected totals: total=%v previous=%v", c.Record.TotalEarnings, c.PreviousTotal)
	}
}

func TestRecordCompletionTripData(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.driver(t, "9876500001")

	trip := &TripData{Distance: floatPtr(5), Duration: floatPtr(65), TotalFare: floatPtr(195), WaitingCharge: floatPtr(120)}
	c, err := f.svc.RecordCompletion(ctx, acc.ID, 195, trip)
	if err != nil {
		t.Fatalf("RecordCompletion: %v", err)
	}
	trips := f.store.Trips(c.Record.ID)
	if len(trips) != 1 || trips[0].TotalFare != 195 || trips[0].DistanceKm != 5 || trips[0].BaseFare != nil {
		t.Fatalf("unexpected trip log: %+v", trips)
	}

	bad := []struct {
		name string
		trip *TripData
	}{
		{"missing duration", &TripData{Distance: floatPtr(5), TotalFare: floatPtr(195)}},
		{"fare mismatch", &TripData{Distance: floatPtr(5), Duration: floatPtr(10), TotalFare: floatPtr(190)}},
		{"negative distance", &TripData{Distance: floatPtr(-1), Duration: floatPtr(10), TotalFare: floatPtr(195)}},
	}
	for _, tc := range bad {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.RecordCompletion(ctx, acc.ID, 195, tc.trip); !errors.Is(err, types.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRidesBalanceAfterEveryEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.driver(t, "9876500001")

	events := []Outcome{OutcomeCompleted, OutcomeCancelled, OutcomeCancelled, OutcomeCompleted, OutcomeCompleted, OutcomeCancelled}
	for i, ev := range events {
		var rec Record
		var err error
		if ev == OutcomeCompleted {
			var c Completion
			c, err = f.svc.RecordCompletion(ctx, acc.ID, 100, nil)
			rec = c.Record
		} else {
			rec, err = f.svc.RecordCancellation(ctx, acc.ID)
		}
		if err != nil {
			t.Fatalf("event %d (%s): %v", i, ev, err)
		}
		if rec.TotalRides != rec.CompletedRides+rec.CancelledRides {
			t.Fatalf("event %d: totalRides %d != completed %d + cancelled %d", i, rec.TotalRides, rec.CompletedRides, rec.CancelledRides)
		}
	}

	stats, err := f.svc.GetStats(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalRides != 6 || stats.CompletedRides != 3 || stats.CancelledRides != 3 {
		t.Fatalf("unexpected counters: %+v", stats.Record)
	}
	if stats.SuccessRate != 50 || stats.AverageEarnings != 100 {
		t.Fatalf("unexpected derived stats: rate=%d avg=%v", stats.SuccessRate, stats.AverageEarnings)
	}
	if stats.LastCancelledAt == nil || stats.LastCompletedAt == nil {
		t.Fatal("event timestamps not stamped")
	}
}

func TestConcurrentCompletionsDoNotLoseUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.driver(t, "9876500001")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.RecordCompletion(ctx, acc.ID, 10, nil); err != nil {
				t.Errorf("RecordCompletion: %v", err)
			}
		}()
	}
	wg.Wait()

	stats, err := f.svc.GetStats(ctx, acc.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.CompletedRides != n || stats.TotalEarnings != n*10 {
		t.Fatalf("lost updates: completed=%d earnings=%v", stats.CompletedRides, stats.TotalEarnings)
	}
}

func TestGetStatsZeroRides(t *testing.T) {
	f := newFixture(t)
	acc := f.driver(t, "9876500001")

	stats, err := f.svc.GetStats(context.Background(), acc.ID)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.SuccessRate != 0 || stats.AverageEarnings != 0 {
		t.Fatalf("expected zero derived stats, got rate=%d avg=%v", stats.SuccessRate, stats.AverageEarnings)
	}
}

func TestStatsOf(t *testing.T) {
	cases := []struct {
		name     string
		rec      Record
		wantRate int64
		wantAvg  float64
	}{
		{"empty", Record{}, 0, 0},
		{"only cancelled", Record{TotalRides: 3, CancelledRides: 3}, 0, 0},
		{"two of three", Record{TotalRides: 3, CompletedRides: 2, CancelledRides: 1, TotalEarnings: 100}, 67, 50},
		{"uneven average", Record{TotalRides: 3, CompletedRides: 3, TotalEarnings: 100}, 100, 33.33},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := StatsOf(tc.rec)
			if s.SuccessRate != tc.wantRate || s.AverageEarnings != tc.wantAvg {
				t.Fatalf("StatsOf = rate %d avg %v, want %d %v", s.SuccessRate, s.AverageEarnings, tc.wantRate, tc.wantAvg)
			}
		})
	}
}

func TestRecordOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.driver(t, "9876500001")

	rec, err := f.svc.RecordOutcome(ctx, acc.ID, OutcomeCompleted)
	if err != nil {
		t.Fatalf("RecordOutcome completed: %v", err)
	}
	if rec.CompletedRides != 1 || rec.TotalRides != 1 || rec.TotalEarnings != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	rec, err = f.svc.RecordOutcome(ctx, rec.ID, OutcomeCancelled)
	if err != nil {
		t.Fatalf("RecordOutcome cancelled: %v", err)
	}
	if rec.CancelledRides != 1 || rec.TotalRides != 2 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if _, err := f.svc.RecordOutcome(ctx, rec.ID, Outcome("started")); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestAdjustEarnings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	acc := f.driver(t, "9876500001")

	rec, err := f.svc.AdjustEarnings(ctx, acc.ID, 250.456)
	if err != nil {
		t.Fatalf("AdjustEarnings: %v", err)
	}
	if rec.Earnings != 250.46 || rec.TotalEarnings != 250.46 || rec.TotalRides != 0 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if _, err := f.svc.AdjustEarnings(ctx, acc.ID, 0); err != nil {
		t.Fatalf("zero adjustment should be allowed: %v", err)
	}
	if _, err := f.svc.AdjustEarnings(ctx, acc.ID, -1); !errors.Is(err, types.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.driver(t, "9876500001")
	b := f.driver(t, "9876500002")

	first, err := f.svc.Open(ctx, a)
	if err != nil {
		t.Fatalf("Open a: %v", err)
	}
	second, err := f.svc.Open(ctx, b)
	if err != nil {
		t.Fatalf("Open b: %v", err)
	}
	again, err := f.svc.Open(ctx, a)
	if err != nil || again.ID != first.ID {
		t.Fatalf("Open must return the existing ledger: %+v, %v", again, err)
	}

	list, err := f.svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 ledgers, got %d", len(list))
	}
	if !list[0].CreatedAt.Equal(list[1].CreatedAt) && list[0].ID != second.ID {
		t.Fatalf("expected newest first, got %s then %s", list[0].ID, list[1].ID)
	}
}
