// README: Ledger store backed by PostgreSQL; every counter change is one atomic UPDATE ... RETURNING.
package ledger

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autometer/internal/infra"
	"autometer/internal/types"
)

// Repository is the persistence contract of the driver ledger. Lookups and
// increments return types.ErrNotFound when no row matches.
type Repository interface {
	GetByID(ctx context.Context, id string) (Record, error)
	GetByAccountID(ctx context.Context, accountID string) (Record, error)
	// CreateForAccount opens a zeroed ledger for owner, or returns the one
	// that already exists for that account.
	CreateForAccount(ctx context.Context, owner Owner) (Record, error)
	IncrementCompleted(ctx context.Context, id string, earnings float64) (Record, error)
	IncrementCancelled(ctx context.Context, id string) (Record, error)
	AddEarnings(ctx context.Context, id string, amount float64) (Record, error)
	List(ctx context.Context) ([]Record, error)
	AppendTrip(ctx context.Context, trip Trip) error
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const recordColumns = `id, account_id, name, phone_number, total_rides, completed_rides, cancelled_rides,
	total_trips, earnings, total_earnings, last_completed_at, last_cancelled_at, created_at, updated_at`

func (s *Store) GetByID(ctx context.Context, id string) (Record, error) {
	return s.queryOne(ctx, `SELECT `+recordColumns+` FROM driver_ledgers WHERE id = $1`, id)
}

func (s *Store) GetByAccountID(ctx context.Context, accountID string) (Record, error) {
	return s.queryOne(ctx, `SELECT `+recordColumns+` FROM driver_ledgers WHERE account_id = $1`, accountID)
}

func (s *Store) CreateForAccount(ctx context.Context, owner Owner) (Record, error) {
	rec, err := s.queryOne(ctx, `
		INSERT INTO driver_ledgers (id, account_id, name, phone_number)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (account_id) DO NOTHING
		RETURNING `+recordColumns,
		string(types.NewID()), owner.ID, owner.Name, owner.PhoneNumber,
	)
	if errors.Is(err, types.ErrNotFound) {
		// A concurrent event opened it first.
		return s.GetByAccountID(ctx, owner.ID)
	}
	return rec, err
}

func (s *Store) IncrementCompleted(ctx context.Context, id string, earnings float64) (Record, error) {
	return s.queryOne(ctx, `
		UPDATE driver_ledgers
		SET completed_rides = completed_rides + 1,
			total_rides = total_rides + 1,
			total_trips = total_trips + 1,
			earnings = earnings + $2,
			total_earnings = total_earnings + $2,
			last_completed_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+recordColumns,
		id, earnings,
	)
}

func (s *Store) IncrementCancelled(ctx context.Context, id string) (Record, error) {
	return s.queryOne(ctx, `
		UPDATE driver_ledgers
		SET cancelled_rides = cancelled_rides + 1,
			total_rides = total_rides + 1,
			last_cancelled_at = NOW(),
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+recordColumns,
		id,
	)
}

func (s *Store) AddEarnings(ctx context.Context, id string, amount float64) (Record, error) {
	return s.queryOne(ctx, `
		UPDATE driver_ledgers
		SET earnings = earnings + $2,
			total_earnings = total_earnings + $2,
			updated_at = NOW()
		WHERE id = $1
		RETURNING `+recordColumns,
		id, amount,
	)
}

func (s *Store) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.Query(ctx, `SELECT `+recordColumns+` FROM driver_ledgers ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, infra.ClassifyPG(err)
	}
	defer rows.Close()

	out := []Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, infra.ClassifyPG(err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.ClassifyPG(err)
	}
	return out, nil
}

func (s *Store) AppendTrip(ctx context.Context, trip Trip) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO ledger_trips (
			ledger_id, ride_earnings, distance_km, duration_min, base_fare, waiting_charge, total_fare
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		trip.LedgerID, trip.RideEarnings, trip.DistanceKm, trip.DurationMin,
		trip.BaseFare, trip.WaitingCharge, trip.TotalFare,
	)
	return infra.ClassifyPG(err)
}

func (s *Store) queryOne(ctx context.Context, sql string, args ...any) (Record, error) {
	rec, err := scanRecord(s.db.QueryRow(ctx, sql, args...))
	if err != nil {
		return Record{}, infra.ClassifyPG(err)
	}
	return rec, nil
}

func scanRecord(row pgx.Row) (Record, error) {
	var r Record
	err := row.Scan(
		&r.ID, &r.AccountID, &r.Name, &r.PhoneNumber,
		&r.TotalRides, &r.CompletedRides, &r.CancelledRides, &r.TotalTrips,
		&r.Earnings, &r.TotalEarnings, &r.LastCompletedAt, &r.LastCancelledAt,
		&r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}
