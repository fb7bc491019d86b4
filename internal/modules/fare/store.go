// README: Fare config store backed by PostgreSQL; uniqueness of the active default is enforced by a partial unique index.
package fare

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autometer/internal/infra"
	"autometer/internal/types"
)

// Repository is the persistence contract of the fare engine.
type Repository interface {
	// GetActive returns types.ErrNotFound when no active default exists.
	GetActive(ctx context.Context) (Config, error)
	// InsertDefault inserts cfg unless an active default already exists and
	// returns whichever row is active afterwards.
	InsertDefault(ctx context.Context, rates Rates, intervalMinutes int) (Config, error)
	// Upsert creates or overwrites the active default in one statement.
	Upsert(ctx context.Context, rates Rates, intervalMinutes int) (cfg Config, created bool, err error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const configColumns = `id, base_fare, per_km_rate, waiting_charge_per_interval, interval_minutes,
	is_system_default, is_active, schema_version, created_at, updated_at`

func (s *Store) GetActive(ctx context.Context) (Config, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+configColumns+`
		FROM fare_configs
		WHERE is_system_default AND is_active`)
	cfg, err := scanConfig(row)
	if err != nil {
		return Config{}, infra.ClassifyPG(err)
	}
	return cfg, nil
}

func (s *Store) InsertDefault(ctx context.Context, rates Rates, intervalMinutes int) (Config, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO fare_configs (
			id, base_fare, per_km_rate, waiting_charge_per_interval, interval_minutes,
			is_system_default, is_active, schema_version
		) VALUES ($1, $2, $3, $4, $5, TRUE, TRUE, $6)
		ON CONFLICT (is_system_default, is_active) WHERE is_system_default AND is_active
		DO NOTHING
		RETURNING `+configColumns,
		string(types.NewID()), rates.BaseFare, rates.PerKmRate, rates.WaitingChargePerInterval,
		intervalMinutes, SchemaVersion,
	)
	cfg, err := scanConfig(row)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race to another first reader; theirs is the one.
		return s.GetActive(ctx)
	}
	if err != nil {
		return Config{}, infra.ClassifyPG(err)
	}
	return cfg, nil
}

func (s *Store) Upsert(ctx context.Context, rates Rates, intervalMinutes int) (Config, bool, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO fare_configs (
			id, base_fare, per_km_rate, waiting_charge_per_interval, interval_minutes,
			is_system_default, is_active, schema_version
		) VALUES ($1, $2, $3, $4, $5, TRUE, TRUE, $6)
		ON CONFLICT (is_system_default, is_active) WHERE is_system_default AND is_active
		DO UPDATE SET
			base_fare = EXCLUDED.base_fare,
			per_km_rate = EXCLUDED.per_km_rate,
			waiting_charge_per_interval = EXCLUDED.waiting_charge_per_interval,
			interval_minutes = EXCLUDED.interval_minutes,
			updated_at = NOW()
		RETURNING `+configColumns+`, (xmax = 0) AS inserted`,
		string(types.NewID()), rates.BaseFare, rates.PerKmRate, rates.WaitingChargePerInterval,
		intervalMinutes, SchemaVersion,
	)
	var cfg Config
	var inserted bool
	err := row.Scan(
		&cfg.ID, &cfg.BaseFare, &cfg.PerKmRate, &cfg.WaitingChargePerInterval, &cfg.IntervalMinutes,
		&cfg.IsSystemDefault, &cfg.IsActive, &cfg.SchemaVersion, &cfg.CreatedAt, &cfg.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return Config{}, false, infra.ClassifyPG(err)
	}
	return cfg, inserted, nil
}

func scanConfig(row pgx.Row) (Config, error) {
	var cfg Config
	err := row.Scan(
		&cfg.ID, &cfg.BaseFare, &cfg.PerKmRate, &cfg.WaitingChargePerInterval, &cfg.IntervalMinutes,
		&cfg.IsSystemDefault, &cfg.IsActive, &cfg.SchemaVersion, &cfg.CreatedAt, &cfg.UpdatedAt,
	)
	return cfg, err
}
