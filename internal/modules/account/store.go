// README: Account store backed by PostgreSQL.
package account

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"autometer/internal/infra"
	"autometer/internal/types"
)

const phoneConstraint = "accounts_phone_number_key"

// Repository returns types.ErrNotFound for missing rows and ErrPhoneTaken
// when a write would duplicate a phone number.
type Repository interface {
	FindByID(ctx context.Context, id string) (Account, error)
	FindByPhone(ctx context.Context, phone string) (Account, error)
	FindAdmin(ctx context.Context) (Account, error)
	Create(ctx context.Context, acc Account) (Account, error)
	UpdateProfile(ctx context.Context, id, name, phone, passwordHash string) (Account, error)
	// UpsertAdmin creates the admin identity or rewrites the existing one
	// (oldest admin row) with the given phone, name and credential. A phone
	// held by a driver yields ErrPhoneTaken.
	UpsertAdmin(ctx context.Context, phone, name, passwordHash string) (Account, error)
}

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const accountColumns = `id, phone_number, role, name, COALESCE(password_hash, ''), created_at, updated_at`

func (s *Store) FindByID(ctx context.Context, id string) (Account, error) {
	return s.queryOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (s *Store) FindByPhone(ctx context.Context, phone string) (Account, error) {
	return s.queryOne(ctx, `SELECT `+accountColumns+` FROM accounts WHERE phone_number = $1`, phone)
}

func (s *Store) FindAdmin(ctx context.Context) (Account, error) {
	return s.queryOne(ctx, `
		SELECT `+accountColumns+` FROM accounts
		WHERE role = 'admin'
		ORDER BY created_at
		LIMIT 1`)
}

func (s *Store) Create(ctx context.Context, acc Account) (Account, error) {
	return s.queryOne(ctx, `
		INSERT INTO accounts (id, phone_number, role, name, password_hash)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''))
		RETURNING `+accountColumns,
		acc.ID, acc.PhoneNumber, string(acc.Role), acc.Name, acc.PasswordHash,
	)
}

func (s *Store) UpdateProfile(ctx context.Context, id, name, phone, passwordHash string) (Account, error) {
	return s.queryOne(ctx, `
		UPDATE accounts
		SET name = $2, phone_number = $3, password_hash = NULLIF($4, ''), updated_at = NOW()
		WHERE id = $1
		RETURNING `+accountColumns,
		id, name, phone, passwordHash,
	)
}

func (s *Store) UpsertAdmin(ctx context.Context, phone, name, passwordHash string) (Account, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return Account{}, infra.ClassifyPG(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Serialise concurrent provisioning.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext('autometer_admin'))`); err != nil {
		return Account{}, infra.ClassifyPG(err)
	}

	var adminID string
	err = tx.QueryRow(ctx, `
		SELECT id FROM accounts
		WHERE role = 'admin'
		ORDER BY created_at
		LIMIT 1
		FOR UPDATE`).Scan(&adminID)
	var acc Account
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		acc, err = scanAccount(tx.QueryRow(ctx, `
			INSERT INTO accounts (id, phone_number, role, name, password_hash)
			VALUES ($1, $2, 'admin', $3, $4)
			RETURNING `+accountColumns,
			string(types.NewID()), phone, name, passwordHash,
		))
	case err != nil:
		return Account{}, infra.ClassifyPG(err)
	default:
		acc, err = scanAccount(tx.QueryRow(ctx, `
			UPDATE accounts
			SET phone_number = $2, name = $3, password_hash = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING `+accountColumns,
			adminID, phone, name, passwordHash,
		))
	}
	if err != nil {
		return Account{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Account{}, infra.ClassifyPG(err)
	}
	return acc, nil
}

func (s *Store) queryOne(ctx context.Context, sql string, args ...any) (Account, error) {
	return scanAccount(s.db.QueryRow(ctx, sql, args...))
}

func scanAccount(row pgx.Row) (Account, error) {
	var acc Account
	var role string
	err := row.Scan(
		&acc.ID, &acc.PhoneNumber, &role, &acc.Name, &acc.PasswordHash, &acc.CreatedAt, &acc.UpdatedAt,
	)
	if err != nil {
		if infra.IsUniqueViolation(err, phoneConstraint) {
			return Account{}, ErrPhoneTaken
		}
		return Account{}, infra.ClassifyPG(err)
	}
	acc.Role = Role(role)
	return acc, nil
}
