// README: Maps pgx errors onto the shared error taxonomy.
package infra

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"autometer/internal/types"
)

const (
	uniqueViolation = "23505"
	checkViolation  = "23514"
)

// ClassifyPG wraps store errors so handlers can tell a missing row, a
// uniqueness or check violation and an unreachable database apart. Unknown errors are
// returned unchanged.
func ClassifyPG(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return types.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%w: %s", types.ErrConflict, pgErr.ConstraintName)
		case checkViolation:
			return fmt.Errorf("%w: %s", types.ErrValidation, pgErr.ConstraintName)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return fmt.Errorf("%w: %v", types.ErrUnavailable, err)
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return fmt.Errorf("%w: %v", types.ErrUnavailable, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", types.ErrUnavailable, err)
	}
	return err
}

// IsUniqueViolation reports whether err is a unique violation on the named constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}
