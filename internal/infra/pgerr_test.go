package infra

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"autometer/internal/types"
)

func TestClassifyPG(t *testing.T) {
	plain := errors.New("syntax error")
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"no rows", pgx.ErrNoRows, types.ErrNotFound},
		{"wrapped no rows", fmt.Errorf("scan: %w", pgx.ErrNoRows), types.ErrNotFound},
		{"unique", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_phone_number_key"}, types.ErrConflict},
		{"check", &pgconn.PgError{Code: "23514", ConstraintName: "fare_configs_base_fare_check"}, types.ErrValidation},
		{"deadline", context.DeadlineExceeded, types.ErrUnavailable},
		{"other", plain, plain},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ClassifyPG(tc.in)
			if tc.want == nil {
				if got != nil {
					t.Fatalf("expected nil, got %v", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Fatalf("ClassifyPG(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "accounts_phone_number_key"})
	if !IsUniqueViolation(err, "accounts_phone_number_key") {
		t.Fatal("expected unique violation on accounts_phone_number_key")
	}
	if IsUniqueViolation(err, "driver_ledgers_account_id_key") {
		t.Fatal("constraint name should be matched exactly")
	}
}
