// README: Shared setup for Postgres-backed tests; skips when AUTOMETER_TEST_DSN is unset.
package infratest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"autometer/internal/infra"
	"autometer/internal/logging"
)

// NewPool connects to AUTOMETER_TEST_DSN, applies the embedded migrations and
// truncates the given tables so every test starts from empty state.
func NewPool(t *testing.T, tables ...string) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("AUTOMETER_TEST_DSN")
	if dsn == "" {
		t.Skip("AUTOMETER_TEST_DSN not set; skipping DB-backed tests")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := infra.Migrate(ctx, pool, logging.Discard()); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(tables) > 0 {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE "+strings.Join(tables, ", ")+" CASCADE"); err != nil {
			t.Fatalf("truncate %v: %v", tables, err)
		}
	}
	return pool
}

// NewRedis connects to AUTOMETER_TEST_REDIS_ADDR and flushes the selected db.
func NewRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("AUTOMETER_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("AUTOMETER_TEST_REDIS_ADDR not set; skipping Redis-backed tests")
	}

	client := infra.NewRedis(addr)
	t.Cleanup(func() { _ = client.Close() })

	if err := client.FlushDB(context.Background()).Err(); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return client
}
