// Package pgtest provides a migrated Postgres pool for integration tests.
// Tests are skipped unless TEST_PG_CONN_URL is set.
package pgtest

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authflow/internal/db/migrations"
	"github.com/dmitrymomot/authflow/pkg/pg"
)

// EnvConnURL names the variable holding the test database URL.
const EnvConnURL = "TEST_PG_CONN_URL"

var migrateOnce sync.Once

// Pool connects to the test database, applies migrations once per process and
// truncates the given tables. The pool is closed on test cleanup.
func Pool(t *testing.T, truncate ...string) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv(EnvConnURL)
	if url == "" {
		t.Skipf("%s not set, skipping Postgres integration test", EnvConnURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg := pg.Config{
		ConnectionString: url,
		MaxOpenConns:     20,
		MaxIdleConns:     2,
		RetryAttempts:    1,
		RetryInterval:    time.Second,
		MigrationsTable:  "schema_migrations",
	}

	pool, err := pg.Connect(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	var migrateErr error
	migrateOnce.Do(func() {
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		migrateErr = pg.Migrate(ctx, pool, cfg, migrations.FS, ".", log)
	})
	require.NoError(t, migrateErr)

	for _, table := range truncate {
		_, err := pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
		require.NoError(t, err)
	}

	return pool
}
