//go:build integration

package testdb

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // pgx driver
	"github.com/phrazzld/lexis/internal/platform/postgres"
	"github.com/phrazzld/lexis/internal/redact"
)

// TestTimeout bounds every setup step against the test database.
const TestTimeout = 30 * time.Second

// tables lists every application table; truncation order does not matter
// because ResetTables uses CASCADE.
var tables = []string{"pack_vocabs", "packs", "writing_errors", "review_logs", "vocabs", "events"}

// OpenTestDatabase connects to the test database and applies all migrations.
// The connection is closed when the test ends.
func OpenTestDatabase(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := GetTestDatabaseURL()
	if dbURL == "" {
		if IsCIEnvironment() {
			t.Fatalf("no test database configured: set %s", EnvTestDatabaseURL)
		}
		t.Skipf("%s not set, skipping database test", EnvTestDatabaseURL)
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		t.Fatalf("failed to open test database %s: %v", redact.DatabaseURL(dbURL), err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxLifetime(time.Minute)
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: failed to close test database: %v", err)
		}
	})

	SetupTestDatabaseSchema(t, db)
	return db
}

// SetupTestDatabaseSchema applies all migrations to db.
func SetupTestDatabaseSchema(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		t.Fatalf("database connection failed before migrations: %v (url %s)",
			err, redact.DatabaseURL(GetTestDatabaseURL()))
	}

	if err := postgres.Migrate(ctx, db, "up", nil); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
}

// ResetTables removes all rows from every application table.
func ResetTables(t *testing.T, db *sql.DB) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), TestTimeout)
	defer cancel()

	query := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := db.ExecContext(ctx, query); err != nil {
		t.Fatalf("failed to reset tables: %v", err)
	}
}
