// Package testutil provides shared fixtures for mesh console tests: a fixed
// clock origin plus Postgres and Redis handles for the durable stores.
//
// Store-backed tests skip when the store is unreachable. Set
// TEST_REQUIRE_DB, TEST_REQUIRE_REDIS or TEST_REQUIRE_INFRA to make them fail
// instead.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	// Registers the "pgx" database/sql driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/safemesh/mesh-console/config"
	"github.com/safemesh/mesh-console/internal/migrate"
)

const storeConnectTimeout = 2 * time.Second

// TestTime returns a fixed time for testing.
// It sits just after the seeded demo alerts so they count as recent.
func TestTime() time.Time {
	return time.Date(2024, 1, 15, 14, 0, 0, 0, time.UTC)
}

// AuditDBConfig describes the test audit database. TEST_DATABASE_URL wins;
// otherwise TEST_DB_HOST and TEST_DB_PORT point at the compose test profile
// (localhost:55432).
func AuditDBConfig() config.DBConfig {
	port, err := strconv.Atoi(envOr("TEST_DB_PORT", "55432"))
	if err != nil {
		port = 55432
	}
	return config.DBConfig{
		URL:      strings.TrimSpace(os.Getenv("TEST_DATABASE_URL")),
		Host:     envOr("TEST_DB_HOST", "localhost"),
		Port:     port,
		User:     "meshconsole",
		Password: "meshconsole",
		Name:     "meshconsole",
		SSLMode:  "disable",
	}
}

// AuditDB returns a migrated database with an empty audit_log table. The
// connection is closed when the test ends.
func AuditDB(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", AuditDBConfig().ConnString())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		if cerr := db.Close(); cerr != nil {
			t.Logf("close test database: %v", cerr)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()
	if pingErr := db.PingContext(ctx); pingErr != nil {
		skipOrFail(t, required("TEST_REQUIRE_DB"), "audit database not available: %v", pingErr)
	}

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if _, err := migrate.Run(ctx, db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE audit_log"); err != nil {
		t.Fatalf("truncate audit_log: %v", err)
	}
	return db
}

// SessionRedis returns a client on a flushed logical database
// (TEST_REDIS_DB, default 1) at TEST_REDIS_ADDR (default localhost:6379).
// The client is closed when the test ends.
func SessionRedis(t testing.TB) *redis.Client {
	t.Helper()

	db, err := strconv.Atoi(envOr("TEST_REDIS_DB", "1"))
	if err != nil || db < 0 {
		t.Logf("invalid TEST_REDIS_DB, using 1")
		db = 1
	}
	client := redis.NewClient(&redis.Options{Addr: envOr("TEST_REDIS_ADDR", "localhost:6379"), DB: db})
	t.Cleanup(func() {
		if cerr := client.Close(); cerr != nil {
			t.Logf("close test redis: %v", cerr)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), storeConnectTimeout)
	defer cancel()
	if pingErr := client.Ping(ctx).Err(); pingErr != nil {
		skipOrFail(t, required("TEST_REQUIRE_REDIS"), "session redis not available: %v", pingErr)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test redis: %v", err)
	}
	return client
}

func skipOrFail(t testing.TB, fail bool, format string, args ...any) {
	t.Helper()
	if fail {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func required(key string) bool {
	return envBool(key) || envBool("TEST_REQUIRE_INFRA")
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}
