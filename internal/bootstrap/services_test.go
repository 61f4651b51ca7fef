package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemesh/mesh-console/config"
	mockauth "github.com/safemesh/mesh-console/internal/mocks/auth"
	"github.com/safemesh/mesh-console/internal/testutil"
)

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Services: "http,sweeper",
		Auth:     config.AuthConfig{SessionTTL: 15 * time.Minute},
		Sessions: config.SessionConfig{Backend: config.SessionBackendMemory, KeyPrefix: "mesh:"},
		Audit:    config.AuditConfig{Sink: config.AuditSinkNone},
		Console:  config.ConsoleConfig{NetworkHealthPct: 87, QuantumPairs: 12, SeedDemoData: true},
		HTTP:     config.HTTPConfig{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second},
		Sweeper:  config.SweeperConfig{Interval: time.Second},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServices_RequiresVerifier(t *testing.T) {
	_, err := NewServices(&ServiceDeps{Config: testAppConfig()})
	require.Error(t, err)

	_, err = NewServices(nil)
	require.Error(t, err)
}

func TestNewServices_WiresConsole(t *testing.T) {
	clock := testutil.NewFakeClock(testutil.TestTime())
	services, err := NewServices(&ServiceDeps{
		Config:   testAppConfig(),
		Verifier: mockauth.NewStaticVerifier(),
		Clock:    clock,
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	require.NotNil(t, services.Console)

	ctx := context.Background()
	_, err = services.Console.Login(ctx, "client", "admin@gmail.com", "admin123", true)
	require.NoError(t, err)

	alerts, err := services.Console.ListAlerts(ctx, "client")
	require.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, 1, services.Audit.Len())
}

func TestNewServices_PostgresSinkWithoutDBFallsBack(t *testing.T) {
	cfg := testAppConfig()
	cfg.Audit.Sink = config.AuditSinkPostgres

	services, err := NewServices(&ServiceDeps{
		Config:   cfg,
		Verifier: mockauth.NewStaticVerifier(),
		Logger:   discardLogger(),
	})
	require.NoError(t, err)

	services.Audit.Record(context.Background(), "Login", "Admin User", "kept in memory")
	assert.Equal(t, 1, services.Audit.Len())
}

func TestNewHTTPServer_ServesHealth(t *testing.T) {
	services, err := NewServices(&ServiceDeps{
		Config:   testAppConfig(),
		Verifier: mockauth.NewStaticVerifier(),
		Logger:   discardLogger(),
	})
	require.NoError(t, err)

	server := NewHTTPServer(&HTTPServerConfig{Config: testAppConfig(), Services: services, Logger: discardLogger()})
	require.NotNil(t, server)
	assert.Equal(t, "127.0.0.1:0", server.Addr)

	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunServicesWithShutdown_StopsOnCancel(t *testing.T) {
	cfg := testAppConfig()
	services, err := NewServices(&ServiceDeps{
		Config:   cfg,
		Verifier: mockauth.NewStaticVerifier(),
		Logger:   discardLogger(),
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunServicesWithShutdown(ctx, &ServiceOrchestrationConfig{
			Config:   cfg,
			Services: services,
			Logger:   discardLogger(),
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("services did not stop")
	}
}

func TestNewHTTPServer_ServesMetrics(t *testing.T) {
	services, err := NewServices(&ServiceDeps{
		Config:   testAppConfig(),
		Verifier: mockauth.NewStaticVerifier(),
		Logger:   discardLogger(),
	})
	require.NoError(t, err)
	_, err = services.Console.RunSimulation(context.Background(), "client")
	require.NoError(t, err)

	server := NewHTTPServer(&HTTPServerConfig{Config: testAppConfig(), Services: services, Logger: discardLogger()})
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `mesh_console_audit_entries_total{action="Simulation Started"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestNewHTTPServer_HealthReportsStores(t *testing.T) {
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = unreachable.Close() })

	services, err := NewServices(&ServiceDeps{
		Config:      testAppConfig(),
		Verifier:    mockauth.NewStaticVerifier(),
		RedisClient: unreachable,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)
	require.Contains(t, services.HealthChecks, "redis")
	assert.NotContains(t, services.HealthChecks, "postgres")

	server := NewHTTPServer(&HTTPServerConfig{Config: testAppConfig(), Services: services, Logger: discardLogger()})
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"redis":"unavailable"}}`, rec.Body.String())
}

func TestStoreHealthChecks_NoStores(t *testing.T) {
	assert.Empty(t, storeHealthChecks(nil, nil))
}
