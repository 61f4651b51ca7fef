package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/safemesh/mesh-console/config"
	"github.com/safemesh/mesh-console/internal/adapters/sweeper"
	"github.com/safemesh/mesh-console/internal/core"
	"github.com/safemesh/mesh-console/internal/data"
	httpx "github.com/safemesh/mesh-console/internal/http"
	"github.com/safemesh/mesh-console/internal/observability/metrics"
	"github.com/safemesh/mesh-console/internal/ports"
	"github.com/safemesh/mesh-console/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Console      *service.Console
	Sessions     *service.SessionRegistry
	Ledger       *service.Ledger
	Audit        *service.AuditRecorder
	Metrics      *metrics.Metrics
	HealthChecks map[string]httpx.HealthCheck
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB               // Optional: required when the audit sink is postgres
	RedisClient redis.UniversalClient // Optional: required when sessions use redis
	Verifier    ports.CredentialVerifier
	Clock       ports.Clock // Optional: defaults to wall time
	Logger      *slog.Logger
}

// NewServices wires the audit trail, ledger, session registry and console.
func NewServices(deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps missing AppConfig")
	}
	if deps.Verifier == nil {
		return ServiceContainer{}, errors.New("credential verifier is required")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = data.RealTimeProvider{}
	}
	consoleMetrics := metrics.New(newMetricsRegistry())

	audit, err := service.NewAuditRecorder(service.AuditRecorderOptions{
		Clock:       clock,
		Sink:        newAuditSink(cfg, deps.DB, logger),
		SinkTimeout: cfg.Audit.SinkTimeout,
		Metrics:     consoleMetrics,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire audit recorder: %w", err)
	}

	ledgerOpts := service.LedgerOptions{Clock: clock, Audit: audit, Logger: logger}
	if cfg.Console.SeedDemoData {
		seed := service.DemoSeed()
		ledgerOpts.Seed = &seed
	}
	ledger, err := service.NewLedger(ledgerOpts)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire ledger: %w", err)
	}

	slot, err := BuildSessionSlot(SlotConfig{
		Sessions:    cfg.Sessions,
		RedisClient: deps.RedisClient,
		Clock:       clock,
	})
	if err != nil {
		return ServiceContainer{}, err
	}
	sessions, err := service.NewSessionRegistry(service.SessionRegistryOptions{
		Verifier:  deps.Verifier,
		Clock:     clock,
		Slot:      slot,
		KeyPrefix: cfg.Sessions.KeyPrefix,
		TTL:       cfg.Auth.SessionTTL,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire session registry: %w", err)
	}

	console, err := service.NewConsole(service.ConsoleOptions{
		Sessions:         sessions,
		Ledger:           ledger,
		Audit:            audit,
		NetworkHealthPct: cfg.Console.NetworkHealthPct,
		QuantumPairs:     cfg.Console.QuantumPairs,
		Logger:           logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("wire console: %w", err)
	}

	return ServiceContainer{
		Console:      console,
		Sessions:     sessions,
		Ledger:       ledger,
		Audit:        audit,
		Metrics:      consoleMetrics,
		HealthChecks: storeHealthChecks(deps.DB, deps.RedisClient),
	}, nil
}

// storeHealthChecks pings the connected stores. Stores that are not
// configured are not reported.
func storeHealthChecks(db *sql.DB, redisClient redis.UniversalClient) map[string]httpx.HealthCheck {
	checks := make(map[string]httpx.HealthCheck, 2)
	if db != nil {
		checks["postgres"] = db.PingContext
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	return checks
}

// newMetricsRegistry returns a registry carrying the runtime collectors.
func newMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

//nolint:ireturn // nil means the trail stays in memory.
func newAuditSink(cfg *config.AppConfig, db *sql.DB, logger *slog.Logger) core.AuditSink {
	if cfg.Audit.Sink != config.AuditSinkPostgres {
		return nil
	}
	if db == nil {
		logger.Warn("AUDIT_SINK=postgres selected without a database; audit trail kept in memory only")
		return nil
	}
	return data.NewAuditRepo(db, cfg.Audit.Instance)
}

// ServiceOrchestrationConfig groups dependencies for RunServicesWithShutdown.
type ServiceOrchestrationConfig struct {
	Config   *config.AppConfig
	Services ServiceContainer
	Logger   *slog.Logger
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// It blocks until SIGINT/SIGTERM or until a service fails.
func RunServicesWithShutdown(ctx context.Context, cfg *ServiceOrchestrationConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(sigCtx)

	if cfg.Config.IsHTTPServerEnabled() {
		server := NewHTTPServer(&HTTPServerConfig{
			Config:   cfg.Config,
			Services: cfg.Services,
			Logger:   logger,
		})
		group.Go(func() error { return serveHTTP(gctx, server, cfg.Config.HTTP, logger) })
	}

	if cfg.Config.IsSweeperEnabled() {
		runner, err := sweeper.NewRunner(sweeper.RunnerOptions{
			Sessions: cfg.Services.Sessions,
			Config:   cfg.Config.Sweeper,
			Metrics:  sweeperMetrics(cfg.Services.Metrics),
			Logger:   logger,
		})
		if err != nil {
			return fmt.Errorf("wire sweeper: %w", err)
		}
		group.Go(func() error {
			if err := runner.Run(gctx); err != nil {
				return fmt.Errorf("sweeper failed: %w", err)
			}
			return nil
		})
		logger.InfoContext(ctx, "background service started", "service", config.ServiceModeSweeper)
	}

	err := group.Wait()
	logger.InfoContext(ctx, "services stopped")
	return err
}

// serveHTTP runs server until ctx is done, then shuts it down gracefully.
func serveHTTP(ctx context.Context, server *http.Server, cfg config.HTTPConfig, logger *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server failed: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	logger.Info("HTTP server stopped")
	return <-errCh
}

// sweeperMetrics keeps a nil *metrics.Metrics from becoming a non-nil interface.
//
//nolint:ireturn // nil disables sweep counters.
func sweeperMetrics(m *metrics.Metrics) core.ConsoleMetrics {
	if m == nil {
		return nil
	}
	return m
}
