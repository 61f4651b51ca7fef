package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/safemesh/mesh-console/config"
	"github.com/safemesh/mesh-console/internal/migrate"
)

const storeConnectTimeout = 5 * time.Second

// OpenAuditDB connects the Postgres audit mirror and applies pending
// migrations when configured. It returns a nil DB when the trail is kept in
// memory only.
func OpenAuditDB(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*sql.DB, error) {
	if !cfg.NeedsPostgres() {
		return nil, nil
	}
	db, err := ConnectDB(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, err
	}
	if !cfg.Postgres.RunMigrationsOnStart {
		return db, nil
	}
	if err := RunMigrations(ctx, db, logger); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			err = errors.Join(err, fmt.Errorf("close database: %w", closeErr))
		}
		return nil, err
	}
	return db, nil
}

// ConnectDB opens a pgx-backed pool for cfg and verifies it.
func ConnectDB(ctx context.Context, cfg config.DBConfig, logger *slog.Logger) (*sql.DB, error) {
	connCfg, err := pgx.ParseConfig(cfg.ConnString())
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	db := stdlib.OpenDB(*connCfg)
	maxConns := max(cfg.MaxConns, 1)
	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(max(maxConns/2, 1))
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()
	if pingErr := db.PingContext(pingCtx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close database: %w", closeErr))
		}
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if logger != nil {
		logger.InfoContext(ctx, "audit database connected",
			"host", connCfg.Host,
			"database", connCfg.Database,
			"max_conns", maxConns)
	}
	return db, nil
}

// RunMigrations applies the embedded audit_log migrations.
func RunMigrations(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	applied, err := migrate.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if logger != nil {
		logger.InfoContext(ctx, "database migrations completed", "applied", applied)
	}
	return nil
}

// ConnectRedis connects the remembered-session store in the mode cfg selects
// and verifies it.
//
//nolint:ireturn // the concrete client depends on the configured deployment mode.
func ConnectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, error) {
	opts, addr, err := redisOptions(cfg)
	if err != nil {
		return nil, err
	}
	client := newRedisClient(cfg.Mode(), opts)

	pingCtx, cancel := context.WithTimeout(ctx, storeConnectTimeout)
	defer cancel()
	if pingErr := client.Ping(pingCtx).Err(); pingErr != nil {
		if closeErr := client.Close(); closeErr != nil {
			pingErr = errors.Join(pingErr, fmt.Errorf("close redis client: %w", closeErr))
		}
		return nil, fmt.Errorf("ping redis: %w", pingErr)
	}

	if logger != nil {
		logger.InfoContext(ctx, "session redis connected", "mode", cfg.Mode(), "addr", addr)
	}
	return client, nil
}

// redisOptions translates cfg into client options plus a credential-free
// address for logs.
func redisOptions(cfg config.RedisConfig) (*redis.UniversalOptions, string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	switch cfg.Mode() {
	case config.RedisModeSentinel:
		return &redis.UniversalOptions{
			MasterName:       cfg.SentinelMasterName,
			Addrs:            cfg.SentinelNodes,
			Password:         cfg.Password,
			SentinelPassword: cfg.SentinelPassword,
		}, "sentinel:" + cfg.SentinelMasterName, nil
	case config.RedisModeCluster:
		return &redis.UniversalOptions{
			Addrs:    cfg.ClusterNodes,
			Password: cfg.Password,
		}, "cluster:" + strings.Join(cfg.ClusterNodes, ","), nil
	}

	if !strings.HasPrefix(cfg.URI, "redis://") && !strings.HasPrefix(cfg.URI, "rediss://") {
		return &redis.UniversalOptions{Addrs: []string{cfg.URI}, Password: cfg.Password}, cfg.URI, nil
	}
	parsed, err := redis.ParseURL(cfg.URI)
	if err != nil {
		return nil, "", fmt.Errorf("parse redis url: %w", err)
	}
	password := parsed.Password
	if password == "" {
		password = cfg.Password
	}
	return &redis.UniversalOptions{
		Addrs:     []string{parsed.Addr},
		Username:  parsed.Username,
		Password:  password,
		DB:        parsed.DB,
		TLSConfig: parsed.TLSConfig,
	}, parsed.Addr, nil
}

//nolint:ireturn // the concrete client depends on the configured deployment mode.
func newRedisClient(mode config.RedisMode, opts *redis.UniversalOptions) redis.UniversalClient {
	switch mode {
	case config.RedisModeSentinel:
		return redis.NewFailoverClient(opts.Failover())
	case config.RedisModeCluster:
		return redis.NewClusterClient(opts.Cluster())
	default:
		return redis.NewClient(opts.Simple())
	}
}
