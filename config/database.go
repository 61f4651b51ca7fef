package config

import (
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
)

// DBConfig locates the Postgres database that mirrors the audit trail. It is
// only read when AUDIT_SINK=postgres and by the admin CLI.
type DBConfig struct {
	// URL is a full postgres:// connection string. When set it wins over the
	// discrete fields below.
	URL      string `env:"URL"`
	Host     string `env:"HOST"      envDefault:"localhost"`
	Port     int    `env:"PORT"      envDefault:"5432"`
	User     string `env:"USER"      envDefault:"meshconsole"`
	Password string `env:"PASSWORD"  envDefault:"meshconsole"`
	Name     string `env:"NAME"      envDefault:"meshconsole"`
	SSLMode  string `env:"SSL_MODE"  envDefault:"disable"`
	MaxConns int    `env:"MAX_CONNS" envDefault:"4"`

	RunMigrationsOnStart bool `env:"RUN_MIGRATIONS_ON_START" envDefault:"true"`
}

const maxDBConns = 32

// Sanitize applies guardrails to database configuration values.
func (c *DBConfig) Sanitize() {
	c.URL = strings.TrimSpace(c.URL)
	c.Host = strings.TrimSpace(c.Host)
	c.MaxConns = min(max(c.MaxConns, 1), maxDBConns)
}

// ConnString returns URL, or a postgres URL assembled from the discrete fields.
func (c DBConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:   "/" + c.Name,
	}
	if c.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {c.SSLMode}}.Encode()
	}
	return u.String()
}

// RedisMode is the Redis deployment shape backing remembered sessions.
type RedisMode string

const (
	// RedisModeDirect talks to a single node.
	RedisModeDirect RedisMode = "direct"
	// RedisModeSentinel follows the master elected by a sentinel group.
	RedisModeSentinel RedisMode = "sentinel"
	// RedisModeCluster shards keys across a cluster.
	RedisModeCluster RedisMode = "cluster"
)

// RedisConfig locates the Redis deployment used by SESSION_BACKEND=redis.
//
// The mode is derived: a sentinel master name selects sentinel, cluster nodes
// select cluster, otherwise URI names a single node (host:port or redis:// URL).
type RedisConfig struct {
	URI                string   `env:"URI"                  envDefault:"localhost:6379"`
	Password           string   `env:"PASSWORD"`
	SentinelMasterName string   `env:"SENTINEL_MASTER_NAME"`
	SentinelNodes      []string `env:"SENTINEL_NODES"`
	SentinelPassword   string   `env:"SENTINEL_PASSWORD"`
	ClusterNodes       []string `env:"CLUSTER_NODES"`
}

// Sanitize trims addresses and drops empty node entries.
func (c *RedisConfig) Sanitize() {
	c.URI = strings.TrimSpace(c.URI)
	c.SentinelMasterName = strings.TrimSpace(c.SentinelMasterName)
	c.SentinelNodes = compactAddrs(c.SentinelNodes)
	c.ClusterNodes = compactAddrs(c.ClusterNodes)
}

// Mode reports the deployment shape selected by the configuration.
func (c RedisConfig) Mode() RedisMode {
	switch {
	case c.SentinelMasterName != "":
		return RedisModeSentinel
	case len(c.ClusterNodes) > 0:
		return RedisModeCluster
	default:
		return RedisModeDirect
	}
}

// Validate checks that the selected mode has the addresses it needs.
func (c RedisConfig) Validate() error {
	if c.SentinelMasterName != "" && len(c.ClusterNodes) > 0 {
		return errors.New("redis: sentinel master name and cluster nodes are mutually exclusive")
	}
	switch c.Mode() {
	case RedisModeSentinel:
		if len(c.SentinelNodes) == 0 {
			return errors.New("redis: sentinel mode requires REDIS_SENTINEL_NODES")
		}
	case RedisModeCluster:
		return nil
	default:
		if c.URI == "" {
			return errors.New("redis: REDIS_URI is required")
		}
	}
	return nil
}

func compactAddrs(raw []string) []string {
	out := raw[:0:0]
	for _, addr := range raw {
		if trimmed := strings.TrimSpace(addr); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
