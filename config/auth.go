package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// AuthMode represents the credential verification mode for the application.
type AuthMode string

const (
	// AuthModeStatic verifies against a single configured identity (demo/dev only).
	AuthModeStatic AuthMode = "static"
	// AuthModeOIDC verifies credentials against an OIDC provider's token endpoint.
	AuthModeOIDC AuthMode = "oidc"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuthMode.
func (a *AuthMode) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "static", "oidc":
		*a = AuthMode(v)
		return nil
	default:
		return fmt.Errorf("invalid AuthMode: %q (valid options: static, oidc)", v)
	}
}

// OIDCConfig contains OIDC password-grant configuration.
type OIDCConfig struct {
	ClientID     string `env:"CLIENT_ID"     envDefault:"mesh-console"`
	ClientSecret string `env:"CLIENT_SECRET"`
	Scope        string `env:"SCOPE"         envDefault:"openid profile email groups"`
	DiscoveryURL string `env:"DISCOVERY_URL"`
}

// StaticAuthConfig controls the single demo identity.
// Used when AUTH_MODE=static for development and demos.
type StaticAuthConfig struct {
	UserID   string `env:"USER_ID"  envDefault:"1"`
	Name     string `env:"NAME"     envDefault:"Admin User"`
	Email    string `env:"EMAIL"    envDefault:"admin@gmail.com"`
	Password string `env:"PASSWORD" envDefault:"admin123"`
	Role     string `env:"ROLE"     envDefault:"Administrator"`
}

// AuthConfig groups all authentication-related configuration.
type AuthConfig struct {
	// Mode determines which credential verifier to use.
	Mode AuthMode `env:"AUTH_MODE" envDefault:"static"`

	// SessionTTL is the lifetime of a session from the moment of login.
	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"900s"`

	// OIDC configuration (used when Mode=oidc).
	OIDC OIDCConfig `envPrefix:"OIDC_"`

	// Static configuration (used when Mode=static).
	Static StaticAuthConfig `envPrefix:"STATIC_AUTH_"`

	// AdminGroup maps to the Administrator role.
	AdminGroup string `env:"ADMIN_GROUP" envDefault:"mesh-admins"`

	// GuideGroup maps to the Guide role.
	GuideGroup string `env:"GUIDE_GROUP" envDefault:"mesh-guides"`

	// ResponderGroup maps to the Responder role.
	ResponderGroup string `env:"RESPONDER_GROUP" envDefault:"mesh-responders"`
}

// Sanitize applies guardrails to auth configuration values.
func (a *AuthConfig) Sanitize() {
	if a.SessionTTL < time.Minute {
		a.SessionTTL = time.Minute
	}
	a.Static.Email = strings.TrimSpace(a.Static.Email)
	a.OIDC.DiscoveryURL = strings.TrimSpace(a.OIDC.DiscoveryURL)
}

// SessionBackend selects where remembered sessions are persisted.
type SessionBackend string

const (
	// SessionBackendMemory keeps remembered sessions in process memory.
	SessionBackendMemory SessionBackend = "memory"
	// SessionBackendRedis keeps remembered sessions in Redis.
	SessionBackendRedis SessionBackend = "redis"
)

// UnmarshalText implements encoding.TextUnmarshaler for SessionBackend.
func (b *SessionBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "memory", "redis":
		*b = SessionBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid SessionBackend: %q (valid options: memory, redis)", v)
	}
}

// SessionConfig controls the persistence slot used by "remember me" logins.
type SessionConfig struct {
	Backend   SessionBackend `env:"SESSION_BACKEND"    envDefault:"memory"`
	KeyPrefix string         `env:"SESSION_KEY_PREFIX" envDefault:"mesh:"`
}

// Sanitize applies guardrails to session configuration values.
func (s *SessionConfig) Sanitize() {
	s.KeyPrefix = strings.TrimSpace(s.KeyPrefix)
}

// AuditSink selects the durable mirror for audit entries.
type AuditSink string

const (
	// AuditSinkNone keeps the audit trail in memory only.
	AuditSinkNone AuditSink = "none"
	// AuditSinkPostgres mirrors each entry into the audit_log table.
	AuditSinkPostgres AuditSink = "postgres"
)

// UnmarshalText implements encoding.TextUnmarshaler for AuditSink.
func (s *AuditSink) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "none", "postgres":
		*s = AuditSink(v)
		return nil
	default:
		return fmt.Errorf("invalid AuditSink: %q (valid options: none, postgres)", v)
	}
}

// AuditConfig controls the audit trail.
type AuditConfig struct {
	Sink AuditSink `env:"AUDIT_SINK" envDefault:"none"`
	// SinkTimeout bounds each synchronous mirror write.
	SinkTimeout time.Duration `env:"AUDIT_SINK_TIMEOUT" envDefault:"2s"`
	// Instance names this console in the durable trail. Defaults to the host name.
	Instance string `env:"AUDIT_INSTANCE"`
}

// Sanitize applies guardrails to audit configuration values.
func (a *AuditConfig) Sanitize() {
	if a.SinkTimeout <= 0 {
		a.SinkTimeout = 2 * time.Second
	}
	a.Instance = strings.TrimSpace(a.Instance)
	if a.Instance == "" {
		a.Instance = defaultAuditInstance()
	}
}

func defaultAuditInstance() string {
	if host, err := os.Hostname(); err == nil && strings.TrimSpace(host) != "" {
		return strings.TrimSpace(host)
	}
	return "mesh-console"
}
