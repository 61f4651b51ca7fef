package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/safemesh/mesh-console/config"
	"github.com/safemesh/mesh-console/internal/adapters/authroles"
	"github.com/safemesh/mesh-console/internal/adapters/devauth"
	"github.com/safemesh/mesh-console/internal/adapters/memory"
	"github.com/safemesh/mesh-console/internal/adapters/oidc"
	redisadapter "github.com/safemesh/mesh-console/internal/adapters/redis"
	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	"github.com/safemesh/mesh-console/internal/ports"
)

// AuthConfig contains configuration for credential verification.
type AuthConfig struct {
	Auth   config.AuthConfig
	Logger *slog.Logger
}

// BuildVerifier creates the credential verifier for the configured auth mode.
//
//nolint:ireturn // the verifier is selected at runtime.
func BuildVerifier(ctx context.Context, cfg AuthConfig) (ports.CredentialVerifier, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeStatic, "":
		return buildStaticVerifier(cfg)
	case config.AuthModeOIDC:
		return buildOIDCVerifier(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}
}

func buildStaticVerifier(cfg AuthConfig) (*devauth.Verifier, error) {
	static := cfg.Auth.Static
	v, err := devauth.NewVerifier(devauth.Config{
		UserID:   static.UserID,
		Name:     static.Name,
		Email:    static.Email,
		Password: static.Password,
		Role:     domainauth.Role(static.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("build static verifier: %w", err)
	}
	if cfg.Logger != nil {
		cfg.Logger.Warn("static auth enabled; do not use in production", "email", static.Email)
	}
	return v, nil
}

func buildOIDCVerifier(ctx context.Context, cfg AuthConfig) (*oidc.Verifier, error) {
	o := cfg.Auth.OIDC
	if o.DiscoveryURL == "" || o.ClientID == "" {
		if cfg.Logger != nil {
			cfg.Logger.Error("AUTH_MODE=oidc selected but required config missing",
				"discovery_url_empty", o.DiscoveryURL == "",
				"client_id_empty", o.ClientID == "",
			)
		}
		return nil, errors.New("oidc auth requires OIDC_DISCOVERY_URL and OIDC_CLIENT_ID")
	}

	v, err := oidc.NewVerifier(ctx, oidc.VerifierConfig{
		ClientID:     o.ClientID,
		ClientSecret: o.ClientSecret,
		Scope:        o.Scope,
		DiscoveryURL: o.DiscoveryURL,
		Roles: authroles.StaticRoleMapper{
			AdminGroup:     cfg.Auth.AdminGroup,
			ResponderGroup: cfg.Auth.ResponderGroup,
			GuideGroup:     cfg.Auth.GuideGroup,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("build oidc verifier: %w", err)
	}
	return v, nil
}

// SlotConfig contains configuration for the remembered-session slot.
type SlotConfig struct {
	Sessions    config.SessionConfig
	RedisClient redis.UniversalClient
	Clock       ports.Clock
}

// BuildSessionSlot selects the persistence slot for remembered sessions.
//
//nolint:ireturn // the slot backend is selected at runtime.
func BuildSessionSlot(cfg SlotConfig) (ports.SessionSlot, error) {
	switch cfg.Sessions.Backend {
	case config.SessionBackendRedis:
		if cfg.RedisClient == nil {
			return nil, errors.New("redis session backend requires a redis client")
		}
		return redisadapter.NewSessionSlot(cfg.RedisClient), nil
	case config.SessionBackendMemory, "":
		if cfg.Clock == nil {
			return nil, errors.New("memory session backend requires a clock")
		}
		return memory.NewSessionSlot(cfg.Clock), nil
	default:
		return nil, fmt.Errorf("unsupported session backend %q", cfg.Sessions.Backend)
	}
}
