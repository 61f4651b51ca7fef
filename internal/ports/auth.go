package ports

// Package ports defines interfaces (hexagonal ports) for auth-related behavior.
// Implementations live in internal/adapters; orchestration in internal/service.

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
)

// ErrSlotEmpty is returned by SessionSlot.Load when nothing is stored under the key.
var ErrSlotEmpty = errors.New("session slot empty")

// CredentialVerifier checks an email/password pair and returns the matching principal.
// Implementations return an invalid_credentials AppError on rejection.
type CredentialVerifier interface {
	Verify(ctx context.Context, email, password string) (domainauth.Principal, error)
}

// SessionSlot is the key-value persistence slot used to survive restarts.
// Values are opaque to the slot; ttl <= 0 means no expiry.
type SessionSlot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RoleMapper maps provider groups to application roles.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}

// Clock is the time source for session expiry and audit timestamps.
type Clock interface {
	Now() time.Time
}
