package auth

// Package auth contains simple hand-written test doubles for auth ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
	"github.com/safemesh/mesh-console/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.CredentialVerifier = (*StaticVerifier)(nil)
	_ ports.SessionSlot        = (*FailingSlot)(nil)
)

// StaticVerifier accepts exactly one email/password pair in plain text.
type StaticVerifier struct {
	VerifyFunc func(ctx context.Context, email, password string) (domainauth.Principal, error)

	Email     string
	Password  string
	Principal domainauth.Principal

	mu    sync.Mutex
	calls int
}

// NewStaticVerifier creates a StaticVerifier for the demo administrator.
func NewStaticVerifier() *StaticVerifier {
	return &StaticVerifier{
		Email:    "admin@gmail.com",
		Password: "admin123",
		Principal: domainauth.Principal{
			ID:    "1",
			Name:  "Admin User",
			Email: "admin@gmail.com",
			Role:  domainauth.RoleAdministrator,
		},
	}
}

func (v *StaticVerifier) Verify(ctx context.Context, email, password string) (domainauth.Principal, error) {
	v.mu.Lock()
	v.calls++
	v.mu.Unlock()

	if v.VerifyFunc != nil {
		return v.VerifyFunc(ctx, email, password)
	}
	if !strings.EqualFold(strings.TrimSpace(email), v.Email) || password != v.Password {
		return domainauth.Principal{}, apperrors.InvalidCredentials()
	}
	return v.Principal, nil
}

// Calls returns how many times Verify ran.
func (v *StaticVerifier) Calls() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.calls
}

// ErrSlotDown is the default failure returned by FailingSlot.
var ErrSlotDown = errors.New("slot unavailable")

// FailingSlot is a SessionSlot whose operations fail. Nil per-op errors fall
// back to Err, and a nil Err falls back to ErrSlotDown.
type FailingSlot struct {
	Err       error
	LoadErr   error
	SaveErr   error
	DeleteErr error

	mu      sync.Mutex
	loads   int
	saves   int
	deletes int
}

func (s *FailingSlot) Load(_ context.Context, _ string) ([]byte, error) {
	s.mu.Lock()
	s.loads++
	s.mu.Unlock()
	return nil, s.pick(s.LoadErr)
}

func (s *FailingSlot) Save(_ context.Context, _ string, _ []byte, _ time.Duration) error {
	s.mu.Lock()
	s.saves++
	s.mu.Unlock()
	return s.pick(s.SaveErr)
}

func (s *FailingSlot) Delete(_ context.Context, _ string) error {
	s.mu.Lock()
	s.deletes++
	s.mu.Unlock()
	return s.pick(s.DeleteErr)
}

// Counts returns the number of Load, Save and Delete calls.
func (s *FailingSlot) Counts() (loads, saves, deletes int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads, s.saves, s.deletes
}

func (s *FailingSlot) pick(opErr error) error {
	if opErr != nil {
		return opErr
	}
	if s.Err != nil {
		return s.Err
	}
	return ErrSlotDown
}
