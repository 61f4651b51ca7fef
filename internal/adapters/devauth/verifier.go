package devauth

// Package devauth provides a simple, config-driven CredentialVerifier for local development and demos.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

// Config controls the dev verifier identity.
// All fields are required except Role, which defaults to Administrator.
type Config struct {
	UserID   string
	Name     string
	Email    string
	Password string
	Role     domainauth.Role
	// Cost is the bcrypt cost; zero uses bcrypt.DefaultCost.
	Cost int
}

// Verifier accepts exactly one configured identity.
// The password is only kept as a bcrypt hash after construction.
type Verifier struct {
	principal domainauth.Principal
	hash      []byte
}

// NewVerifier constructs a dev verifier from Config.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if strings.TrimSpace(cfg.Email) == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.Password == "" {
		return nil, errors.New("dev auth: Password is required")
	}
	role := cfg.Role
	if role == "" {
		role = domainauth.RoleAdministrator
	}
	if !role.Valid() {
		return nil, fmt.Errorf("dev auth: unknown role %q", role)
	}
	cost := cfg.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("dev auth: hash password: %w", err)
	}
	return &Verifier{
		principal: domainauth.Principal{
			ID:    cfg.UserID,
			Name:  cfg.Name,
			Email: strings.TrimSpace(cfg.Email),
			Role:  role,
		},
		hash: hash,
	}, nil
}

// Verify matches email case-insensitively and the password against the stored hash.
func (v *Verifier) Verify(_ context.Context, email, password string) (domainauth.Principal, error) {
	if !strings.EqualFold(strings.TrimSpace(email), v.principal.Email) {
		return domainauth.Principal{}, apperrors.InvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword(v.hash, []byte(password)); err != nil {
		return domainauth.Principal{}, apperrors.InvalidCredentials()
	}
	return v.principal, nil
}
