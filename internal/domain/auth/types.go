package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents a console principal's role.
// Keep string form for easy persistence and display.
type Role string

const (
	RoleAdministrator Role = "Administrator"
	RoleResponder     Role = "Responder"
	RoleGuide         Role = "Guide"
	RoleTourist       Role = "Tourist"
)

// Valid returns true if the role is one of the known console roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleResponder, RoleGuide, RoleTourist:
		return true
	default:
		return false
	}
}

// SystemActor is the audit label used when no authenticated principal drives an action.
const SystemActor = "System"

// Principal is the authenticated identity attached to a session.
type Principal struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// DisplayName returns the label written to audit entries for this principal.
func (p Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.Email
}

// Session is a time-bounded authorization grant identified by an opaque token.
type Session struct {
	Token     string    `json:"token"`
	Principal Principal `json:"principal"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt reports whether the session is still valid at now (now < ExpiresAt).
func (s Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// Remaining returns max(0, ExpiresAt-now).
func (s Session) Remaining(now time.Time) time.Duration {
	if d := s.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// PersistedSession is the single record kept in the persistence slot for
// "remember me" logins. ExpiresAt is epoch milliseconds.
type PersistedSession struct {
	Token     string    `json:"token"`
	User      Principal `json:"user"`
	ExpiresAt int64     `json:"expiresAt"`
}

// ToPersisted converts a session to its slot representation.
// IssuedAt is not persisted; it is reconstructed as unknown on restore.
func (s Session) ToPersisted() PersistedSession {
	return PersistedSession{
		Token:     s.Token,
		User:      s.Principal,
		ExpiresAt: s.ExpiresAt.UnixMilli(),
	}
}

// Session converts a persisted record back into a session.
func (p PersistedSession) Session() Session {
	return Session{
		Token:     p.Token,
		Principal: p.User,
		ExpiresAt: time.UnixMilli(p.ExpiresAt),
	}
}
