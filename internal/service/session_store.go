package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
	"github.com/safemesh/mesh-console/internal/ports"
)

const (
	// DefaultSessionTTL is the session lifetime when none is configured.
	DefaultSessionTTL = 900 * time.Second
	// DefaultSessionKey is the slot key of the default client context.
	DefaultSessionKey = "auth"
)

// SessionStoreOptions groups dependencies for SessionStore.
type SessionStoreOptions struct {
	Verifier ports.CredentialVerifier // Required: credential check
	Clock    ports.Clock              // Required: expiry checks
	Slot     ports.SessionSlot        // Optional: remember-me persistence
	Key      string                   // Optional: slot key (default "auth")
	TTL      time.Duration            // Optional: session lifetime (default 900s)
	NewToken func() string            // Optional: token source (default UUIDv4)
	Logger   *slog.Logger             // Optional: structured logger
}

// SessionStore owns the session of one client context.
//
// At most one session is held. Every read checks expiry and clears an
// expired session, in memory and in the slot, under the same lock.
type SessionStore struct {
	mu      sync.Mutex
	current *domainauth.Session

	verifier ports.CredentialVerifier
	clock    ports.Clock
	slot     ports.SessionSlot
	key      string
	ttl      time.Duration
	newToken func() string
	logger   *slog.Logger
}

// OpenSessionStore constructs a SessionStore and restores a remembered
// session from the slot. A missing, unreadable, corrupt or expired record
// leaves the store logged out; corrupt and expired records are deleted.
func OpenSessionStore(ctx context.Context, opts SessionStoreOptions) (*SessionStore, error) {
	if opts.Verifier == nil {
		return nil, errors.New("session store: credential verifier is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("session store: clock is required")
	}
	key := strings.TrimSpace(opts.Key)
	if key == "" {
		key = DefaultSessionKey
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	newToken := opts.NewToken
	if newToken == nil {
		newToken = uuid.NewString
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &SessionStore{
		verifier: opts.Verifier,
		clock:    opts.Clock,
		slot:     opts.Slot,
		key:      key,
		ttl:      ttl,
		newToken: newToken,
		logger:   logger.With("component", "session_store", "session_key", key),
	}
	s.restore(ctx)
	return s, nil
}

func (s *SessionStore) restore(ctx context.Context) {
	if s.slot == nil {
		return
	}
	raw, err := s.slot.Load(ctx, s.key)
	if err != nil {
		if !errors.Is(err, ports.ErrSlotEmpty) {
			s.logger.WarnContext(ctx, "failed to load persisted session",
				"error", apperrors.StorageUnavailable(err, "load session"))
		}
		return
	}

	var rec domainauth.PersistedSession
	if err := json.Unmarshal(raw, &rec); err != nil || rec.Token == "" {
		s.logger.WarnContext(ctx, "discarding corrupt persisted session", "error", err)
		s.deletePersisted(ctx)
		return
	}

	sess := rec.Session()
	if !sess.ValidAt(s.clock.Now()) {
		s.logger.InfoContext(ctx, "discarding expired persisted session")
		s.deletePersisted(ctx)
		return
	}

	s.mu.Lock()
	s.current = &sess
	s.mu.Unlock()
	s.logger.InfoContext(ctx, "restored persisted session", "user_id", sess.Principal.ID)
}

// Login verifies the credentials and replaces any existing session.
// With rememberMe the session is written to the slot; otherwise any stale
// persisted copy is removed.
func (s *SessionStore) Login(ctx context.Context, email, password string, rememberMe bool) (domainauth.Session, error) {
	principal, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		if apperrors.IsInvalidCredentials(err) {
			s.logger.InfoContext(ctx, "login rejected", "email", strings.TrimSpace(email))
			return domainauth.Session{}, err
		}
		return domainauth.Session{}, fmt.Errorf("verify credentials: %w", err)
	}

	now := s.clock.Now()
	sess := domainauth.Session{
		Token:     s.newToken(),
		Principal: principal,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &sess
	if rememberMe {
		s.persist(ctx, sess)
	} else {
		s.deletePersisted(ctx)
	}

	s.logger.InfoContext(ctx, "login succeeded",
		"user_id", principal.ID,
		"role", principal.Role,
		"remember_me", rememberMe)
	return sess, nil
}

// Current returns the active session. An expired session is logged out as a
// side effect and reported absent.
func (s *SessionStore) Current(ctx context.Context) (domainauth.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return domainauth.Session{}, false
	}
	if !s.current.ValidAt(s.clock.Now()) {
		s.clearLocked(ctx)
		return domainauth.Session{}, false
	}
	return *s.current, true
}

// Logout clears the session and its persisted copy. It always succeeds.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked(ctx)
}

// IsAuthenticated reports whether a non-expired session is present.
func (s *SessionStore) IsAuthenticated(ctx context.Context) bool {
	_, ok := s.Current(ctx)
	return ok
}

// TimeUntilExpiry returns the remaining session lifetime, or 0 without a session.
func (s *SessionStore) TimeUntilExpiry(ctx context.Context) time.Duration {
	sess, ok := s.Current(ctx)
	if !ok {
		return 0
	}
	return sess.Remaining(s.clock.Now())
}

// ExpireIfDue clears an expired session and reports whether it did.
func (s *SessionStore) ExpireIfDue(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.ValidAt(s.clock.Now()) {
		return false
	}
	s.clearLocked(ctx)
	return true
}

// holdsSession reports whether an unexpired session is held, without
// clearing anything.
func (s *SessionStore) holdsSession() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil && s.current.ValidAt(s.clock.Now())
}

func (s *SessionStore) clearLocked(ctx context.Context) {
	if s.current != nil {
		s.logger.InfoContext(ctx, "session cleared", "user_id", s.current.Principal.ID)
	}
	s.current = nil
	s.deletePersisted(ctx)
}

func (s *SessionStore) persist(ctx context.Context, sess domainauth.Session) {
	if s.slot == nil {
		return
	}
	raw, err := json.Marshal(sess.ToPersisted())
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to encode session", "error", err)
		return
	}
	if err := s.slot.Save(ctx, s.key, raw, sess.Remaining(s.clock.Now())); err != nil {
		s.logger.WarnContext(ctx, "failed to persist session",
			"error", apperrors.StorageUnavailable(err, "save session"))
	}
}

func (s *SessionStore) deletePersisted(ctx context.Context) {
	if s.slot == nil {
		return
	}
	if err := s.slot.Delete(ctx, s.key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete persisted session",
			"error", apperrors.StorageUnavailable(err, "delete session"))
	}
}
