package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	"github.com/safemesh/mesh-console/internal/ports"
)

// SessionRegistryOptions groups dependencies for SessionRegistry.
type SessionRegistryOptions struct {
	Verifier  ports.CredentialVerifier // Required: credential check
	Clock     ports.Clock              // Required: expiry checks
	Slot      ports.SessionSlot        // Optional: remember-me persistence
	KeyPrefix string                   // Optional: prefix for slot keys
	TTL       time.Duration            // Optional: session lifetime
	Logger    *slog.Logger             // Optional: structured logger
}

// SessionRegistry holds one SessionStore per client context.
//
// The default context ("") persists under "<prefix>auth"; client contexts
// persist under "<prefix><clientID>:auth".
type SessionRegistry struct {
	mu     sync.Mutex
	stores map[string]*SessionStore

	opts   SessionRegistryOptions
	logger *slog.Logger
}

// NewSessionRegistry constructs a SessionRegistry.
func NewSessionRegistry(opts SessionRegistryOptions) (*SessionRegistry, error) {
	if opts.Verifier == nil {
		return nil, errors.New("session registry: credential verifier is required")
	}
	if opts.Clock == nil {
		return nil, errors.New("session registry: clock is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opts.Logger = logger
	return &SessionRegistry{
		stores: make(map[string]*SessionStore),
		opts:   opts,
		logger: logger.With("component", "session_registry"),
	}, nil
}

// SlotKey returns the persistence key for clientID.
func (r *SessionRegistry) SlotKey(clientID string) string {
	if clientID == "" {
		return r.opts.KeyPrefix + DefaultSessionKey
	}
	return r.opts.KeyPrefix + clientID + ":" + DefaultSessionKey
}

// Lookup returns the store of clientID without creating one. A client with
// no open store is restored from the slot only when it holds a valid
// remembered session; otherwise Lookup reports false.
func (r *SessionRegistry) Lookup(ctx context.Context, clientID string) (*SessionStore, bool, error) {
	r.mu.Lock()
	s, ok := r.stores[clientID]
	r.mu.Unlock()
	if ok {
		return s, true, nil
	}
	if r.opts.Slot == nil {
		return nil, false, nil
	}

	s, err := r.open(ctx, clientID)
	if err != nil {
		return nil, false, err
	}
	if !s.holdsSession() {
		return nil, false, nil
	}
	return r.register(clientID, s, false), true, nil
}

// Login verifies the credentials for clientID and keeps the store that
// now holds the session.
func (r *SessionRegistry) Login(
	ctx context.Context,
	clientID, email, password string,
	rememberMe bool,
) (domainauth.Session, error) {
	s, ok, err := r.Lookup(ctx, clientID)
	if err != nil {
		return domainauth.Session{}, err
	}
	if !ok {
		if s, err = r.open(ctx, clientID); err != nil {
			return domainauth.Session{}, err
		}
	}
	sess, err := s.Login(ctx, email, password, rememberMe)
	if err != nil {
		return domainauth.Session{}, err
	}
	r.register(clientID, s, true)
	return sess, nil
}

// Logout ends the session of clientID, including a remembered one, and
// forgets its store.
func (r *SessionRegistry) Logout(ctx context.Context, clientID string) error {
	s, ok, err := r.Lookup(ctx, clientID)
	if err != nil || !ok {
		return err
	}
	s.Logout(ctx)

	r.mu.Lock()
	if r.stores[clientID] == s {
		delete(r.stores, clientID)
	}
	r.mu.Unlock()
	return nil
}

// open builds a store for clientID. Slot I/O happens outside the registry lock.
func (r *SessionRegistry) open(ctx context.Context, clientID string) (*SessionStore, error) {
	return OpenSessionStore(ctx, SessionStoreOptions{
		Verifier: r.opts.Verifier,
		Clock:    r.opts.Clock,
		Slot:     r.opts.Slot,
		Key:      r.SlotKey(clientID),
		TTL:      r.opts.TTL,
		Logger:   r.opts.Logger.With("client_id", clientID),
	})
}

// register keeps s for clientID. Without replace an already registered
// store wins and is returned.
func (r *SessionRegistry) register(clientID string, s *SessionStore, replace bool) *SessionStore {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cur, ok := r.stores[clientID]; ok && !replace {
		return cur
	}
	r.stores[clientID] = s
	return s
}

// Sweep logs out every expired session and forgets stores that no longer
// hold a session. It returns how many sessions were cleared.
func (r *SessionRegistry) Sweep(ctx context.Context) int {
	r.mu.Lock()
	stores := make([]*SessionStore, 0, len(r.stores))
	for _, s := range r.stores {
		stores = append(stores, s)
	}
	r.mu.Unlock()

	cleared := 0
	for _, s := range stores {
		if s.ExpireIfDue(ctx) {
			cleared++
		}
	}

	dropped := 0
	r.mu.Lock()
	for id, s := range r.stores {
		if !s.holdsSession() {
			delete(r.stores, id)
			dropped++
		}
	}
	r.mu.Unlock()

	if cleared > 0 || dropped > 0 {
		r.logger.InfoContext(ctx, "expired sessions swept", "count", cleared, "stores_dropped", dropped)
	}
	return cleared
}

// Len returns the number of client contexts with an open store.
func (r *SessionRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
