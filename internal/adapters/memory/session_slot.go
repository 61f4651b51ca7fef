package memory

// Package memory provides in-process adapters used when no external store is configured.

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/safemesh/mesh-console/internal/ports"
)

type slotEntry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// SessionSlot is an in-memory persistence slot. It survives logout/login cycles
// within one process but not restarts.
type SessionSlot struct {
	mu      sync.Mutex
	entries map[string]slotEntry
	now     func() time.Time
}

// NewSessionSlot creates an empty in-memory slot using the given clock.
// A nil clock uses time.Now.
func NewSessionSlot(clock ports.Clock) *SessionSlot {
	now := time.Now
	if clock != nil {
		now = clock.Now
	}
	return &SessionSlot{entries: make(map[string]slotEntry), now: now}
}

func (s *SessionSlot) Load(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, ports.ErrSlotEmpty
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		delete(s.entries, key)
		return nil, ports.ErrSlotEmpty
	}
	return append([]byte(nil), e.value...), nil
}

func (s *SessionSlot) Save(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("slot key cannot be empty")
	}
	e := slotEntry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *SessionSlot) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Len reports the number of stored keys, including not yet evicted expired ones.
func (s *SessionSlot) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
