package redis

// Package redis provides Redis-based adapters for the mesh console.

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safemesh/mesh-console/internal/ports"
)

// SessionSlot is a Redis-backed persistence slot for remembered sessions.
// Keys expire with the session they hold.
type SessionSlot struct {
	client redis.UniversalClient
}

// NewSessionSlot creates a new Redis-based session slot.
func NewSessionSlot(client redis.UniversalClient) *SessionSlot {
	return &SessionSlot{client: client}
}

// Load returns the stored value or ports.ErrSlotEmpty when the key is absent or expired.
func (s *SessionSlot) Load(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ports.ErrSlotEmpty
	}

	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ports.ErrSlotEmpty
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return data, nil
}

// Save stores value under key. A non-positive ttl stores without expiry.
func (s *SessionSlot) Save(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return errors.New("slot key cannot be empty")
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete removes key; deleting an absent key is not an error.
func (s *SessionSlot) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil // Nothing to delete
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
