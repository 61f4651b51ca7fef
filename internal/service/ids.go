package service

import (
	"strconv"
	"sync"
	"time"
)

// IDGenerator issues creation-time derived identifiers (epoch milliseconds)
// that are strictly increasing even when the clock stalls or steps back.
// Identifiers are unique within one process only; the durable audit table
// keys entries by (instance, id).
type IDGenerator struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

// NewIDGenerator creates a generator driven by now. A nil now uses time.Now.
func NewIDGenerator(now func() time.Time) *IDGenerator {
	if now == nil {
		now = time.Now
	}
	return &IDGenerator{now: now}
}

// Next returns the next identifier.
func (g *IDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.now().UnixMilli()
	if n <= g.last {
		n = g.last + 1
	}
	g.last = n
	return strconv.FormatInt(n, 10)
}
