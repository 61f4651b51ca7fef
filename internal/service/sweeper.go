package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"log/slog"
	"time"

	"github.com/safemesh/mesh-console/internal/core"
)

// SweeperServiceOptions groups dependencies for SweeperService.
type SweeperServiceOptions struct {
	Sessions core.SessionSweeper // Required: session registry
	Interval time.Duration       // Required: tick interval
	Metrics  core.ConsoleMetrics // Optional: swept-session counter
	Logger   *slog.Logger        // Optional: structured logger
}

// SweeperService periodically logs out expired sessions so that abandoned
// client contexts do not keep remembered sessions in the slot.
type SweeperService struct {
	sessions core.SessionSweeper
	interval time.Duration
	metrics  core.ConsoleMetrics
	logger   *slog.Logger
}

// NewSweeperService constructs a new SweeperService.
func NewSweeperService(opts SweeperServiceOptions) (*SweeperService, error) {
	if opts.Sessions == nil {
		return nil, errors.New("SessionSweeper is required")
	}
	if opts.Interval <= 0 {
		return nil, errors.New("sweep interval must be positive")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "sweeper_service")
		logger.Debug("SweeperService initialized", "interval", opts.Interval)
	}

	return &SweeperService{
		sessions: opts.Sessions,
		interval: opts.Interval,
		metrics:  opts.Metrics,
		logger:   logger,
	}, nil
}

// Run starts the sweep loop and runs until the context is cancelled.
// Returns nil on graceful shutdown (context.Canceled), error otherwise.
func (s *SweeperService) Run(ctx context.Context) error {
	if s.logger != nil {
		s.logger.InfoContext(ctx, "starting sweeper service", "interval", s.interval)
	}

	// Add jitter to prevent thundering herd if multiple instances start together
	s.waitWithJitter(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.SweepOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.InfoContext(ctx, "sweeper service stopping", "reason", ctx.Err())
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce runs a single sweep and returns the number of cleared sessions.
func (s *SweeperService) SweepOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}
	start := time.Now()
	cleared := s.sessions.Sweep(ctx)
	if s.metrics != nil {
		s.metrics.AddSessionsSwept(cleared)
	}
	if s.logger != nil {
		s.logger.DebugContext(ctx, "session sweep finished",
			"cleared", cleared,
			"elapsed", time.Since(start))
	}
	return cleared
}

// waitWithJitter adds a random delay up to 10% of the interval.
func (s *SweeperService) waitWithJitter(ctx context.Context) {
	maxJitter := int64(s.interval / 10)
	if maxJitter <= 0 {
		return
	}

	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		if s.logger != nil {
			s.logger.WarnContext(ctx, "failed to generate jitter, skipping", "error", err)
		}
		return
	}

	jitterNanos := binary.BigEndian.Uint64(buf[:]) % uint64(maxJitter)
	jitter := time.Duration(int64(jitterNanos)) // #nosec G115 - bounded by maxJitter which is int64

	select {
	case <-time.After(jitter):
	case <-ctx.Done():
	}
}
