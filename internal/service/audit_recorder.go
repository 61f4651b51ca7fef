package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/safemesh/mesh-console/internal/core"
	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	"github.com/safemesh/mesh-console/internal/domain/model"
	"github.com/safemesh/mesh-console/internal/ports"
)

const defaultSinkTimeout = 2 * time.Second

// AuditRecorderOptions groups dependencies for AuditRecorder.
type AuditRecorderOptions struct {
	Clock       ports.Clock         // Required: timestamps entries
	IDs         *IDGenerator        // Optional: defaults to a generator on Clock
	Sink        core.AuditSink      // Optional: durable mirror
	SinkTimeout time.Duration       // Optional: bound on each mirror write (default 2s)
	Metrics     core.ConsoleMetrics // Optional: entry and sink-failure counters
	Logger      *slog.Logger        // Optional: structured logger
}

// AuditRecorder is the append-only audit trail.
//
// Entries are kept in insertion order and never mutated or removed. Queries
// read a reversed snapshot so callers see most-recent-first without touching
// stored order.
type AuditRecorder struct {
	mu      sync.RWMutex
	entries []model.AuditLogEntry

	clock       ports.Clock
	ids         *IDGenerator
	sink        core.AuditSink
	sinkTimeout time.Duration
	metrics     core.ConsoleMetrics
	logger      *slog.Logger
}

// NewAuditRecorder constructs an AuditRecorder.
func NewAuditRecorder(opts AuditRecorderOptions) (*AuditRecorder, error) {
	if opts.Clock == nil {
		return nil, errors.New("audit recorder: clock is required")
	}
	ids := opts.IDs
	if ids == nil {
		ids = NewIDGenerator(opts.Clock.Now)
	}
	timeout := opts.SinkTimeout
	if timeout <= 0 {
		timeout = defaultSinkTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AuditRecorder{
		clock:       opts.Clock,
		ids:         ids,
		sink:        opts.Sink,
		sinkTimeout: timeout,
		metrics:     opts.Metrics,
		logger:      logger.With("component", "audit_recorder"),
	}, nil
}

// Record appends one entry and returns it. It never fails: a sink error is
// logged and the in-memory entry stands. An empty actor is recorded as System.
func (r *AuditRecorder) Record(ctx context.Context, action, actor, details string) model.AuditLogEntry {
	if strings.TrimSpace(actor) == "" {
		actor = domainauth.SystemActor
	}

	r.mu.Lock()
	entry := model.AuditLogEntry{
		ID:        r.ids.Next(),
		Timestamp: r.clock.Now(),
		Action:    action,
		User:      actor,
		Details:   details,
	}
	r.entries = append(r.entries, entry)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.IncAuditEntry(entry.Action)
	}
	r.mirror(ctx, entry)
	return entry
}

// mirror writes entry to the durable sink. The caller's cancellation is
// detached so an aborted request cannot drop a recorded transition.
func (r *AuditRecorder) mirror(ctx context.Context, entry model.AuditLogEntry) {
	if r.sink == nil {
		return
	}
	sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.sinkTimeout)
	defer cancel()

	if err := r.sink.Append(sinkCtx, entry); err != nil {
		if r.metrics != nil {
			r.metrics.IncAuditSinkFailure()
		}
		r.logger.ErrorContext(ctx, "failed to mirror audit entry",
			"audit_id", entry.ID,
			"action", entry.Action,
			"error", err)
	}
}

// Query returns a restartable most-recent-first view of entries whose action,
// actor or details contain filter (case-insensitive). An empty filter matches all.
func (r *AuditRecorder) Query(filter string) iter.Seq[model.AuditLogEntry] {
	snapshot := r.snapshot()
	needle := strings.ToLower(strings.TrimSpace(filter))

	return func(yield func(model.AuditLogEntry) bool) {
		for i := len(snapshot) - 1; i >= 0; i-- {
			e := snapshot[i]
			if !matchesAuditFilter(e, needle) {
				continue
			}
			if !yield(e) {
				return
			}
		}
	}
}

// List collects Query(filter) into a slice; it is never nil.
func (r *AuditRecorder) List(filter string) []model.AuditLogEntry {
	out := slices.Collect(r.Query(filter))
	if out == nil {
		out = []model.AuditLogEntry{}
	}
	return out
}

// Export writes the filtered most-recent-first view as indented JSON.
func (r *AuditRecorder) Export(w io.Writer, filter string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r.List(filter)); err != nil {
		return fmt.Errorf("encode audit export: %w", err)
	}
	return nil
}

// Summary counts entries, recent entries, distinct actors and critical
// actions (alert, emergency or preservation activity).
func (r *AuditRecorder) Summary() model.AuditSummary {
	snapshot := r.snapshot()
	now := r.clock.Now()

	actors := make(map[string]struct{})
	sum := model.AuditSummary{Total: len(snapshot)}
	for _, e := range snapshot {
		actors[e.User] = struct{}{}
		if model.IsRecent(now, e.Timestamp) {
			sum.Last24h++
		}
		if isCriticalAction(e.Action) {
			sum.Critical++
		}
	}
	sum.DistinctActors = len(actors)
	return sum
}

func isCriticalAction(action string) bool {
	a := strings.ToLower(action)
	return strings.Contains(a, "alert") ||
		strings.Contains(a, "emergency") ||
		strings.Contains(a, "preserve")
}

// Len returns the number of recorded entries.
func (r *AuditRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

func (r *AuditRecorder) snapshot() []model.AuditLogEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.entries)
}

func matchesAuditFilter(e model.AuditLogEntry, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(e.Action), needle) ||
		strings.Contains(strings.ToLower(e.User), needle) ||
		strings.Contains(strings.ToLower(e.Details), needle)
}
