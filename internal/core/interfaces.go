package core

import (
	"context"

	"github.com/safemesh/mesh-console/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on concrete implementations.

// AuditSink durably mirrors audit entries as they are recorded.
type AuditSink interface {
	Append(ctx context.Context, entry model.AuditLogEntry) error
}

// AuditLogRepository is the durable audit store read by the admin CLI.
type AuditLogRepository interface {
	AuditSink
	// List returns entries most-recent-first.
	List(ctx context.Context, opts model.AuditListOptions) ([]model.AuditLogEntry, error)
}

// SessionSweeper logs out expired sessions and reports how many were cleared.
type SessionSweeper interface {
	Sweep(ctx context.Context) int
}

// ConsoleMetrics receives counters from the audit trail and the sweeper.
type ConsoleMetrics interface {
	IncAuditEntry(action string)
	IncAuditSinkFailure()
	AddSessionsSwept(n int)
}
