package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	"github.com/safemesh/mesh-console/internal/domain/model"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
)

// ConsoleOptions groups dependencies for Console.
type ConsoleOptions struct {
	Sessions         *SessionRegistry // Required: per-client sessions
	Ledger           *Ledger          // Required: users, alerts and evidence
	Audit            *AuditRecorder   // Required: audit trail
	NetworkHealthPct int              // Optional: reported dashboard health
	QuantumPairs     int              // Optional: reported relay pairs
	Logger           *slog.Logger     // Optional: structured logger
}

// Console is the query/command entry point of the engine.
//
// Commands resolve the caller's session before touching the ledger. Without
// a valid session they fail with unauthenticated and nothing is recorded.
// Simulations are the exception and run as System when no one is logged in.
type Console struct {
	sessions     *SessionRegistry
	ledger       *Ledger
	audit        *AuditRecorder
	healthPct    int
	quantumPairs int
	logger       *slog.Logger
}

// NewConsole constructs a Console.
func NewConsole(opts ConsoleOptions) (*Console, error) {
	if opts.Sessions == nil {
		return nil, errors.New("console: session registry is required")
	}
	if opts.Ledger == nil {
		return nil, errors.New("console: ledger is required")
	}
	if opts.Audit == nil {
		return nil, errors.New("console: audit recorder is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{
		sessions:     opts.Sessions,
		ledger:       opts.Ledger,
		audit:        opts.Audit,
		healthPct:    opts.NetworkHealthPct,
		quantumPairs: opts.QuantumPairs,
		logger:       logger.With("component", "console"),
	}, nil
}

// Login starts a session for clientID and records the login.
func (c *Console) Login(
	ctx context.Context,
	clientID, email, password string,
	rememberMe bool,
) (domainauth.Session, error) {
	sess, err := c.sessions.Login(ctx, clientID, email, password, rememberMe)
	if err != nil {
		return domainauth.Session{}, err
	}
	c.audit.Record(ctx, model.AuditActionLogin, sess.Principal.DisplayName(),
		fmt.Sprintf("Successful %s login", strings.ToLower(string(sess.Principal.Role))))
	return sess, nil
}

// Logout ends the session of clientID. It succeeds without a session.
func (c *Console) Logout(ctx context.Context, clientID string) error {
	return c.sessions.Logout(ctx, clientID)
}

// Session returns the current session of clientID or an unauthenticated error.
func (c *Console) Session(ctx context.Context, clientID string) (domainauth.Session, error) {
	return c.requireSession(ctx, clientID, "session")
}

// TimeUntilExpiry returns the remaining lifetime of clientID's session.
func (c *Console) TimeUntilExpiry(ctx context.Context, clientID string) (time.Duration, error) {
	store, ok, err := c.sessions.Lookup(ctx, clientID)
	if err != nil || !ok {
		return 0, err
	}
	return store.TimeUntilExpiry(ctx), nil
}

func (c *Console) requireSession(ctx context.Context, clientID, action string) (domainauth.Session, error) {
	store, ok, err := c.sessions.Lookup(ctx, clientID)
	if err != nil {
		return domainauth.Session{}, err
	}
	if !ok {
		return domainauth.Session{}, apperrors.Unauthenticated(action)
	}
	sess, ok := store.Current(ctx)
	if !ok {
		return domainauth.Session{}, apperrors.Unauthenticated(action)
	}
	return sess, nil
}

func (c *Console) requireActor(ctx context.Context, clientID, action string) (string, error) {
	sess, err := c.requireSession(ctx, clientID, action)
	if err != nil {
		return "", err
	}
	return sess.Principal.DisplayName(), nil
}

// AcknowledgeAlert acknowledges alertID as the caller.
func (c *Console) AcknowledgeAlert(ctx context.Context, clientID, alertID string) (model.AlertResult, error) {
	actor, err := c.requireActor(ctx, clientID, "acknowledge alert")
	if err != nil {
		return model.AlertResult{}, err
	}
	return c.ledger.AcknowledgeAlert(ctx, actor, alertID)
}

// ResolveAlert resolves alertID as the caller.
func (c *Console) ResolveAlert(ctx context.Context, clientID, alertID string) (model.AlertResult, error) {
	actor, err := c.requireActor(ctx, clientID, "resolve alert")
	if err != nil {
		return model.AlertResult{}, err
	}
	return c.ledger.ResolveAlert(ctx, actor, alertID)
}

// ToggleUserStatus suspends or reactivates userID as the caller.
func (c *Console) ToggleUserStatus(ctx context.Context, clientID, userID string) (model.User, error) {
	actor, err := c.requireActor(ctx, clientID, "toggle user status")
	if err != nil {
		return model.User{}, err
	}
	return c.ledger.ToggleUserStatus(ctx, actor, userID)
}

// PreserveEvidence preserves evidenceID as the caller.
func (c *Console) PreserveEvidence(ctx context.Context, clientID, evidenceID string) (model.PreserveResult, error) {
	actor, err := c.requireActor(ctx, clientID, "preserve evidence")
	if err != nil {
		return model.PreserveResult{}, err
	}
	return c.ledger.PreserveEvidence(ctx, actor, evidenceID)
}

// RunSimulation raises a simulated emergency. It is attributed to the
// caller when a session is present and to System otherwise.
func (c *Console) RunSimulation(ctx context.Context, clientID string) (model.Alert, error) {
	store, ok, err := c.sessions.Lookup(ctx, clientID)
	if err != nil {
		return model.Alert{}, err
	}
	actor := domainauth.SystemActor
	if ok {
		if sess, valid := store.Current(ctx); valid {
			actor = sess.Principal.DisplayName()
		}
	}
	return c.ledger.RunSimulation(ctx, actor), nil
}

// Stats returns the dashboard counters.
func (c *Console) Stats(ctx context.Context, clientID string) (model.DashboardStats, error) {
	if _, err := c.requireSession(ctx, clientID, "view stats"); err != nil {
		return model.DashboardStats{}, err
	}
	return c.ledger.Stats(c.healthPct), nil
}

// MeshStatus returns relay activity on the mesh.
func (c *Console) MeshStatus(ctx context.Context, clientID string) (model.MeshStatus, error) {
	if _, err := c.requireSession(ctx, clientID, "view mesh status"); err != nil {
		return model.MeshStatus{}, err
	}
	return c.ledger.MeshStatus(c.quantumPairs), nil
}

// ListAlerts returns all alerts, most recent first.
func (c *Console) ListAlerts(ctx context.Context, clientID string) ([]model.Alert, error) {
	if _, err := c.requireSession(ctx, clientID, "list alerts"); err != nil {
		return nil, err
	}
	return c.ledger.ListAlerts(), nil
}

// ListUsers returns one page of users.
func (c *Console) ListUsers(ctx context.Context, clientID string, q model.UserQuery) (model.UserPage, error) {
	if _, err := c.requireSession(ctx, clientID, "list users"); err != nil {
		return model.UserPage{}, err
	}
	return c.ledger.ListUsers(q), nil
}

// ListEvidence returns the evidence of deviceID.
func (c *Console) ListEvidence(
	ctx context.Context,
	clientID, deviceID string,
	q model.EvidenceQuery,
) ([]model.Evidence, error) {
	if _, err := c.requireSession(ctx, clientID, "list evidence"); err != nil {
		return nil, err
	}
	return c.ledger.ListEvidence(deviceID, q)
}

// EvidenceSummary counts the evidence of deviceID.
func (c *Console) EvidenceSummary(ctx context.Context, clientID, deviceID string) (model.EvidenceSummary, error) {
	if _, err := c.requireSession(ctx, clientID, "summarize evidence"); err != nil {
		return model.EvidenceSummary{}, err
	}
	return c.ledger.EvidenceSummary(deviceID), nil
}

// BehavioralScore returns the behavior assessment of deviceID.
func (c *Console) BehavioralScore(ctx context.Context, clientID, deviceID string) (model.BehavioralScore, error) {
	if _, err := c.requireSession(ctx, clientID, "view behavioral score"); err != nil {
		return model.BehavioralScore{}, err
	}
	return BehavioralScore(deviceID), nil
}

// ListAuditLogs returns matching audit entries, most recent first.
func (c *Console) ListAuditLogs(ctx context.Context, clientID, filter string) ([]model.AuditLogEntry, error) {
	if _, err := c.requireSession(ctx, clientID, "list audit logs"); err != nil {
		return nil, err
	}
	return c.audit.List(filter), nil
}

// AuditSummary counts audit activity.
func (c *Console) AuditSummary(ctx context.Context, clientID string) (model.AuditSummary, error) {
	if _, err := c.requireSession(ctx, clientID, "summarize audit logs"); err != nil {
		return model.AuditSummary{}, err
	}
	return c.audit.Summary(), nil
}

// ExportAuditLogs writes matching audit entries to w as JSON.
func (c *Console) ExportAuditLogs(ctx context.Context, clientID, filter string, w io.Writer) error {
	if _, err := c.requireSession(ctx, clientID, "export audit logs"); err != nil {
		return err
	}
	return c.audit.Export(w, filter)
}

// SweepExpiredSessions logs out expired sessions across all clients.
func (c *Console) SweepExpiredSessions(ctx context.Context) int {
	return c.sessions.Sweep(ctx)
}
