package service

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/safemesh/mesh-console/internal/domain/model"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
	"github.com/safemesh/mesh-console/internal/ports"
)

// Simulated alert fields.
const (
	SimulationTitle       = "Simulated Emergency Event"
	SimulationDescription = "Tourist in distress - swarm mobilization initiated"
	SimulationLocation    = "Simulation Area"
)

// LedgerOptions groups dependencies for Ledger.
type LedgerOptions struct {
	Clock     ports.Clock       // Required: transition timestamps
	Audit     *AuditRecorder    // Required: audit trail
	IDs       *IDGenerator      // Optional: alert id source (defaults to a generator on Clock)
	Evaluator JMESPathEvaluator // Optional: evidence Match evaluator
	Seed      *LedgerSeed       // Optional: initial users, alerts and evidence
	Logger    *slog.Logger      // Optional: structured logger
}

// Ledger owns users, alerts and evidence and applies their transitions.
//
// Each collection has its own mutex, held across validate, mutate and record,
// so two transitions on the same id cannot interleave or double-append.
// Reads return copies.
type Ledger struct {
	usersMu sync.Mutex
	users   []model.User

	// alerts is ordered most-recent-first.
	alertsMu sync.Mutex
	alerts   []model.Alert

	evidenceMu sync.Mutex
	evidence   []model.Evidence

	clock  ports.Clock
	audit  *AuditRecorder
	ids    *IDGenerator
	jems   JMESPathEvaluator
	logger *slog.Logger
}

// NewLedger constructs a Ledger.
func NewLedger(opts LedgerOptions) (*Ledger, error) {
	if opts.Clock == nil {
		return nil, errors.New("ledger: clock is required")
	}
	if opts.Audit == nil {
		return nil, errors.New("ledger: audit recorder is required")
	}
	ids := opts.IDs
	if ids == nil {
		ids = NewIDGenerator(opts.Clock.Now)
	}
	jems := opts.Evaluator
	if jems == nil {
		jems = jmespathLibEvaluator{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	l := &Ledger{
		clock:  opts.Clock,
		audit:  opts.Audit,
		ids:    ids,
		jems:   jems,
		logger: logger.With("component", "ledger"),
	}
	if opts.Seed != nil {
		l.users = slices.Clone(opts.Seed.Users)
		l.alerts = slices.Clone(opts.Seed.Alerts)
		sortAlertsNewestFirst(l.alerts)
		l.evidence = cloneEvidence(opts.Seed.Evidence)
	}
	return l, nil
}

// AcknowledgeAlert moves an active alert to acknowledged. Acknowledging an
// alert that is already acknowledged or resolved succeeds without change.
func (l *Ledger) AcknowledgeAlert(ctx context.Context, actor, alertID string) (model.AlertResult, error) {
	return l.advanceAlert(ctx, actor, alertID, "acknowledge alert", model.AlertStatusAcknowledged,
		model.AuditActionAlertAcknowledged, "acknowledged")
}

// ResolveAlert moves an active or acknowledged alert to resolved.
func (l *Ledger) ResolveAlert(ctx context.Context, actor, alertID string) (model.AlertResult, error) {
	return l.advanceAlert(ctx, actor, alertID, "resolve alert", model.AlertStatusResolved,
		model.AuditActionAlertResolved, "resolved")
}

func (l *Ledger) advanceAlert(
	ctx context.Context,
	actor, alertID, op string,
	next model.AlertStatus,
	action, verb string,
) (model.AlertResult, error) {
	l.alertsMu.Lock()
	defer l.alertsMu.Unlock()

	i := slices.IndexFunc(l.alerts, func(a model.Alert) bool { return a.ID == alertID })
	if i < 0 {
		return model.AlertResult{}, apperrors.EntityNotFound(op, "alert", alertID)
	}

	if !l.alerts[i].Status.CanAdvanceTo(next) {
		return model.AlertResult{Alert: l.alerts[i]}, nil
	}

	l.alerts[i].Status = next
	l.audit.Record(ctx, action, actor, fmt.Sprintf("Alert %s %s", alertID, verb))
	l.logger.InfoContext(ctx, "alert status changed",
		"alert_id", alertID,
		"status", next,
		"actor", actor)

	return model.AlertResult{Alert: l.alerts[i], Changed: true}, nil
}

// ToggleUserStatus flips a user between active and suspended.
func (l *Ledger) ToggleUserStatus(ctx context.Context, actor, userID string) (model.User, error) {
	l.usersMu.Lock()
	defer l.usersMu.Unlock()

	i := slices.IndexFunc(l.users, func(u model.User) bool { return u.ID == userID })
	if i < 0 {
		return model.User{}, apperrors.EntityNotFound("toggle user status", "user", userID)
	}

	u := &l.users[i]
	u.Status = u.Status.Toggled()
	l.audit.Record(ctx, model.AuditActionUserStatusChanged, actor,
		fmt.Sprintf("User %s %s", u.Name, u.Status))
	l.logger.InfoContext(ctx, "user status changed",
		"user_id", userID,
		"status", u.Status,
		"actor", actor)

	return *u, nil
}

// PreserveEvidence seals an evidence item. Preserving it again succeeds
// without change and without an audit entry.
func (l *Ledger) PreserveEvidence(ctx context.Context, actor, evidenceID string) (model.PreserveResult, error) {
	l.evidenceMu.Lock()
	defer l.evidenceMu.Unlock()

	i := slices.IndexFunc(l.evidence, func(e model.Evidence) bool { return e.ID == evidenceID })
	if i < 0 {
		return model.PreserveResult{}, apperrors.EntityNotFound("preserve evidence", "evidence", evidenceID)
	}

	ev := &l.evidence[i]
	if ev.Preserved {
		return model.PreserveResult{Evidence: copyEvidence(*ev)}, nil
	}

	seal, err := SealPayload(ev.Data)
	if err != nil {
		// Opaque payloads that are not JSON are sealed byte-for-byte.
		l.logger.WarnContext(ctx, "evidence payload is not canonical JSON",
			"evidence_id", evidenceID,
			"error", err)
		seal = sealBytes(ev.Data)
	}

	now := l.clock.Now()
	ev.Preserved = true
	ev.PreservedAt = &now
	ev.PreservedBy = actor
	ev.Seal = seal

	l.audit.Record(ctx, model.AuditActionEvidencePreserved, actor,
		fmt.Sprintf("Evidence %s preserved", evidenceID))
	l.logger.InfoContext(ctx, "evidence preserved",
		"evidence_id", evidenceID,
		"actor", actor)

	return model.PreserveResult{Evidence: copyEvidence(*ev), Changed: true}, nil
}

// RunSimulation inserts a critical emergency alert at the front of the alert
// list. Its timestamp is strictly newer than every existing alert.
func (l *Ledger) RunSimulation(ctx context.Context, actor string) model.Alert {
	l.alertsMu.Lock()
	defer l.alertsMu.Unlock()

	ts := l.clock.Now()
	for _, a := range l.alerts {
		if !ts.After(a.Timestamp) {
			ts = a.Timestamp.Add(time.Millisecond)
		}
	}

	id := l.ids.Next()
	for slices.ContainsFunc(l.alerts, func(a model.Alert) bool { return a.ID == id }) {
		id = l.ids.Next()
	}

	alert := model.Alert{
		ID:          id,
		Type:        model.AlertTypeEmergency,
		Title:       SimulationTitle,
		Description: SimulationDescription,
		Timestamp:   ts,
		Status:      model.AlertStatusActive,
		Severity:    model.AlertSeverityCritical,
		Location:    SimulationLocation,
	}
	l.alerts = slices.Insert(l.alerts, 0, alert)

	l.audit.Record(ctx, model.AuditActionSimulationStarted, actor, "Emergency simulation initiated")
	l.logger.InfoContext(ctx, "simulation started",
		"alert_id", id,
		"actor", actor)

	return alert
}

// ListAlerts returns all alerts, most recent first.
func (l *Ledger) ListAlerts() []model.Alert {
	l.alertsMu.Lock()
	defer l.alertsMu.Unlock()
	out := slices.Clone(l.alerts)
	if out == nil {
		out = []model.Alert{}
	}
	return out
}

// ListUsers returns one page of users whose name or email contains q.Search
// (case-insensitive).
func (l *Ledger) ListUsers(q model.UserQuery) model.UserPage {
	q.Normalize()
	needle := strings.ToLower(strings.TrimSpace(q.Search))

	l.usersMu.Lock()
	matched := make([]model.User, 0, len(l.users))
	for _, u := range l.users {
		if needle == "" ||
			strings.Contains(strings.ToLower(u.Name), needle) ||
			strings.Contains(strings.ToLower(u.Email), needle) {
			matched = append(matched, u)
		}
	}
	l.usersMu.Unlock()

	page := model.UserPage{
		Users:    []model.User{},
		Total:    len(matched),
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	start := (q.Page - 1) * q.PageSize
	if start >= len(matched) {
		return page
	}
	end := min(start+q.PageSize, len(matched))
	page.Users = matched[start:end]
	return page
}

// ListEvidence returns the evidence recorded for deviceID, filtered by the
// optional time window and Match expression. Unknown devices yield an empty
// list. An invalid Match expression is a validation error on field "match".
func (l *Ledger) ListEvidence(deviceID string, q model.EvidenceQuery) ([]model.Evidence, error) {
	matcher, err := newPayloadMatcher(l.jems, q.Match)
	if err != nil {
		return nil, err
	}

	out := []model.Evidence{}
	for _, ev := range l.deviceEvidence(deviceID) {
		if q.Since != nil && ev.Timestamp.Before(*q.Since) {
			continue
		}
		if q.Until != nil && ev.Timestamp.After(*q.Until) {
			continue
		}
		if !matcher.Matches(ev.Data) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (l *Ledger) deviceEvidence(deviceID string) []model.Evidence {
	l.evidenceMu.Lock()
	defer l.evidenceMu.Unlock()

	var out []model.Evidence
	for _, ev := range l.evidence {
		if ev.DeviceID == deviceID {
			out = append(out, copyEvidence(ev))
		}
	}
	return out
}

// Stats recomputes the dashboard counters. healthPct is passed through.
func (l *Ledger) Stats(healthPct int) model.DashboardStats {
	now := l.clock.Now()
	stats := model.DashboardStats{NetworkHealthPct: healthPct}

	l.usersMu.Lock()
	for _, u := range l.users {
		if u.Status == model.UserStatusActive {
			stats.ActiveTourists++
		} else {
			stats.SuspendedAccounts++
		}
	}
	l.usersMu.Unlock()

	l.alertsMu.Lock()
	for _, a := range l.alerts {
		if a.IsActiveEmergency() {
			stats.RecentSOS++
		}
		if a.Status != model.AlertStatusResolved {
			stats.UnresolvedAlerts++
		}
		if model.IsRecent(now, a.Timestamp) {
			stats.RecentAlerts24h++
		}
	}
	l.alertsMu.Unlock()

	return stats
}

// MeshStatus reports relay activity. Network nodes are the active users and
// recent relays are interaction evidence inside the recent window.
func (l *Ledger) MeshStatus(quantumPairs int) model.MeshStatus {
	now := l.clock.Now()
	status := model.MeshStatus{QuantumPairs: quantumPairs, LastUpdate: now}

	l.usersMu.Lock()
	for _, u := range l.users {
		if u.Status == model.UserStatusActive {
			status.NetworkNodes++
		}
	}
	l.usersMu.Unlock()

	l.evidenceMu.Lock()
	for _, ev := range l.evidence {
		if ev.Type == model.EvidenceTypeInteraction && model.IsRecent(now, ev.Timestamp) {
			status.RecentRelays++
		}
	}
	l.evidenceMu.Unlock()

	return status
}

// EvidenceSummary counts evidence for deviceID.
func (l *Ledger) EvidenceSummary(deviceID string) model.EvidenceSummary {
	now := l.clock.Now()
	var sum model.EvidenceSummary
	for _, ev := range l.deviceEvidence(deviceID) {
		sum.Total++
		if ev.Preserved {
			sum.Preserved++
		}
		if model.IsRecent(now, ev.Timestamp) {
			sum.Last24h++
		}
	}
	return sum
}

// SealPayload returns the hex BLAKE2b-256 digest of the canonical JSON form
// of raw. Canonical form has sorted object keys and no insignificant whitespace.
func SealPayload(raw json.RawMessage) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("decode payload: %w", err)
	}
	canonical, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode canonical payload: %w", err)
	}
	return sealBytes(canonical), nil
}

func sealBytes(b []byte) string {
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:])
}

func sortAlertsNewestFirst(alerts []model.Alert) {
	slices.SortStableFunc(alerts, func(a, b model.Alert) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}

func cloneEvidence(in []model.Evidence) []model.Evidence {
	out := make([]model.Evidence, 0, len(in))
	for _, ev := range in {
		out = append(out, copyEvidence(ev))
	}
	return out
}

// copyEvidence detaches the payload and preservation time from the stored item.
func copyEvidence(ev model.Evidence) model.Evidence {
	ev.Data = slices.Clone(ev.Data)
	if ev.PreservedAt != nil {
		t := *ev.PreservedAt
		ev.PreservedAt = &t
	}
	return ev
}
