package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemesh/mesh-console/internal/adapters/memory"
	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	"github.com/safemesh/mesh-console/internal/domain/model"
	apperrors "github.com/safemesh/mesh-console/internal/errors"
	mockauth "github.com/safemesh/mesh-console/internal/mocks/auth"
	"github.com/safemesh/mesh-console/internal/testutil"
)

type consoleFixture struct {
	clock    *testutil.FakeClock
	audit    *AuditRecorder
	sessions *SessionRegistry
	console  *Console
}

func newConsoleFixture(t *testing.T) consoleFixture {
	t.Helper()
	clock := testutil.NewFakeClock(testutil.TestTime())

	audit, err := NewAuditRecorder(AuditRecorderOptions{Clock: clock})
	require.NoError(t, err)
	seed := DemoSeed()
	ledger, err := NewLedger(LedgerOptions{Clock: clock, Audit: audit, Seed: &seed})
	require.NoError(t, err)
	sessions, err := NewSessionRegistry(SessionRegistryOptions{
		Verifier:  mockauth.NewStaticVerifier(),
		Clock:     clock,
		Slot:      memory.NewSessionSlot(clock),
		KeyPrefix: "mesh:",
	})
	require.NoError(t, err)

	console, err := NewConsole(ConsoleOptions{
		Sessions:         sessions,
		Ledger:           ledger,
		Audit:            audit,
		NetworkHealthPct: 87,
		QuantumPairs:     12,
	})
	require.NoError(t, err)
	return consoleFixture{clock: clock, audit: audit, sessions: sessions, console: console}
}

func (f consoleFixture) login(t *testing.T, clientID string) domainauth.Session {
	t.Helper()
	sess, err := f.console.Login(context.Background(), clientID, "admin@gmail.com", "admin123", false)
	require.NoError(t, err)
	return sess
}

func TestNewConsole_RequiresDependencies(t *testing.T) {
	_, err := NewConsole(ConsoleOptions{})
	require.Error(t, err)
}

func TestConsole_LoginRecordsAudit(t *testing.T) {
	f := newConsoleFixture(t)
	sess := f.login(t, "c1")
	assert.Equal(t, domainauth.RoleAdministrator, sess.Principal.Role)

	entries := f.audit.List("")
	require.Len(t, entries, 1)
	assert.Equal(t, model.AuditActionLogin, entries[0].Action)
	assert.Equal(t, "Admin User", entries[0].User)
	assert.Equal(t, "Successful administrator login", entries[0].Details)
}

func TestConsole_FailedLoginRecordsNothing(t *testing.T) {
	f := newConsoleFixture(t)
	_, err := f.console.Login(context.Background(), "c1", "admin@gmail.com", "bad", false)
	require.Error(t, err)
	assert.True(t, apperrors.IsInvalidCredentials(err))
	assert.Zero(t, f.audit.Len())
}

func TestConsole_AcknowledgeScenario(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()
	f.login(t, "c1")

	res, err := f.console.AcknowledgeAlert(ctx, "c1", "1")
	require.NoError(t, err)
	assert.True(t, res.Changed)

	logs, err := f.console.ListAuditLogs(ctx, "c1", "Alert")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, model.AuditActionAlertAcknowledged, logs[0].Action)
	assert.Equal(t, "Admin User", logs[0].User)
}

func TestConsole_PreserveScenario(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()
	f.login(t, "c1")

	_, err := f.console.PreserveEvidence(ctx, "c1", "2")
	require.NoError(t, err)

	items, err := f.console.ListEvidence(ctx, "c1", "DEV001", model.EvidenceQuery{})
	require.NoError(t, err)
	for _, ev := range items {
		assert.True(t, ev.Preserved, "evidence %s", ev.ID)
	}

	again, err := f.console.PreserveEvidence(ctx, "c1", "2")
	require.NoError(t, err)
	assert.False(t, again.Changed)

	logs, err := f.console.ListAuditLogs(ctx, "c1", model.AuditActionEvidencePreserved)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestConsole_UnauthenticatedCommands(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()

	_, err := f.console.ToggleUserStatus(ctx, "c1", "1")
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthenticated(err))

	_, err = f.console.AcknowledgeAlert(ctx, "c1", "1")
	assert.True(t, apperrors.IsUnauthenticated(err))
	_, err = f.console.ResolveAlert(ctx, "c1", "1")
	assert.True(t, apperrors.IsUnauthenticated(err))
	_, err = f.console.PreserveEvidence(ctx, "c1", "2")
	assert.True(t, apperrors.IsUnauthenticated(err))
	_, err = f.console.ListAlerts(ctx, "c1")
	assert.True(t, apperrors.IsUnauthenticated(err))
	_, err = f.console.Stats(ctx, "c1")
	assert.True(t, apperrors.IsUnauthenticated(err))

	assert.Zero(t, f.audit.Len(), "rejected commands record nothing")

	// Unknown targets are still checked after authentication, not before.
	_, err = f.console.ToggleUserStatus(ctx, "c1", "does-not-exist")
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestConsole_SessionsArePerClient(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()
	f.login(t, "c1")

	_, err := f.console.ToggleUserStatus(ctx, "c2", "1")
	assert.True(t, apperrors.IsUnauthenticated(err))

	u, err := f.console.ToggleUserStatus(ctx, "c1", "1")
	require.NoError(t, err)
	assert.Equal(t, model.UserStatusSuspended, u.Status)
}

func TestConsole_ExpiredSessionIsRejected(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()
	f.login(t, "c1")

	remaining, err := f.console.TimeUntilExpiry(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 900*time.Second, remaining)

	f.clock.Advance(900 * time.Second)
	_, err = f.console.AcknowledgeAlert(ctx, "c1", "1")
	assert.True(t, apperrors.IsUnauthenticated(err))
	_, err = f.console.Session(ctx, "c1")
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestConsole_LogoutThenCommandFails(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()
	f.login(t, "c1")

	require.NoError(t, f.console.Logout(ctx, "c1"))
	require.NoError(t, f.console.Logout(ctx, "c1"))

	_, err := f.console.Session(ctx, "c1")
	assert.True(t, apperrors.IsUnauthenticated(err))
}

func TestConsole_RunSimulationActor(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()

	anon, err := f.console.RunSimulation(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, model.AlertSeverityCritical, anon.Severity)

	f.login(t, "c1")
	named, err := f.console.RunSimulation(ctx, "c1")
	require.NoError(t, err)
	assert.True(t, named.Timestamp.After(anon.Timestamp))
	assert.NotEqual(t, anon.ID, named.ID)

	logs, err := f.console.ListAuditLogs(ctx, "c1", "simulation")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "Admin User", logs[0].User)
	assert.Equal(t, domainauth.SystemActor, logs[1].User)
}

func TestConsole_ReadModels(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()
	f.login(t, "c1")

	stats, err := f.console.Stats(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActiveTourists)
	assert.Equal(t, 1, stats.RecentSOS)
	assert.Equal(t, 87, stats.NetworkHealthPct)

	mesh, err := f.console.MeshStatus(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 12, mesh.QuantumPairs)
	assert.Equal(t, 2, mesh.NetworkNodes)

	page, err := f.console.ListUsers(ctx, "c1", model.UserQuery{Search: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	score, err := f.console.BehavioralScore(ctx, "c1", "DEV002")
	require.NoError(t, err)
	assert.Equal(t, BehavioralScore("DEV002"), score)

	sum, err := f.console.EvidenceSummary(ctx, "c1", "DEV001")
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Total)

	auditSum, err := f.console.AuditSummary(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, auditSum.Total)

	var buf bytes.Buffer
	require.NoError(t, f.console.ExportAuditLogs(ctx, "c1", "login", &buf))
	var exported []model.AuditLogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &exported))
	assert.Len(t, exported, 1)
}

func TestConsole_SweepExpiredSessions(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()
	f.login(t, "c1")
	f.login(t, "c2")

	assert.Zero(t, f.console.SweepExpiredSessions(ctx))
	f.clock.Advance(time.Hour)
	assert.Equal(t, 2, f.console.SweepExpiredSessions(ctx))
}

func TestConsole_AnonymousCallsKeepNoSessionState(t *testing.T) {
	f := newConsoleFixture(t)
	ctx := context.Background()

	for i := range 500 {
		clientID := fmt.Sprintf("anon-%d", i)
		_, err := f.console.ListAlerts(ctx, clientID)
		require.True(t, apperrors.IsUnauthenticated(err))
		_, err = f.console.RunSimulation(ctx, clientID)
		require.NoError(t, err)
		remaining, err := f.console.TimeUntilExpiry(ctx, clientID)
		require.NoError(t, err)
		assert.Zero(t, remaining)
		require.NoError(t, f.console.Logout(ctx, clientID))
	}
	assert.Zero(t, f.sessions.Len())

	f.login(t, "c1")
	assert.Equal(t, 1, f.sessions.Len())
	f.clock.Advance(time.Hour)
	assert.Equal(t, 1, f.console.SweepExpiredSessions(ctx))
	assert.Zero(t, f.sessions.Len())
}
