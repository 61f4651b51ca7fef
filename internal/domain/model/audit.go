//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// AuditLogEntry is an immutable record of one privileged action.
type AuditLogEntry struct {
	ID        string    `json:"id"        db:"id"`
	Timestamp time.Time `json:"timestamp" db:"occurred_at"`
	Action    string    `json:"action"    db:"action"`
	User      string    `json:"user"      db:"actor"`
	Details   string    `json:"details"   db:"details"`
}

// AuditListOptions narrows a durable audit listing.
// Filter is a case-insensitive substring over action, actor and details.
type AuditListOptions struct {
	Filter string
	Limit  int
}

// Audit action labels.
const (
	AuditActionLogin             = "Login"
	AuditActionAlertAcknowledged = "Alert Acknowledged"
	AuditActionAlertResolved     = "Alert Resolved"
	AuditActionUserStatusChanged = "User Status Changed"
	AuditActionEvidencePreserved = "Evidence Preserved"
	AuditActionSimulationStarted = "Simulation Started"
)
