//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// Alert represents a safety alert raised on the mesh.
type Alert struct {
	ID          string        `json:"id"`
	Type        AlertType     `json:"type"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Timestamp   time.Time     `json:"timestamp"`
	Status      AlertStatus   `json:"status"`
	Severity    AlertSeverity `json:"severity"`
	Location    string        `json:"location,omitempty"`
}

// AlertType classifies what raised an alert.
type AlertType string

const (
	AlertTypeEmergency AlertType = "emergency"
	AlertTypeWarning   AlertType = "warning"
	AlertTypeInfo      AlertType = "info"
)

// Valid returns true if the alert type is valid.
func (t AlertType) Valid() bool {
	switch t {
	case AlertTypeEmergency, AlertTypeWarning, AlertTypeInfo:
		return true
	default:
		return false
	}
}

// AlertSeverity represents the severity level of an alert.
type AlertSeverity string

const (
	AlertSeverityCritical AlertSeverity = "critical"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityLow      AlertSeverity = "low"
)

// Valid returns true if the alert severity is valid.
func (s AlertSeverity) Valid() bool {
	switch s {
	case AlertSeverityCritical, AlertSeverityHigh, AlertSeverityMedium, AlertSeverityLow:
		return true
	default:
		return false
	}
}

// AlertStatus is the lifecycle position of an alert.
// Transitions only move forward: active -> acknowledged -> resolved.
type AlertStatus string

const (
	AlertStatusActive       AlertStatus = "active"
	AlertStatusAcknowledged AlertStatus = "acknowledged"
	AlertStatusResolved     AlertStatus = "resolved"
)

// rank orders statuses along the forward lifecycle.
func (s AlertStatus) rank() int {
	switch s {
	case AlertStatusActive:
		return 0
	case AlertStatusAcknowledged:
		return 1
	case AlertStatusResolved:
		return 2
	default:
		return -1
	}
}

// CanAdvanceTo reports whether moving from s to next is a forward transition.
func (s AlertStatus) CanAdvanceTo(next AlertStatus) bool {
	from, to := s.rank(), next.rank()
	return from >= 0 && to > from
}

// IsActiveEmergency reports whether the alert counts as an open SOS.
func (a Alert) IsActiveEmergency() bool {
	return a.Type == AlertTypeEmergency && a.Status == AlertStatusActive
}

// AlertResult is returned by alert transitions.
// Changed is false when the transition was an idempotent no-op.
type AlertResult struct {
	Alert   Alert `json:"alert"`
	Changed bool  `json:"changed"`
}
