//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import "time"

// RecentWindow bounds the "recent" counters shown across the console.
const RecentWindow = 24 * time.Hour

// IsRecent reports whether ts falls inside the rolling window ending at now.
func IsRecent(now, ts time.Time) bool {
	return now.Sub(ts) < RecentWindow
}

// DashboardStats summarizes the mesh for the dashboard.
type DashboardStats struct {
	ActiveTourists    int `json:"activeTourists"`
	RecentSOS         int `json:"recentSOS"`
	NetworkHealthPct  int `json:"networkHealthPct"`
	RecentAlerts24h   int `json:"recentAlerts24h"`
	UnresolvedAlerts  int `json:"unresolvedAlerts"`
	SuspendedAccounts int `json:"suspendedAccounts"`
}

// MeshStatus describes relay activity on the mesh.
type MeshStatus struct {
	QuantumPairs int       `json:"quantumPairs"`
	RecentRelays int       `json:"recentRelays"`
	NetworkNodes int       `json:"networkNodes"`
	LastUpdate   time.Time `json:"lastUpdate"`
}

// AuditSummary counts audit activity.
type AuditSummary struct {
	Total          int `json:"total"`
	Last24h        int `json:"last24h"`
	DistinctActors int `json:"distinctActors"`
	Critical       int `json:"critical"`
}

// EvidenceSummary counts evidence for one device.
type EvidenceSummary struct {
	Total     int `json:"total"`
	Preserved int `json:"preserved"`
	Last24h   int `json:"last24h"`
}

// RiskLevel buckets a behavioral score.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// BehaviorFactors are the per-signal components of a behavioral score.
type BehaviorFactors struct {
	MovementPattern     int `json:"movementPattern"`
	SocialInteraction   int `json:"socialInteraction"`
	LocationConsistency int `json:"locationConsistency"`
	DeviceUsage         int `json:"deviceUsage"`
}

// BehavioralScore is the behavior assessment for a device.
type BehavioralScore struct {
	DeviceID  string          `json:"deviceId"`
	Score     int             `json:"score"`
	Factors   BehaviorFactors `json:"factors"`
	RiskLevel RiskLevel       `json:"riskLevel"`
}
