//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"encoding/json"
	"time"
)

// Evidence is a piece of telemetry collected from a device.
// Once Preserved is set it never changes again.
type Evidence struct {
	ID          string          `json:"id"`
	DeviceID    string          `json:"deviceId"`
	Type        string          `json:"type"`
	Timestamp   time.Time       `json:"timestamp"`
	Data        json.RawMessage `json:"data"`
	Preserved   bool            `json:"preserved"`
	PreservedAt *time.Time      `json:"preservedAt,omitempty"`
	PreservedBy string          `json:"preservedBy,omitempty"`
	// Seal is the hex digest of Data taken at preservation time.
	Seal string `json:"seal,omitempty"`
}

// EvidenceTypeInteraction marks mesh relay/interaction records.
const EvidenceTypeInteraction = "interaction"

// EvidenceQuery narrows an evidence listing for a device.
type EvidenceQuery struct {
	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`
	// Match is an optional JMESPath expression evaluated against the payload;
	// items whose result is falsy are dropped.
	Match string `json:"match,omitempty"`
}

// PreserveResult is returned by the preserve transition.
// Changed is false when the evidence was already preserved.
type PreserveResult struct {
	Evidence Evidence `json:"evidence"`
	Changed  bool     `json:"changed"`
}
