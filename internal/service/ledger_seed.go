package service

import (
	"encoding/json"
	"time"

	domainauth "github.com/safemesh/mesh-console/internal/domain/auth"
	"github.com/safemesh/mesh-console/internal/domain/model"
)

// LedgerSeed is the initial content of a Ledger.
type LedgerSeed struct {
	Users    []model.User
	Alerts   []model.Alert
	Evidence []model.Evidence
}

// DemoSeed returns the demo mesh: three users, two alerts and two evidence
// items for DEV001.
func DemoSeed() LedgerSeed {
	ts := func(s string) time.Time {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			panic(err)
		}
		return t
	}
	preservedAt := ts("2024-01-15T10:05:00Z")
	location := json.RawMessage(`{"lat":40.7128,"lng":-74.006}`)

	return LedgerSeed{
		Users: []model.User{
			{
				ID:       "1",
				Name:     "Alice Johnson",
				Email:    "alice@example.com",
				Role:     domainauth.RoleTourist,
				Status:   model.UserStatusActive,
				LastSeen: ts("2024-01-15T10:30:00Z"),
				DeviceID: "DEV001",
			},
			{
				ID:       "2",
				Name:     "Bob Smith",
				Email:    "bob@example.com",
				Role:     domainauth.RoleGuide,
				Status:   model.UserStatusActive,
				LastSeen: ts("2024-01-15T11:15:00Z"),
				DeviceID: "DEV002",
			},
			{
				ID:       "3",
				Name:     "Carol Brown",
				Email:    "carol@example.com",
				Role:     domainauth.RoleTourist,
				Status:   model.UserStatusSuspended,
				LastSeen: ts("2024-01-14T16:45:00Z"),
				DeviceID: "DEV003",
			},
		},
		Alerts: []model.Alert{
			{
				ID:          "1",
				Type:        model.AlertTypeEmergency,
				Title:       "SOS Signal Detected",
				Description: "Emergency signal from device DEV001 in sector A-7",
				Timestamp:   ts("2024-01-15T12:00:00Z"),
				Status:      model.AlertStatusActive,
				Severity:    model.AlertSeverityCritical,
				Location:    "Sector A-7",
			},
			{
				ID:          "2",
				Type:        model.AlertTypeWarning,
				Title:       "Low Battery Warning",
				Description: "Multiple devices reporting low battery levels",
				Timestamp:   ts("2024-01-15T11:30:00Z"),
				Status:      model.AlertStatusAcknowledged,
				Severity:    model.AlertSeverityMedium,
				Location:    "Sector B-3",
			},
		},
		Evidence: []model.Evidence{
			{
				ID:          "1",
				DeviceID:    "DEV001",
				Type:        "location",
				Timestamp:   ts("2024-01-15T10:00:00Z"),
				Data:        location,
				Preserved:   true,
				PreservedAt: &preservedAt,
				PreservedBy: domainauth.SystemActor,
				Seal:        sealBytes(location),
			},
			{
				ID:        "2",
				DeviceID:  "DEV001",
				Type:      model.EvidenceTypeInteraction,
				Timestamp: ts("2024-01-15T10:15:00Z"),
				Data:      json.RawMessage(`{"interaction":"mesh_relay","target":"DEV002"}`),
			},
		},
	}
}
