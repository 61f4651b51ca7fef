package service

import (
	"golang.org/x/crypto/blake2b"

	"github.com/safemesh/mesh-console/internal/domain/model"
)

// Risk thresholds over the averaged behavioral score.
const (
	lowRiskMinScore    = 70
	mediumRiskMinScore = 40
)

// BehavioralScore derives a stable assessment for deviceID. Each factor is
// taken from the device id digest so repeated reads agree.
func BehavioralScore(deviceID string) model.BehavioralScore {
	sum := blake2b.Sum256([]byte(deviceID))
	factor := func(i int) int {
		return int(uint16(sum[2*i])<<8|uint16(sum[2*i+1])) % 100
	}

	f := model.BehaviorFactors{
		MovementPattern:     factor(0),
		SocialInteraction:   factor(1),
		LocationConsistency: factor(2),
		DeviceUsage:         factor(3),
	}
	score := (f.MovementPattern + f.SocialInteraction + f.LocationConsistency + f.DeviceUsage) / 4

	return model.BehavioralScore{
		DeviceID:  deviceID,
		Score:     score,
		Factors:   f,
		RiskLevel: RiskLevelFor(score),
	}
}

// RiskLevelFor buckets a score: higher scores mean lower risk.
func RiskLevelFor(score int) model.RiskLevel {
	switch {
	case score >= lowRiskMinScore:
		return model.RiskLevelLow
	case score >= mediumRiskMinScore:
		return model.RiskLevelMedium
	default:
		return model.RiskLevelHigh
	}
}
