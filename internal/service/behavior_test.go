package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/safemesh/mesh-console/internal/domain/model"
)

func TestBehavioralScore_Deterministic(t *testing.T) {
	a := BehavioralScore("DEV001")
	b := BehavioralScore("DEV001")
	assert.Equal(t, a, b)
	assert.Equal(t, "DEV001", a.DeviceID)

	for _, id := range []string{"DEV001", "DEV002", "DEV003", ""} {
		s := BehavioralScore(id)
		for _, v := range []int{
			s.Factors.MovementPattern,
			s.Factors.SocialInteraction,
			s.Factors.LocationConsistency,
			s.Factors.DeviceUsage,
			s.Score,
		} {
			assert.GreaterOrEqual(t, v, 0)
			assert.LessOrEqual(t, v, 99)
		}
		assert.Equal(t, RiskLevelFor(s.Score), s.RiskLevel)
	}
}

func TestRiskLevelFor(t *testing.T) {
	tests := []struct {
		score int
		want  model.RiskLevel
	}{
		{99, model.RiskLevelLow},
		{70, model.RiskLevelLow},
		{69, model.RiskLevelMedium},
		{40, model.RiskLevelMedium},
		{39, model.RiskLevelHigh},
		{0, model.RiskLevelHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskLevelFor(tt.score), "score %d", tt.score)
	}
}
