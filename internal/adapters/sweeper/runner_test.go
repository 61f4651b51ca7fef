package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemesh/mesh-console/config"
)

type stubSweeper struct{ calls int }

func (s *stubSweeper) Sweep(context.Context) int {
	s.calls++
	return 0
}

func TestNewRunner_RequiresSessions(t *testing.T) {
	_, err := NewRunner(RunnerOptions{Config: config.SweeperConfig{Interval: time.Second}})
	require.Error(t, err)
}

func TestNewRunner_RejectsZeroInterval(t *testing.T) {
	_, err := NewRunner(RunnerOptions{Sessions: &stubSweeper{}})
	require.Error(t, err)
}

func TestRunner_RunReturnsOnCancel(t *testing.T) {
	r, err := NewRunner(RunnerOptions{
		Sessions: &stubSweeper{},
		Config:   config.SweeperConfig{Interval: time.Second},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, r.Run(ctx))
}
