package service

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemesh/mesh-console/internal/testutil"
)

func TestIDGenerator_StrictlyIncreasingWithFrozenClock(t *testing.T) {
	clock := testutil.NewFakeClock(testutil.TestTime())
	gen := NewIDGenerator(clock.Now)

	first := gen.Next()
	second := gen.Next()
	assert.Equal(t, strconv.FormatInt(testutil.TestTime().UnixMilli(), 10), first)

	a, _ := strconv.ParseInt(first, 10, 64)
	b, _ := strconv.ParseInt(second, 10, 64)
	assert.Equal(t, a+1, b)
}

func TestIDGenerator_ClockStepsBack(t *testing.T) {
	clock := testutil.NewFakeClock(testutil.TestTime())
	gen := NewIDGenerator(clock.Now)

	first, _ := strconv.ParseInt(gen.Next(), 10, 64)
	clock.Advance(-time.Hour)
	second, _ := strconv.ParseInt(gen.Next(), 10, 64)
	assert.Greater(t, second, first)
}

func TestIDGenerator_ConcurrentUnique(t *testing.T) {
	gen := NewIDGenerator(testutil.NewFakeClock(testutil.TestTime()).Now)

	const n = 200
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := gen.Next()
			mu.Lock()
			seen[id] = struct{}{}
			mu.Unlock()
		}()
	}
	wg.Wait()
	require.Len(t, seen, n)
}
