package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safemesh/mesh-console/internal/ports"
	"github.com/safemesh/mesh-console/internal/testutil"
)

func TestSessionSlot_RoundTrip(t *testing.T) {
	slot := NewSessionSlot(nil)
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, "mesh:auth", []byte(`{"token":"a"}`), 0))
	got, err := slot.Load(ctx, "mesh:auth")
	require.NoError(t, err)
	assert.Equal(t, `{"token":"a"}`, string(got))

	require.NoError(t, slot.Delete(ctx, "mesh:auth"))
	_, err = slot.Load(ctx, "mesh:auth")
	assert.ErrorIs(t, err, ports.ErrSlotEmpty)
}

func TestSessionSlot_TTL(t *testing.T) {
	clock := testutil.NewFakeClock(testutil.TestTime())
	slot := NewSessionSlot(clock)
	ctx := context.Background()

	require.NoError(t, slot.Save(ctx, "k", []byte("v"), time.Minute))

	clock.Advance(59 * time.Second)
	_, err := slot.Load(ctx, "k")
	require.NoError(t, err)

	clock.Advance(time.Second)
	_, err = slot.Load(ctx, "k")
	assert.ErrorIs(t, err, ports.ErrSlotEmpty)
	assert.Equal(t, 0, slot.Len())
}

func TestSessionSlot_CopiesValues(t *testing.T) {
	slot := NewSessionSlot(nil)
	ctx := context.Background()

	buf := []byte("abc")
	require.NoError(t, slot.Save(ctx, "k", buf, 0))
	buf[0] = 'x'

	got, err := slot.Load(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestSessionSlot_EmptyKey(t *testing.T) {
	slot := NewSessionSlot(nil)
	assert.Error(t, slot.Save(context.Background(), "", nil, 0))
}
