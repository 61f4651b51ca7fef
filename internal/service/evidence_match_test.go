package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadMatcher(t *testing.T) {
	eval := jmespathLibEvaluator{}

	m, err := newPayloadMatcher(eval, "  ")
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.True(t, m.Matches(json.RawMessage(`{}`)), "nil matcher accepts everything")

	m, err = newPayloadMatcher(eval, "tags[?@ == 'sos']")
	require.NoError(t, err)
	assert.True(t, m.Matches(json.RawMessage(`{"tags":["sos","gps"]}`)))
	assert.False(t, m.Matches(json.RawMessage(`{"tags":["gps"]}`)), "empty projection is falsy")
	assert.False(t, m.Matches(json.RawMessage(`not json`)))

	_, err = newPayloadMatcher(eval, "tags[?")
	require.Error(t, err)
}

func TestTruthy(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{[]any{}, false},
		{[]any{1.0}, true},
		{map[string]any{}, false},
		{map[string]any{"a": 1.0}, true},
		{0.0, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, truthy(tt.in), "%#v", tt.in)
	}
}
