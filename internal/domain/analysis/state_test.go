package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateNext(t *testing.T) {
	s := StateStart
	var seen []State
	for s != StateDone {
		next, err := s.Next()
		require.NoError(t, err)
		seen = append(seen, next)
		s = next
	}
	assert.Equal(t, []State{StateExtracted, StateAggregated, StateDone}, seen)

	_, err := StateDone.Next()
	assert.ErrorIs(t, err, ErrTerminalState)

	_, err = State(42).Next()
	assert.Error(t, err)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "start", StateStart.String())
	assert.Equal(t, "done", StateDone.String())
	assert.Equal(t, "state(9)", State(9).String())

	b, err := StateAggregated.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "aggregated", string(b))
}
