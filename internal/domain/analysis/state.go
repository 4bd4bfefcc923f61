// Package analysis runs the extract and aggregate stages of a pipeline and
// reports the outcome of each run.
package analysis

import (
	"errors"
	"fmt"
)

// State is the position of a run in its lifecycle
type State int

const (
	StateStart State = iota
	StateExtracted
	StateAggregated
	StateDone
)

var ErrTerminalState = errors.New("run already done")

var stateNames = map[State]string{
	StateStart:      "start",
	StateExtracted:  "extracted",
	StateAggregated: "aggregated",
	StateDone:       "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText encodes the state by name
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Next returns the only state reachable from s.
// Every stage advances, whether or not it succeeded.
func (s State) Next() (State, error) {
	switch s {
	case StateStart:
		return StateExtracted, nil
	case StateExtracted:
		return StateAggregated, nil
	case StateAggregated:
		return StateDone, nil
	case StateDone:
		return s, ErrTerminalState
	}
	return s, fmt.Errorf("unknown state %d", int(s))
}
