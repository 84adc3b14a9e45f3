package lot

import (
	"fmt"
	"strings"
)

// State is the lifecycle position of a lot. A lot starts at StateCreated and
// only the tracking service moves it forward; terminal states never change.
type State string

const (
	StateCreated       State = "CREATED"
	StateUnderAnalysis State = "UNDER_ANALYSIS"
	StateApproved      State = "APPROVED"
	StateRejected      State = "REJECTED"
	StateDistributed   State = "DISTRIBUTED"
	StateBlocked       State = "BLOCKED"
)

var allStates = map[State]struct{}{
	StateCreated:       {},
	StateUnderAnalysis: {},
	StateApproved:      {},
	StateRejected:      {},
	StateDistributed:   {},
	StateBlocked:       {},
}

func ParseState(raw string) (State, error) {
	candidate := State(strings.ToUpper(strings.TrimSpace(raw)))
	if candidate == "" {
		return "", fmt.Errorf("%w: empty state", ErrInvalidInput)
	}
	if _, ok := allStates[candidate]; !ok {
		return "", fmt.Errorf("%w: unknown state %q", ErrInvalidInput, raw)
	}
	return candidate, nil
}

// IsTerminal reports whether a lot in this state can still transition.
// Distributed lots are out of reach, blocked and rejected lots stay that way.
func (s State) IsTerminal() bool {
	return s == StateDistributed || s == StateBlocked || s == StateRejected
}

func (s State) String() string {
	return string(s)
}
