// Package lifecycle runs the monthly backup-then-purge workflow.
package lifecycle

import "errors"

// State of the archival workflow.
type State string

const (
	StateNormal                State = "NORMAL"
	StateCleanupPrompted       State = "CLEANUP_PROMPTED"
	StateCleanupConfirmPending State = "CLEANUP_CONFIRM_PENDING"
	StateCleanupApplied        State = "CLEANUP_APPLIED"
)

// ErrInvalidTransition is returned when an action is not allowed in the current state.
var ErrInvalidTransition = errors.New("action not allowed in current archival state")

// FSM holds the allowed archival transitions.
type FSM struct {
	transitions map[State][]State
}

func NewFSM() *FSM {
	return &FSM{
		transitions: map[State][]State{
			StateNormal:                {StateCleanupPrompted},
			StateCleanupPrompted:       {StateCleanupConfirmPending, StateCleanupApplied},
			StateCleanupConfirmPending: {StateCleanupPrompted, StateCleanupApplied},
			StateCleanupApplied:        {StateNormal},
		},
	}
}

// CanTransition checks if transition is allowed.
func (f *FSM) CanTransition(from, to State) bool {
	allowed, ok := f.transitions[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
