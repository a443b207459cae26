package task

import (
	"time"

	"github.com/caretrack/caretrack/pkg/errs"
)

// OutcomeStatus is the state of a single intervention's outcome.
type OutcomeStatus string

const (
	OutcomeAssigned   OutcomeStatus = "assigned"
	OutcomeInProgress OutcomeStatus = "in_progress"

	// Terminal states. Once set they are immutable and stamp the outcome date.
	OutcomeSeen      OutcomeStatus = "seen"
	OutcomeAttempted OutcomeStatus = "attempted"
	OutcomeDeclined  OutcomeStatus = "declined"
	OutcomeUnseen    OutcomeStatus = "unseen"
	OutcomeHandover  OutcomeStatus = "handover"
)

var validOutcomes = map[OutcomeStatus]bool{
	OutcomeAssigned:   true,
	OutcomeInProgress: true,
	OutcomeSeen:       true,
	OutcomeAttempted:  true,
	OutcomeDeclined:   true,
	OutcomeUnseen:     true,
	OutcomeHandover:   true,
}

// Valid reports whether s is a recognized outcome state.
func (s OutcomeStatus) Valid() bool { return validOutcomes[s] }

// Terminal reports whether s ends the intervention's lifecycle.
func (s OutcomeStatus) Terminal() bool {
	switch s {
	case OutcomeSeen, OutcomeAttempted, OutcomeDeclined, OutcomeUnseen, OutcomeHandover:
		return true
	}
	return false
}

// ApplyOutcome enforces the outcome state machine for one intervention.
// Legal moves are assigned -> in_progress and {assigned, in_progress} -> any
// terminal state; nothing moves backward and terminal states never change.
// Reaching a terminal state stamps the outcome date from now; in_progress
// leaves it null.
func ApplyOutcome(current, requested OutcomeStatus, now time.Time) (OutcomeStatus, *time.Time, error) {
	if !requested.Valid() {
		return "", nil, errs.Validationf("unrecognized outcome status %q", requested)
	}
	if current.Terminal() {
		return "", nil, errs.InvalidTransitionf("outcome is already %s and cannot change", current)
	}
	if requested == OutcomeAssigned {
		return "", nil, errs.InvalidTransitionf("outcome cannot move back to %s", OutcomeAssigned)
	}
	if requested == OutcomeInProgress {
		if current == OutcomeInProgress {
			return "", nil, errs.InvalidTransitionf("outcome is already %s", OutcomeInProgress)
		}
		return OutcomeInProgress, nil, nil
	}

	outcomeDate := startOfDay(now)
	return requested, &outcomeDate, nil
}
