package workflow

import (
	"github.com/nexus-hr/interview-coordinator/pkg/model"
)

// Intent is a caller-initiated operation against the engine.
type Intent string

const (
	IntentRequestAvailability Intent = "request availability"
	IntentSchedule            Intent = "schedule"
	IntentReschedule          Intent = "reschedule"
	IntentAdvance             Intent = "advance"
	IntentSetOutcome          Intent = "set outcome"
	IntentCancel              Intent = "cancel"
	IntentDelete              Intent = "delete"
)

// transitionTable is the single source of truth for which statuses admit
// which intents. The scattered string comparisons of the old workflow
// collapse into this one lookup.
var transitionTable = map[Intent][]model.Status{
	IntentSchedule:   {model.StatusAwaitingResponse},
	IntentReschedule: {model.StatusScheduled},
	IntentAdvance:    {model.StatusScheduled},
	IntentSetOutcome: {model.StatusCompleted},
}

// guard checks the transition table once per intent. Cancel is admitted
// from any non-terminal status; delete from any status at all.
func guard(rec *model.InterviewRecord, intent Intent) error {
	switch intent {
	case IntentDelete:
		return nil
	case IntentCancel:
		if rec.Terminal() {
			return &model.InvalidTransitionError{Current: rec.Status, Requested: string(intent)}
		}
		return nil
	case IntentSetOutcome:
		// outcome can be set once, only while it is still pending
		if rec.Status != model.StatusCompleted || rec.Outcome != nil {
			return &model.InvalidTransitionError{Current: rec.Status, Requested: string(intent)}
		}
		return nil
	}

	for _, from := range transitionTable[intent] {
		if rec.Status == from {
			return nil
		}
	}
	return &model.InvalidTransitionError{Current: rec.Status, Requested: string(intent)}
}
