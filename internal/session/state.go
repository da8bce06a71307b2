package session

// State is a step of the review lifecycle.
type State string

const (
	StateIdle              State = "idle"
	StateAwaitingBatchSize State = "awaiting_batch_size"
	StateLoading           State = "loading"
	StateReviewing         State = "reviewing"
	StateReviewingResults  State = "reviewing_results"
	StateCommitting        State = "committing"
	StateComplete          State = "complete"
	StateFailed            State = "failed"
)

// validTransitions defines allowed state transitions.
// Key is the "from" state, value is list of valid "to" states.
// Every state may fall back to AwaitingBatchSize through Reset.
var validTransitions = map[State][]State{
	StateIdle:              {StateIdle, StateAwaitingBatchSize},
	StateAwaitingBatchSize: {StateAwaitingBatchSize, StateLoading},
	StateLoading:           {StateReviewing, StateAwaitingBatchSize},
	StateReviewing:         {StateReviewingResults, StateAwaitingBatchSize},
	StateReviewingResults:  {StateCommitting, StateAwaitingBatchSize},
	StateCommitting:        {StateComplete, StateFailed, StateAwaitingBatchSize},
	StateComplete:          {StateAwaitingBatchSize},
	StateFailed:            {StateCommitting, StateAwaitingBatchSize}, // retry
}

// CanTransitionTo returns true if transitioning from s to target is valid.
func (s State) CanTransitionTo(target State) bool {
	valid, ok := validTransitions[s]
	if !ok {
		return false
	}
	for _, v := range valid {
		if v == target {
			return true
		}
	}
	return false
}

// Result tells the two ends of a review apart.
type Result string

const (
	ResultNone    Result = ""
	ResultEmpty   Result = "empty"   // nothing marked for deletion
	ResultPending Result = "pending" // at least one item marked
)
