package evaluation

// transitions is the complete state machine: for each status, the events it
// accepts and the status each event leads to. Anything absent is rejected as
// an invalid transition before any mutation.
var transitions = map[string]map[string]string{
	StatusPendingSelfAssessment: {
		EventSubmitSelfAssessment: StatusAwaitingManagerReview,
	},
	StatusReturnedForAdjustment: {
		EventSubmitSelfAssessment: StatusAwaitingManagerReview,
	},
	StatusAwaitingManagerReview: {
		EventApprove: StatusApproved,
		EventReject:  StatusRejected,
		EventReturn:  StatusReturnedForAdjustment,
	},
	StatusApproved: {},
	StatusRejected: {},
}

// NextStatus resolves the target status for an event, or an
// InvalidTransitionError when the current status does not permit it.
func NextStatus(current, event string) (string, error) {
	if next, ok := transitions[current][event]; ok {
		return next, nil
	}
	return "", &InvalidTransitionError{From: current, Event: event}
}

// KnownStatus reports whether s is one of the machine's statuses.
func KnownStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// Statuses lists every status the machine knows, in lifecycle order.
func Statuses() []string {
	return []string{
		StatusPendingSelfAssessment,
		StatusAwaitingManagerReview,
		StatusReturnedForAdjustment,
		StatusApproved,
		StatusRejected,
	}
}
