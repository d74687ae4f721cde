package evaluation

import (
	"errors"
	"fmt"
)

// Sentinel errors. Handlers translate these to stable error codes; domain
// code wraps them with context via fmt.Errorf("%w").
var (
	// ErrNotFound is returned when the evaluation does not exist, or exists
	// only in the trash for a surface that reads active rows.
	ErrNotFound = errors.New("evaluation not found")

	// ErrDuplicate is returned when a non-deleted evaluation already exists
	// for the (employee, manager, period) triple.
	ErrDuplicate = errors.New("evaluation already exists for employee, manager and period")

	// ErrConflict is returned when an optimistic-concurrency write finds the
	// row changed since it was read. Callers must refetch and retry.
	ErrConflict = errors.New("evaluation modified concurrently")

	// ErrForbidden is returned when the policy denies the actor the action.
	ErrForbidden = errors.New("actor not permitted to perform this action")

	// ErrIncompleteQuestionnaire is returned when approval is requested but no
	// applicable criterion has a submitted score, leaving nothing to aggregate.
	ErrIncompleteQuestionnaire = errors.New("questionnaire has no scored criteria")
)

// InvalidTransitionError reports an event not permitted from the current
// status. The evaluation is never mutated when this is returned.
type InvalidTransitionError struct {
	From  string
	Event string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("event %q not permitted from status %q", e.Event, e.From)
}

// FieldIssue is one field-level validation failure.
type FieldIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every field issue found, so callers can fix a
// payload in one round trip. It is always raised before any mutation.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 1 {
		return fmt.Sprintf("validation failed: %s %s", e.Issues[0].Field, e.Issues[0].Reason)
	}
	return fmt.Sprintf("validation failed: %d field issues", len(e.Issues))
}

func (e *ValidationError) Add(field, reason string) {
	e.Issues = append(e.Issues, FieldIssue{Field: field, Reason: reason})
}

func (e *ValidationError) OrNil() error {
	if len(e.Issues) == 0 {
		return nil
	}
	return e
}
