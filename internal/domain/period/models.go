package period

import "time"

const (
	StatusPlanned = "planned"
	StatusOpen    = "open"
	StatusClosed  = "closed"
)

const (
	RunOutcomeOK      = "ok"
	RunOutcomePartial = "partial"
	RunOutcomeError   = "error"
)

// Period is one evaluation cycle. AutoCreationExecuted is monotonic: the
// scheduler flips it false->true exactly once and nothing ever reverts it.
type Period struct {
	ID                     string     `json:"id"`
	Name                   string     `json:"name"`
	Year                   int        `json:"year"`
	StartDate              time.Time  `json:"startDate"`
	EndDate                time.Time  `json:"endDate"`
	SelfAssessmentDeadline time.Time  `json:"selfAssessmentDeadline"`
	ApprovalDeadline       time.Time  `json:"approvalDeadline"`
	Status                 string     `json:"status"`
	Active                 bool       `json:"active"`
	AutoCreationExecuted   bool       `json:"autoCreationExecuted"`
	AutoCreationAt         *time.Time `json:"autoCreationAt,omitempty"`
	CreatedEvaluations     int        `json:"createdEvaluations"`
}

// CronLog is one append-only row per scheduler run, the audit trail that
// proves at-most-once creation per period.
type CronLog struct {
	ID           string    `json:"id"`
	PeriodID     *string   `json:"periodId,omitempty"`
	RunAt        time.Time `json:"runAt"`
	Outcome      string    `json:"outcome"`
	CreatedCount int       `json:"createdCount"`
	SkippedCount int       `json:"skippedCount"`
	ErrorDetail  string    `json:"errorDetail,omitempty"`
	DurationMS   int64     `json:"durationMs"`
}
