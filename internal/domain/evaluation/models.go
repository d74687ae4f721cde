package evaluation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Evaluation lifecycle statuses. Soft deletion is orthogonal: DeletedAt may
// be set from any status without changing it, and restoring clears it.
const (
	StatusPendingSelfAssessment = "pending_self_assessment"
	StatusAwaitingManagerReview = "awaiting_manager_review"
	StatusReturnedForAdjustment = "returned_for_adjustment"
	StatusApproved              = "approved"
	StatusRejected              = "rejected"
)

// Events accepted by the state machine.
const (
	EventSubmitSelfAssessment = "submit_self_assessment"
	EventApprove              = "approve"
	EventReject               = "reject"
	EventReturn               = "return"
)

const (
	RespondentCollaborator = "collaborator"
	RespondentManager      = "manager"
)

const (
	MaxManagerCommentLen = 2000
	MaxReturnReasonLen   = 500
)

// PersonSnapshot pins the identity of a participant as it was at creation
// time, so later profile changes never rewrite history.
type PersonSnapshot struct {
	Name       string `json:"name"`
	Position   string `json:"position"`
	Department string `json:"department"`
}

type Evaluation struct {
	ID                        string           `json:"id"`
	PeriodID                  string           `json:"periodId"`
	EmployeeID                string           `json:"employeeId"`
	ManagerID                 string           `json:"managerId"`
	Status                    string           `json:"status"`
	SelfAssessmentSubmittedAt *time.Time       `json:"selfAssessmentSubmittedAt,omitempty"`
	ManagerDecisionAt         *time.Time       `json:"managerDecisionAt,omitempty"`
	ManagerComment            string           `json:"managerComment,omitempty"`
	ReturnReason              string           `json:"returnReason,omitempty"`
	TotalScore                *decimal.Decimal `json:"totalScore,omitempty"`
	Employee                  PersonSnapshot   `json:"employee"`
	Manager                   PersonSnapshot   `json:"manager"`
	CreatedAt                 time.Time        `json:"createdAt"`
	UpdatedAt                 time.Time        `json:"updatedAt"`
	DeletedAt                 *time.Time       `json:"deletedAt,omitempty"`
}

func (e Evaluation) Terminal() bool {
	return e.Status == StatusApproved || e.Status == StatusRejected
}

func (e Evaluation) Deleted() bool {
	return e.DeletedAt != nil
}

// Answer is one questionnaire response. Manager-scored answers reference a
// criterion and carry Score plus the criterion's name/weight snapshot;
// collaborator answers reference a free-text question number instead.
type Answer struct {
	ID                      string           `json:"id"`
	EvaluationID            string           `json:"evaluationId"`
	CriterionID             *string          `json:"criterionId,omitempty"`
	QuestionID              *int             `json:"questionId,omitempty"`
	RespondentType          string           `json:"respondentType"`
	Score                   *int             `json:"score,omitempty"`
	ResponseText            string           `json:"responseText,omitempty"`
	Comment                 string           `json:"comment,omitempty"`
	CriterionNameSnapshot   string           `json:"criterionNameSnapshot,omitempty"`
	CriterionWeightSnapshot *decimal.Decimal `json:"criterionWeightSnapshot,omitempty"`
	CreatedAt               time.Time        `json:"createdAt"`
}

// ListFilter narrows ListActive/ListDeleted. Zero values mean "no filter".
type ListFilter struct {
	Statuses   []string
	EmployeeID string
	ManagerID  string
	PeriodID   string
	From       time.Time
	To         time.Time
	Limit      int
	Offset     int
}
