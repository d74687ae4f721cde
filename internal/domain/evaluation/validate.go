package evaluation

import (
	"fmt"
	"strings"
)

// Decisions a manager review may carry.
const (
	DecisionApprove = "approve"
	DecisionReject  = "reject"
	DecisionReturn  = "return"
)

// SelfAnswerInput is one free-text section of the employee questionnaire.
type SelfAnswerInput struct {
	QuestionID int    `json:"questionId"`
	Text       string `json:"text"`
	Comment    string `json:"comment,omitempty"`
}

// ScoreAnswerInput is one manager-scored criterion answer.
type ScoreAnswerInput struct {
	CriterionID string `json:"criterionId"`
	Score       int    `json:"score"`
	Comment     string `json:"comment,omitempty"`
}

// ReviewInput is the manager questionnaire plus decision.
type ReviewInput struct {
	Answers      []ScoreAnswerInput `json:"answers"`
	Decision     string             `json:"decision"`
	Comment      string             `json:"comment,omitempty"`
	ReturnReason string             `json:"returnReason,omitempty"`
}

// ValidateSelfAssessment checks the employee submission structurally. Every
// issue is collected before anything touches storage.
func ValidateSelfAssessment(answers []SelfAnswerInput) error {
	verr := &ValidationError{}
	if len(answers) == 0 {
		verr.Add("answers", "at least one answer is required")
	}
	seen := make(map[int]bool, len(answers))
	for i, a := range answers {
		field := fmt.Sprintf("answers[%d]", i)
		if a.QuestionID <= 0 {
			verr.Add(field+".questionId", "must be a positive question number")
		}
		if strings.TrimSpace(a.Text) == "" {
			verr.Add(field+".text", "must not be empty")
		}
		if seen[a.QuestionID] {
			verr.Add(field+".questionId", "duplicate question in submission")
		}
		seen[a.QuestionID] = true
	}
	return verr.OrNil()
}

// ValidateReview checks the manager submission structurally: decision value,
// required comment on approval, required bounded reason on return, score
// ranges, and duplicate criteria.
func ValidateReview(input ReviewInput) error {
	verr := &ValidationError{}

	switch input.Decision {
	case DecisionApprove, DecisionReject, DecisionReturn:
	default:
		verr.Add("decision", "must be approve, reject or return")
	}

	comment := strings.TrimSpace(input.Comment)
	if input.Decision == DecisionApprove && comment == "" {
		verr.Add("comment", "evaluator comment is required to approve")
	}
	if len(comment) > MaxManagerCommentLen {
		verr.Add("comment", fmt.Sprintf("must be at most %d characters", MaxManagerCommentLen))
	}

	reason := strings.TrimSpace(input.ReturnReason)
	if input.Decision == DecisionReturn && reason == "" {
		verr.Add("returnReason", "a reason is required to return for adjustment")
	}
	if len(reason) > MaxReturnReasonLen {
		verr.Add("returnReason", fmt.Sprintf("must be at most %d characters", MaxReturnReasonLen))
	}

	seen := make(map[string]bool, len(input.Answers))
	for i, a := range input.Answers {
		field := fmt.Sprintf("answers[%d]", i)
		if strings.TrimSpace(a.CriterionID) == "" {
			verr.Add(field+".criterionId", "is required")
		}
		if a.Score < 1 || a.Score > 5 {
			verr.Add(field+".score", "must be an integer between 1 and 5")
		}
		if len(a.Comment) > MaxManagerCommentLen {
			verr.Add(field+".comment", fmt.Sprintf("must be at most %d characters", MaxManagerCommentLen))
		}
		if seen[a.CriterionID] {
			verr.Add(field+".criterionId", "duplicate criterion in submission")
		}
		seen[a.CriterionID] = true
	}
	return verr.OrNil()
}
