package evaluation

import (
	"errors"
	"strings"
	"testing"
)

func issuesOf(t *testing.T, err error) []FieldIssue {
	t.Helper()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	return verr.Issues
}

func hasIssue(issues []FieldIssue, field string) bool {
	for _, issue := range issues {
		if issue.Field == field {
			return true
		}
	}
	return false
}

func TestValidateSelfAssessmentAcceptsWellFormed(t *testing.T) {
	err := ValidateSelfAssessment([]SelfAnswerInput{
		{QuestionID: 1, Text: "Shipped the billing migration."},
		{QuestionID: 2, Text: "Improve estimation accuracy.", Comment: "agreed with lead"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateSelfAssessmentCollectsAllIssues(t *testing.T) {
	err := ValidateSelfAssessment([]SelfAnswerInput{
		{QuestionID: 0, Text: ""},
		{QuestionID: 2, Text: "ok"},
		{QuestionID: 2, Text: "dup"},
	})
	issues := issuesOf(t, err)
	if !hasIssue(issues, "answers[0].questionId") || !hasIssue(issues, "answers[0].text") {
		t.Fatalf("missing first-answer issues: %+v", issues)
	}
	if !hasIssue(issues, "answers[2].questionId") {
		t.Fatalf("duplicate question not reported: %+v", issues)
	}
}

func TestValidateSelfAssessmentRejectsEmpty(t *testing.T) {
	issues := issuesOf(t, ValidateSelfAssessment(nil))
	if !hasIssue(issues, "answers") {
		t.Fatalf("empty submission not rejected: %+v", issues)
	}
}

func TestValidateReviewApproveRequiresComment(t *testing.T) {
	err := ValidateReview(ReviewInput{
		Decision: DecisionApprove,
		Answers:  []ScoreAnswerInput{{CriterionID: "c1", Score: 4}},
	})
	issues := issuesOf(t, err)
	if !hasIssue(issues, "comment") {
		t.Fatalf("approve without comment not rejected: %+v", issues)
	}

	err = ValidateReview(ReviewInput{
		Decision: DecisionApprove,
		Comment:  "solid cycle",
		Answers:  []ScoreAnswerInput{{CriterionID: "c1", Score: 4}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateReviewReturnRequiresBoundedReason(t *testing.T) {
	issues := issuesOf(t, ValidateReview(ReviewInput{Decision: DecisionReturn}))
	if !hasIssue(issues, "returnReason") {
		t.Fatalf("return without reason not rejected: %+v", issues)
	}

	long := strings.Repeat("x", MaxReturnReasonLen+1)
	issues = issuesOf(t, ValidateReview(ReviewInput{Decision: DecisionReturn, ReturnReason: long}))
	if !hasIssue(issues, "returnReason") {
		t.Fatalf("oversized reason not rejected: %+v", issues)
	}

	if err := ValidateReview(ReviewInput{Decision: DecisionReturn, ReturnReason: "please expand goals section"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateReviewScoreBoundsAndDuplicates(t *testing.T) {
	err := ValidateReview(ReviewInput{
		Decision: DecisionReject,
		Answers: []ScoreAnswerInput{
			{CriterionID: "c1", Score: 0},
			{CriterionID: "c2", Score: 6},
			{CriterionID: "c1", Score: 3},
			{CriterionID: "", Score: 3},
		},
	})
	issues := issuesOf(t, err)
	for _, field := range []string{"answers[0].score", "answers[1].score", "answers[2].criterionId", "answers[3].criterionId"} {
		if !hasIssue(issues, field) {
			t.Fatalf("missing %s in %+v", field, issues)
		}
	}
}

func TestValidateReviewCommentLength(t *testing.T) {
	long := strings.Repeat("y", MaxManagerCommentLen+1)
	issues := issuesOf(t, ValidateReview(ReviewInput{Decision: DecisionApprove, Comment: long}))
	if !hasIssue(issues, "comment") {
		t.Fatalf("oversized comment not rejected: %+v", issues)
	}
}

func TestValidateReviewUnknownDecision(t *testing.T) {
	issues := issuesOf(t, ValidateReview(ReviewInput{Decision: "escalate"}))
	if !hasIssue(issues, "decision") {
		t.Fatalf("unknown decision not rejected: %+v", issues)
	}
}
