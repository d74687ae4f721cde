package evaluation

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"appraisal/internal/domain/criteria"
)

func criterion(id string, weight int64) criteria.Criterion {
	return criteria.Criterion{
		ID:       id,
		Audience: criteria.AudienceManager,
		Weight:   decimal.NewFromInt(weight),
		Active:   true,
	}
}

func managerAnswer(criterionID string, score int, weight int64) Answer {
	w := decimal.NewFromInt(weight)
	return Answer{
		CriterionID:             &criterionID,
		RespondentType:          RespondentManager,
		Score:                   &score,
		CriterionWeightSnapshot: &w,
	}
}

func TestComputeTotalScoreWeightedAverage(t *testing.T) {
	applicable := []criteria.Criterion{criterion("a", 1), criterion("b", 2), criterion("c", 2)}
	answers := []Answer{
		managerAnswer("a", 5, 1),
		managerAnswer("b", 4, 2),
		managerAnswer("c", 5, 2),
	}

	// (5*1 + 4*2 + 5*2) / 5 = 23/5 = 4.60
	got, err := ComputeTotalScore(applicable, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.RequireFromString("4.6"); !got.Equal(want) {
		t.Fatalf("total = %s, want %s", got, want)
	}
}

func TestComputeTotalScoreRoundsToTwoDecimals(t *testing.T) {
	applicable := []criteria.Criterion{criterion("a", 1), criterion("b", 1), criterion("c", 1)}
	answers := []Answer{
		managerAnswer("a", 5, 1),
		managerAnswer("b", 4, 1),
		managerAnswer("c", 4, 1),
	}

	// 13/3 = 4.333... -> 4.33
	got, err := ComputeTotalScore(applicable, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.RequireFromString("4.33"); !got.Equal(want) {
		t.Fatalf("total = %s, want %s", got, want)
	}
}

func TestComputeTotalScoreSkipsUnansweredCriteria(t *testing.T) {
	// Criterion b is applicable but unanswered; it must not drag the average.
	applicable := []criteria.Criterion{criterion("a", 1), criterion("b", 3)}
	answers := []Answer{managerAnswer("a", 4, 1)}

	got, err := ComputeTotalScore(applicable, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(4); !got.Equal(want) {
		t.Fatalf("total = %s, want %s", got, want)
	}
}

func TestComputeTotalScoreIgnoresInapplicableAnswers(t *testing.T) {
	// An answer for a criterion outside the applicable set (e.g. a
	// leaders-only criterion for a non-leader) is excluded from both sums.
	applicable := []criteria.Criterion{criterion("a", 1)}
	answers := []Answer{
		managerAnswer("a", 3, 1),
		managerAnswer("leadership", 5, 10),
	}

	got, err := ComputeTotalScore(applicable, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(3); !got.Equal(want) {
		t.Fatalf("total = %s, want %s", got, want)
	}
}

func TestComputeTotalScoreUsesSnapshotWeightNotCatalog(t *testing.T) {
	// Catalog weight changed to 10 after submission; the snapshot weight 1
	// wins.
	applicable := []criteria.Criterion{criterion("a", 10), criterion("b", 10)}
	answers := []Answer{
		managerAnswer("a", 5, 1),
		managerAnswer("b", 1, 1),
	}

	got, err := ComputeTotalScore(applicable, answers)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := decimal.NewFromInt(3); !got.Equal(want) {
		t.Fatalf("total = %s, want %s", got, want)
	}
}

func TestComputeTotalScoreEmptyQuestionnaire(t *testing.T) {
	applicable := []criteria.Criterion{criterion("a", 1)}

	_, err := ComputeTotalScore(applicable, nil)
	if !errors.Is(err, ErrIncompleteQuestionnaire) {
		t.Fatalf("want ErrIncompleteQuestionnaire, got %v", err)
	}

	// Collaborator answers alone never produce a score.
	text := 1
	_, err = ComputeTotalScore(applicable, []Answer{{QuestionID: &text, RespondentType: RespondentCollaborator}})
	if !errors.Is(err, ErrIncompleteQuestionnaire) {
		t.Fatalf("want ErrIncompleteQuestionnaire, got %v", err)
	}
}
