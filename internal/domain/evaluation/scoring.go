package evaluation

import (
	"github.com/shopspring/decimal"

	"appraisal/internal/domain/criteria"
)

// scorePrecision is the decimal precision kept on total_score.
const scorePrecision = 2

// ComputeTotalScore aggregates the manager-scored answers into a weighted
// average on the 1-5 scale: sum(score x weight) / sum(weight) over applicable
// criteria that have a submitted score. Weights come from the answer
// snapshots, not the live catalog. Criteria without an answer contribute to
// neither sum. When nothing applicable was answered the result is
// ErrIncompleteQuestionnaire and the caller must not approve.
func ComputeTotalScore(applicable []criteria.Criterion, answers []Answer) (decimal.Decimal, error) {
	applicableIDs := make(map[string]bool, len(applicable))
	for _, c := range applicable {
		applicableIDs[c.ID] = true
	}

	numerator := decimal.Zero
	denominator := decimal.Zero
	for _, a := range answers {
		if a.RespondentType != RespondentManager || a.CriterionID == nil || a.Score == nil {
			continue
		}
		if !applicableIDs[*a.CriterionID] {
			continue
		}
		weight := decimal.NewFromInt(1)
		if a.CriterionWeightSnapshot != nil {
			weight = *a.CriterionWeightSnapshot
		}
		numerator = numerator.Add(decimal.NewFromInt(int64(*a.Score)).Mul(weight))
		denominator = denominator.Add(weight)
	}

	if denominator.IsZero() {
		return decimal.Zero, ErrIncompleteQuestionnaire
	}
	return numerator.Div(denominator).Round(scorePrecision), nil
}
