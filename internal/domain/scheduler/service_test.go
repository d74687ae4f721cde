package scheduler

import (
	"testing"

	"appraisal/internal/domain/period"
)

func TestPeriodResultOutcome(t *testing.T) {
	cases := []struct {
		name   string
		result PeriodResult
		want   string
	}{
		{"clean run", PeriodResult{Created: 12}, period.RunOutcomeOK},
		{"nothing to do", PeriodResult{}, period.RunOutcomeOK},
		{"skips demote to partial", PeriodResult{Created: 10, Skipped: 2}, period.RunOutcomePartial},
		{"error wins over skips", PeriodResult{Skipped: 2, Err: "resolve eligible users: boom"}, period.RunOutcomeError},
	}
	for _, tc := range cases {
		if got := tc.result.Outcome(); got != tc.want {
			t.Fatalf("%s: outcome = %s, want %s", tc.name, got, tc.want)
		}
	}
}
