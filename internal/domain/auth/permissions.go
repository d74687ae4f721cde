package auth

const (
	RoleAdmin   = "ADMIN"
	RoleManager = "MANAGER"
	RoleUser    = "USER"
)

const (
	PermEvaluationsRead   = "evaluations.read"
	PermEvaluationsWrite  = "evaluations.write"
	PermEvaluationsReview = "evaluations.review"
	PermEvaluationsAdmin  = "evaluations.admin"
	PermPeriodsRead       = "periods.read"
	PermPeriodsWrite      = "periods.write"
	PermCriteriaRead      = "criteria.read"
	PermCriteriaWrite     = "criteria.write"
	PermEligibilityRead   = "eligibility.read"
	PermEligibilityWrite  = "eligibility.write"
	PermSchedulerRun      = "scheduler.run"
	PermSchedulerLogs     = "scheduler.logs"
	PermReportsRead       = "reports.read"
)

var DefaultPermissions = []string{
	PermEvaluationsRead,
	PermEvaluationsWrite,
	PermEvaluationsReview,
	PermEvaluationsAdmin,
	PermPeriodsRead,
	PermPeriodsWrite,
	PermCriteriaRead,
	PermCriteriaWrite,
	PermEligibilityRead,
	PermEligibilityWrite,
	PermSchedulerRun,
	PermSchedulerLogs,
	PermReportsRead,
}

// RolePermissions is the seed decision table: what each portal role may touch.
// Identity-level checks (is this MY evaluation) live in the evaluation policy,
// not here.
var RolePermissions = map[string][]string{
	RoleUser: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermPeriodsRead,
		PermCriteriaRead,
		PermReportsRead,
	},
	RoleManager: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermEvaluationsReview,
		PermPeriodsRead,
		PermCriteriaRead,
		PermEligibilityRead,
		PermReportsRead,
	},
	RoleAdmin: {
		PermEvaluationsRead,
		PermEvaluationsWrite,
		PermEvaluationsReview,
		PermEvaluationsAdmin,
		PermPeriodsRead,
		PermPeriodsWrite,
		PermCriteriaRead,
		PermCriteriaWrite,
		PermEligibilityRead,
		PermEligibilityWrite,
		PermSchedulerRun,
		PermSchedulerLogs,
		PermReportsRead,
	},
}
