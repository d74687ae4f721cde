package eligibility

// EligibleUser marks a user for evaluation, either in one period or globally
// (nil PeriodID). A period-scoped row always wins over the global row for the
// same user, which is how an explicit opt-out for one cycle is expressed.
type EligibleUser struct {
	ID       string  `json:"id"`
	UserID   string  `json:"userId"`
	PeriodID *string `json:"periodId,omitempty"`
	Active   bool    `json:"active"`
}

// ManagerMapping assigns an evaluator to an employee, period-scoped or global.
type ManagerMapping struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employeeId"`
	ManagerID  string  `json:"managerId"`
	PeriodID   *string `json:"periodId,omitempty"`
	Active     bool    `json:"active"`
}
