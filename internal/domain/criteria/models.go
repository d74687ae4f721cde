package criteria

import "github.com/shopspring/decimal"

const (
	AudienceManager      = "manager"
	AudienceCollaborator = "collaborator"
)

// Criterion is one weighted dimension of the manager-scored questionnaire.
// Submitted answers snapshot name and weight, so catalog edits never change
// a finalized evaluation.
type Criterion struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Audience    string          `json:"audience"`
	LeadersOnly bool            `json:"leadersOnly"`
	Weight      decimal.Decimal `json:"weight"`
	Active      bool            `json:"active"`
}

// ApplicableTo reports whether the criterion participates in the manager
// questionnaire for the given employee.
func (c Criterion) ApplicableTo(employeeIsLeader bool) bool {
	if !c.Active || c.Audience != AudienceManager {
		return false
	}
	if c.LeadersOnly && !employeeIsLeader {
		return false
	}
	return true
}
