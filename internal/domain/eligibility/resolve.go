package eligibility

import "errors"

var (
	// ErrNoManager means no active mapping resolves for the employee in the
	// period. During scheduled creation this is a skip, never a batch failure.
	ErrNoManager = errors.New("no manager mapping resolves for employee")

	// ErrAmbiguousMapping means more than one active mapping exists at the
	// same scope. This is a configuration error surfaced to administrators,
	// never silently resolved by picking one.
	ErrAmbiguousMapping = errors.New("ambiguous manager mapping for employee")
)

// EffectiveEligible merges period-scoped rows over global rows. A scoped row
// decides for its user outright: active opts in, inactive opts the user out of
// this cycle even when a global row exists. Users with only an active global
// row are included. Order of the result follows global-then-scoped insertion
// and is not significant.
func EffectiveEligible(scoped, global []EligibleUser) []string {
	decided := make(map[string]bool, len(scoped))
	for _, row := range scoped {
		decided[row.UserID] = row.Active
	}

	seen := make(map[string]bool)
	var out []string
	appendUser := func(userID string) {
		if !seen[userID] {
			seen[userID] = true
			out = append(out, userID)
		}
	}

	for _, row := range global {
		if !row.Active {
			continue
		}
		if include, overridden := decided[row.UserID]; overridden {
			if include {
				appendUser(row.UserID)
			}
			continue
		}
		appendUser(row.UserID)
	}
	for _, row := range scoped {
		if row.Active {
			appendUser(row.UserID)
		}
	}
	return out
}

// ResolveManagerFrom applies the resolution order to pre-fetched mappings for
// one employee: the period scope wins when it has any active row; otherwise
// the global scope decides. More than one active row inside the winning scope
// is ErrAmbiguousMapping; an empty winning scope falls through to ErrNoManager.
func ResolveManagerFrom(scoped, global []ManagerMapping) (string, error) {
	pick := func(rows []ManagerMapping) (string, bool, error) {
		var managerID string
		count := 0
		for _, row := range rows {
			if !row.Active {
				continue
			}
			managerID = row.ManagerID
			count++
		}
		switch count {
		case 0:
			return "", false, nil
		case 1:
			return managerID, true, nil
		default:
			return "", false, ErrAmbiguousMapping
		}
	}

	if managerID, ok, err := pick(scoped); err != nil || ok {
		return managerID, err
	}
	if managerID, ok, err := pick(global); err != nil || ok {
		return managerID, err
	}
	return "", ErrNoManager
}
