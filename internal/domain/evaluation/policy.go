package evaluation

// Actor is the authenticated caller as the policy sees it: portal role plus
// identity, nothing else.
type Actor struct {
	UserID string
	Role   string
}

type Action string

const (
	ActionView       Action = "view"
	ActionCreate     Action = "create"
	ActionSubmitSelf Action = "submit_self_assessment"
	ActionReview     Action = "review"
	ActionSoftDelete Action = "soft_delete"
	ActionRestore    Action = "restore"
	ActionViewTrash  Action = "view_trash"
)

const (
	roleAdmin   = "ADMIN"
	roleManager = "MANAGER"
)

// Can is the single authorization decision table consumed by every operation.
// It decides over {role, identity match, deletion marker}; whether the
// requested event is legal from the current status is the transition
// matrix's concern, so denied state transitions surface as
// InvalidTransitionError rather than an authorization failure.
func Can(actor Actor, action Action, eval Evaluation) bool {
	isAdmin := actor.Role == roleAdmin
	isOwnAsEmployee := actor.UserID == eval.EmployeeID
	isDesignatedManager := actor.UserID == eval.ManagerID

	switch action {
	case ActionView:
		return isAdmin || isOwnAsEmployee || isDesignatedManager

	case ActionCreate:
		// Manual creation: admins anywhere, managers only for evaluations
		// they will evaluate themselves.
		return isAdmin || (actor.Role == roleManager && isDesignatedManager)

	case ActionSubmitSelf:
		// Strictly the evaluated employee, never a stand-in, not even admin.
		return isOwnAsEmployee && !eval.Deleted()

	case ActionReview:
		if eval.Deleted() {
			return false
		}
		if isAdmin {
			return true
		}
		return actor.Role == roleManager && isDesignatedManager

	case ActionSoftDelete:
		return isAdmin && !eval.Deleted()

	case ActionRestore:
		return isAdmin && eval.Deleted()

	case ActionViewTrash:
		return isAdmin
	}
	return false
}
