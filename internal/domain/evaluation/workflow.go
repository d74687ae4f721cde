package evaluation

import (
	"context"
	"fmt"
	"log/slog"

	"appraisal/internal/domain/criteria"
	"appraisal/internal/domain/identity"
)

// Notification event types emitted by the workflow.
const (
	NotifyEvaluationCreated  = "evaluation_created"
	NotifySelfSubmitted      = "self_assessment_submitted"
	NotifyApproved           = "evaluation_approved"
	NotifyRejected           = "evaluation_rejected"
	NotifyReturned           = "evaluation_returned"
	NotifyEvaluationRemoved  = "evaluation_removed"
	NotifyEvaluationRestored = "evaluation_restored"
)

// Notifier is the dispatch contract for the external notification sink.
// Delivery is fire-and-forget: the workflow never inspects more than the
// error for logging, and a failure never rolls back a transition.
type Notifier interface {
	Notify(ctx context.Context, eventType, evaluationID string, recipientIDs []string, title, body string) error
}

// Directory is the identity/role collaborator: profile snapshots at creation
// and the leadership designation consulted for criteria applicability.
type Directory interface {
	GetUser(ctx context.Context, userID string) (identity.User, error)
	IsLeader(ctx context.Context, userID string) (bool, error)
}

// Catalog is the criterion read surface the workflow scores against.
type Catalog interface {
	Get(ctx context.Context, id string) (criteria.Criterion, error)
	ListActive(ctx context.Context, audience string) ([]criteria.Criterion, error)
}

// Auditor records lifecycle events. Failures are logged, never propagated.
type Auditor interface {
	Record(ctx context.Context, actorID, action, entityType, entityID string, before, after any) error
}

// Workflow owns the evaluation lifecycle: creation, the state machine, and
// the scoring/notification collaborators around it.
type Workflow struct {
	Store     *Store
	Directory Directory
	Catalog   Catalog
	Notifier  Notifier
	Audit     Auditor
}

func NewWorkflow(store *Store, dir Directory, catalog Catalog, notifier Notifier, audit Auditor) *Workflow {
	return &Workflow{Store: store, Directory: dir, Catalog: catalog, Notifier: notifier, Audit: audit}
}

func (w *Workflow) snapshotFor(ctx context.Context, userID string) (PersonSnapshot, error) {
	user, err := w.Directory.GetUser(ctx, userID)
	if err != nil {
		return PersonSnapshot{}, err
	}
	return PersonSnapshot{Name: user.FullName(), Position: user.Position, Department: user.Department}, nil
}

// Create is the manual creation path, bypassing the scheduler but enforcing
// the same uniqueness invariant and identity snapshots.
func (w *Workflow) Create(ctx context.Context, actor Actor, employeeID, managerID, periodID string) (Evaluation, error) {
	verr := &ValidationError{}
	if employeeID == "" {
		verr.Add("employeeId", "is required")
	}
	if managerID == "" {
		verr.Add("managerId", "is required")
	}
	if periodID == "" {
		verr.Add("periodId", "is required")
	}
	if err := verr.OrNil(); err != nil {
		return Evaluation{}, err
	}

	probe := Evaluation{EmployeeID: employeeID, ManagerID: managerID, PeriodID: periodID}
	if !Can(actor, ActionCreate, probe) {
		return Evaluation{}, ErrForbidden
	}

	employee, err := w.snapshotFor(ctx, employeeID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("resolve employee: %w", err)
	}
	manager, err := w.snapshotFor(ctx, managerID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("resolve manager: %w", err)
	}

	id, err := w.Store.Create(ctx, periodID, employeeID, managerID, employee, manager)
	if err != nil {
		return Evaluation{}, err
	}

	created, err := w.Store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, err
	}

	w.notify(ctx, NotifyEvaluationCreated, id, []string{employeeID, managerID},
		"New Performance Evaluation",
		"A performance evaluation has been created. The employee should fill in the self-assessment.")
	w.audit(ctx, actor.UserID, "evaluation.create", id, nil, created)
	return created, nil
}

// Get applies the view policy before returning the evaluation with answers.
func (w *Workflow) Get(ctx context.Context, actor Actor, id string) (Evaluation, []Answer, error) {
	eval, err := w.Store.Get(ctx, id)
	if err != nil {
		return Evaluation{}, nil, err
	}
	if eval.Deleted() && !Can(actor, ActionViewTrash, eval) {
		return Evaluation{}, nil, ErrNotFound
	}
	if !Can(actor, ActionView, eval) {
		return Evaluation{}, nil, ErrForbidden
	}
	answers, err := w.Store.ListAnswers(ctx, id)
	if err != nil {
		return Evaluation{}, nil, err
	}
	return eval, answers, nil
}

// SubmitSelfAssessment moves pending_self_assessment (or a returned rework)
// to awaiting_manager_review. Only the evaluated employee may do this.
func (w *Workflow) SubmitSelfAssessment(ctx context.Context, actor Actor, evaluationID string, answers []SelfAnswerInput) (Evaluation, error) {
	eval, err := w.Store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !Can(actor, ActionSubmitSelf, eval) {
		return Evaluation{}, ErrForbidden
	}
	if _, err := NextStatus(eval.Status, EventSubmitSelfAssessment); err != nil {
		return Evaluation{}, err
	}
	if err := ValidateSelfAssessment(answers); err != nil {
		return Evaluation{}, err
	}

	for _, a := range answers {
		questionID := a.QuestionID
		if err := w.Store.UpsertAnswer(ctx, Answer{
			EvaluationID:   evaluationID,
			QuestionID:     &questionID,
			RespondentType: RespondentCollaborator,
			ResponseText:   a.Text,
			Comment:        a.Comment,
		}); err != nil {
			return Evaluation{}, fmt.Errorf("persist answer: %w", err)
		}
	}

	if err := w.Store.TransitionSelfAssessment(ctx, evaluationID, eval.Status); err != nil {
		return Evaluation{}, err
	}

	updated, err := w.Store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}

	w.notify(ctx, NotifySelfSubmitted, evaluationID, []string{eval.ManagerID},
		"Self-Assessment Submitted",
		fmt.Sprintf("%s submitted their self-assessment and awaits your review.", eval.Employee.Name))
	w.audit(ctx, actor.UserID, "evaluation.submit_self_assessment", evaluationID, eval, updated)
	return updated, nil
}

// SubmitManagerReview applies the manager questionnaire and decision from
// awaiting_manager_review. Approval computes the weighted total score from
// every stored manager answer (including this submission); rejection and
// return leave the score untouched.
func (w *Workflow) SubmitManagerReview(ctx context.Context, actor Actor, evaluationID string, input ReviewInput) (Evaluation, error) {
	eval, err := w.Store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}
	if !Can(actor, ActionReview, eval) {
		return Evaluation{}, ErrForbidden
	}
	toStatus, err := NextStatus(eval.Status, decisionEvent(input.Decision))
	if err != nil {
		return Evaluation{}, err
	}
	if err := ValidateReview(input); err != nil {
		return Evaluation{}, err
	}

	employeeIsLeader, err := w.Directory.IsLeader(ctx, eval.EmployeeID)
	if err != nil {
		return Evaluation{}, fmt.Errorf("resolve leadership: %w", err)
	}

	// Validate every scored answer against the live catalog before any write.
	verr := &ValidationError{}
	resolved := make([]Answer, 0, len(input.Answers))
	for i, a := range input.Answers {
		criterion, err := w.Catalog.Get(ctx, a.CriterionID)
		if err != nil {
			verr.Add(fmt.Sprintf("answers[%d].criterionId", i), "unknown criterion")
			continue
		}
		if !criterion.ApplicableTo(employeeIsLeader) {
			verr.Add(fmt.Sprintf("answers[%d].criterionId", i), "criterion not applicable to this employee")
			continue
		}
		criterionID := criterion.ID
		score := a.Score
		weight := criterion.Weight
		resolved = append(resolved, Answer{
			EvaluationID:            evaluationID,
			CriterionID:             &criterionID,
			RespondentType:          RespondentManager,
			Score:                   &score,
			Comment:                 a.Comment,
			CriterionNameSnapshot:   criterion.Name,
			CriterionWeightSnapshot: &weight,
		})
	}
	if err := verr.OrNil(); err != nil {
		return Evaluation{}, err
	}

	for _, a := range resolved {
		if err := w.Store.UpsertAnswer(ctx, a); err != nil {
			return Evaluation{}, fmt.Errorf("persist answer: %w", err)
		}
	}

	switch input.Decision {
	case DecisionApprove:
		applicable, err := w.applicableCriteria(ctx, employeeIsLeader)
		if err != nil {
			return Evaluation{}, err
		}
		stored, err := w.Store.ListAnswers(ctx, evaluationID)
		if err != nil {
			return Evaluation{}, err
		}
		total, err := ComputeTotalScore(applicable, stored)
		if err != nil {
			return Evaluation{}, err
		}
		if err := w.Store.TransitionDecision(ctx, evaluationID, eval.Status, toStatus, input.Comment, "", &total); err != nil {
			return Evaluation{}, err
		}
	case DecisionReject:
		if err := w.Store.TransitionDecision(ctx, evaluationID, eval.Status, toStatus, input.Comment, "", nil); err != nil {
			return Evaluation{}, err
		}
	case DecisionReturn:
		if err := w.Store.TransitionDecision(ctx, evaluationID, eval.Status, toStatus, input.Comment, input.ReturnReason, nil); err != nil {
			return Evaluation{}, err
		}
	}

	updated, err := w.Store.Get(ctx, evaluationID)
	if err != nil {
		return Evaluation{}, err
	}

	switch input.Decision {
	case DecisionApprove:
		w.notify(ctx, NotifyApproved, evaluationID, []string{eval.EmployeeID},
			"Evaluation Approved",
			"Your performance evaluation was approved by your manager.")
	case DecisionReject:
		w.notify(ctx, NotifyRejected, evaluationID, []string{eval.EmployeeID},
			"Evaluation Rejected",
			"Your performance evaluation was rejected by your manager.")
	case DecisionReturn:
		w.notify(ctx, NotifyReturned, evaluationID, []string{eval.EmployeeID},
			"Evaluation Returned for Adjustment",
			fmt.Sprintf("Your evaluation was returned for adjustment. Reason: %s", input.ReturnReason))
	}
	w.audit(ctx, actor.UserID, "evaluation."+input.Decision, evaluationID, eval, updated)
	return updated, nil
}

// SoftDelete moves the evaluation to the trash without changing its status.
func (w *Workflow) SoftDelete(ctx context.Context, actor Actor, evaluationID string) error {
	eval, err := w.Store.Get(ctx, evaluationID)
	if err != nil {
		return err
	}
	if !Can(actor, ActionSoftDelete, eval) {
		return ErrForbidden
	}
	if err := w.Store.SoftDelete(ctx, evaluationID); err != nil {
		return err
	}
	w.notify(ctx, NotifyEvaluationRemoved, evaluationID, []string{eval.EmployeeID},
		"Evaluation Removed",
		"Your performance evaluation was removed by an administrator.")
	w.audit(ctx, actor.UserID, "evaluation.soft_delete", evaluationID, eval, nil)
	return nil
}

// Restore brings a trashed evaluation back in its pre-delete status.
func (w *Workflow) Restore(ctx context.Context, actor Actor, evaluationID string) error {
	eval, err := w.Store.Get(ctx, evaluationID)
	if err != nil {
		return err
	}
	if !Can(actor, ActionRestore, eval) {
		return ErrForbidden
	}
	if err := w.Store.Restore(ctx, evaluationID); err != nil {
		return err
	}
	w.notify(ctx, NotifyEvaluationRestored, evaluationID, []string{eval.EmployeeID},
		"Evaluation Restored",
		"Your performance evaluation was restored by an administrator.")
	w.audit(ctx, actor.UserID, "evaluation.restore", evaluationID, nil, eval)
	return nil
}

func (w *Workflow) applicableCriteria(ctx context.Context, employeeIsLeader bool) ([]criteria.Criterion, error) {
	all, err := w.Catalog.ListActive(ctx, criteria.AudienceManager)
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, c := range all {
		if c.ApplicableTo(employeeIsLeader) {
			out = append(out, c)
		}
	}
	return out, nil
}

func decisionEvent(decision string) string {
	switch decision {
	case DecisionApprove:
		return EventApprove
	case DecisionReject:
		return EventReject
	case DecisionReturn:
		return EventReturn
	}
	return decision
}

// notify isolates side-effect failures: logged, never propagated.
func (w *Workflow) notify(ctx context.Context, eventType, evaluationID string, recipients []string, title, body string) {
	if w.Notifier == nil {
		return
	}
	if err := w.Notifier.Notify(ctx, eventType, evaluationID, recipients, title, body); err != nil {
		slog.Warn("notification dispatch failed", "eventType", eventType, "evaluationId", evaluationID, "err", err)
	}
}

func (w *Workflow) audit(ctx context.Context, actorID, action, evaluationID string, before, after any) {
	if w.Audit == nil {
		return
	}
	if err := w.Audit.Record(ctx, actorID, action, "evaluation", evaluationID, before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "evaluationId", evaluationID, "err", err)
	}
}
