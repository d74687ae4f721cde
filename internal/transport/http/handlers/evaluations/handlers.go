package evaluationshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/audit"
	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/evaluation"
	"appraisal/internal/domain/period"
	"appraisal/internal/domain/reports"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Workflow *evaluation.Workflow
	Store    *evaluation.Store
	Periods  *period.Store
	Audit    *audit.Service
	Perms    middleware.PermissionStore
}

func NewHandler(workflow *evaluation.Workflow, store *evaluation.Store, periods *period.Store, auditSvc *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Workflow: workflow, Store: store, Periods: periods, Audit: auditSvc, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/evaluations", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermEvaluationsAdmin, h.Perms)).Get("/trash", h.handleListTrash)
		r.With(middleware.RequirePermission(auth.PermEvaluationsRead, h.Perms)).Get("/{evaluationID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermEvaluationsWrite, h.Perms)).Put("/{evaluationID}/self-assessment", h.handleSubmitSelfAssessment)
		r.With(middleware.RequirePermission(auth.PermEvaluationsReview, h.Perms)).Put("/{evaluationID}/review", h.handleSubmitReview)
		r.With(middleware.RequirePermission(auth.PermEvaluationsAdmin, h.Perms)).Delete("/{evaluationID}", h.handleSoftDelete)
		r.With(middleware.RequirePermission(auth.PermEvaluationsAdmin, h.Perms)).Post("/{evaluationID}/restore", h.handleRestore)
		r.With(middleware.RequirePermission(auth.PermReportsRead, h.Perms)).Get("/{evaluationID}/report.pdf", h.handleReportPDF)
		r.With(middleware.RequirePermission(auth.PermEvaluationsAdmin, h.Perms)).Get("/{evaluationID}/audit", h.handleAuditTrail)
	})
}

func actorFrom(r *http.Request) (evaluation.Actor, bool) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return evaluation.Actor{}, false
	}
	return evaluation.Actor{UserID: user.UserID, Role: user.Role}, true
}

// writeDomainError maps domain failures onto the stable wire codes. Anything
// unrecognized is a 500 with no internals leaked.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var verr *evaluation.ValidationError
	if errors.As(err, &verr) {
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "payload validation failed",
			map[string]any{"fields": verr.Issues}, requestID)
		return
	}
	var terr *evaluation.InvalidTransitionError
	if errors.As(err, &terr) {
		api.Fail(w, http.StatusConflict, "invalid_transition", terr.Error(), requestID)
		return
	}

	switch {
	case errors.Is(err, evaluation.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "evaluation not found", requestID)
	case errors.Is(err, evaluation.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "not permitted for this evaluation", requestID)
	case errors.Is(err, evaluation.ErrDuplicate):
		api.Fail(w, http.StatusConflict, "duplicate_evaluation", "an evaluation already exists for this employee, manager and period", requestID)
	case errors.Is(err, evaluation.ErrConflict):
		api.Fail(w, http.StatusConflict, "concurrent_modification", "evaluation was modified concurrently, refetch and retry", requestID)
	case errors.Is(err, evaluation.ErrIncompleteQuestionnaire):
		api.Fail(w, http.StatusUnprocessableEntity, "incomplete_questionnaire", "no scored criteria to aggregate", requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "operation failed", requestID)
	}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	filter, v := parseListFilter(r)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	// Non-admins only ever see their own evaluations, whichever side of the
	// table they sit on.
	if actor.Role != auth.RoleAdmin {
		if filter.EmployeeID == "" && filter.ManagerID == "" {
			if actor.Role == auth.RoleManager {
				filter.ManagerID = actor.UserID
			} else {
				filter.EmployeeID = actor.UserID
			}
		} else if filter.EmployeeID != actor.UserID && filter.ManagerID != actor.UserID {
			api.Fail(w, http.StatusForbidden, "forbidden", "cannot list other users' evaluations", middleware.GetRequestID(r.Context()))
			return
		}
	}

	evals, err := h.Store.ListActive(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, evals, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListTrash(w http.ResponseWriter, r *http.Request) {
	filter, v := parseListFilter(r)
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	evals, err := h.Store.ListDeleted(r.Context(), filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, evals, middleware.GetRequestID(r.Context()))
}

func parseListFilter(r *http.Request) (evaluation.ListFilter, *shared.Validator) {
	v := shared.NewValidator()
	q := r.URL.Query()

	filter := evaluation.ListFilter{
		EmployeeID: strings.TrimSpace(q.Get("employeeId")),
		ManagerID:  strings.TrimSpace(q.Get("managerId")),
		PeriodID:   strings.TrimSpace(q.Get("periodId")),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			status = strings.TrimSpace(status)
			if !evaluation.KnownStatus(status) {
				v.Add("status", "unknown status "+status)
				continue
			}
			filter.Statuses = append(filter.Statuses, status)
		}
	}
	if raw := q.Get("from"); raw != "" {
		if from, ok := v.Date("from", raw); ok {
			filter.From = from
		}
	}
	if raw := q.Get("to"); raw != "" {
		if to, ok := v.Date("to", raw); ok {
			filter.To = to
		}
	}
	page := shared.ParsePagination(r, 50, 200)
	filter.Limit = page.Limit
	filter.Offset = page.Offset
	return filter, v
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		EmployeeID string `json:"employeeId"`
		ManagerID  string `json:"managerId"`
		PeriodID   string `json:"periodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("managerId", payload.ManagerID, "manager id is required")
	v.Required("periodId", payload.PeriodID, "period id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	created, err := h.Workflow.Create(r.Context(), actor, payload.EmployeeID, payload.ManagerID, payload.PeriodID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Created(w, created, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	eval, answers, err := h.Workflow.Get(r.Context(), actor, chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"evaluation": eval, "answers": answers}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitSelfAssessment(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload struct {
		Answers []evaluation.SelfAnswerInput `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Workflow.SubmitSelfAssessment(r.Context(), actor, chi.URLParam(r, "evaluationID"), payload.Answers)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSubmitReview(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	var payload evaluation.ReviewInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	updated, err := h.Workflow.SubmitManagerReview(r.Context(), actor, chi.URLParam(r, "evaluationID"), payload)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, updated, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleSoftDelete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Workflow.SoftDelete(r.Context(), actor, chi.URLParam(r, "evaluationID")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"deleted": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRestore(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Workflow.Restore(r.Context(), actor, chi.URLParam(r, "evaluationID")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	api.Success(w, map[string]any{"restored": true}, middleware.GetRequestID(r.Context()))
}

// handleAuditTrail returns the recorded lifecycle events for one evaluation,
// newest first.
func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	page := shared.ParsePagination(r, 50, 200)
	events, err := h.Audit.ListForEntity(r.Context(), "evaluation", chi.URLParam(r, "evaluationID"), page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "audit_list_failed", "failed to list audit events", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, events, middleware.GetRequestID(r.Context()))
}

// handleReportPDF streams the result document. Visibility follows the same
// policy as Get; the report adds nothing an allowed viewer cannot already see.
func (h *Handler) handleReportPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFrom(r)
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}

	eval, answers, err := h.Workflow.Get(r.Context(), actor, chi.URLParam(r, "evaluationID"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	p, err := h.Periods.Get(r.Context(), eval.PeriodID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="evaluation-`+eval.ID+`.pdf"`)
	report := reports.EvaluationReport{Evaluation: eval, Answers: answers, Period: p}
	if err := reports.RenderEvaluationPDF(w, report); err != nil {
		// Headers may already be gone; nothing recoverable at this point.
		writeDomainError(w, r, err)
	}
}
