package periodshandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/period"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Store *period.Store
	Perms middleware.PermissionStore
}

func NewHandler(store *period.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/periods", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermPeriodsRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermPeriodsWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermPeriodsRead, h.Perms)).Get("/{periodID}", h.handleGet)
		r.With(middleware.RequirePermission(auth.PermPeriodsWrite, h.Perms)).Put("/{periodID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermPeriodsWrite, h.Perms)).Delete("/{periodID}", h.handleDeactivate)
	})
}

type periodPayload struct {
	Name                   string `json:"name"`
	Year                   int    `json:"year"`
	StartDate              string `json:"startDate"`
	EndDate                string `json:"endDate"`
	SelfAssessmentDeadline string `json:"selfAssessmentDeadline"`
	ApprovalDeadline       string `json:"approvalDeadline"`
	Status                 string `json:"status"`
}

func (p periodPayload) validate() (period.Period, *shared.Validator) {
	v := shared.NewValidator()
	out := period.Period{Name: strings.TrimSpace(p.Name), Year: p.Year, Active: true}

	v.Required("name", p.Name, "name is required")
	if p.Year < 2000 || p.Year > 2100 {
		v.Add("year", "must be a plausible year")
	}
	if start, ok := v.Date("startDate", p.StartDate); ok {
		out.StartDate = start
	}
	if end, ok := v.Date("endDate", p.EndDate); ok {
		out.EndDate = end
	}
	v.DateOrder("startDate", out.StartDate, "endDate", out.EndDate)
	if deadline, ok := v.Date("selfAssessmentDeadline", p.SelfAssessmentDeadline); ok {
		out.SelfAssessmentDeadline = deadline
	}
	if deadline, ok := v.Date("approvalDeadline", p.ApprovalDeadline); ok {
		out.ApprovalDeadline = deadline
	}

	out.Status = strings.ToLower(strings.TrimSpace(p.Status))
	if out.Status == "" {
		out.Status = period.StatusPlanned
	}
	v.Enum("status", out.Status,
		[]string{period.StatusPlanned, period.StatusOpen, period.StatusClosed},
		"must be one of planned, open, closed")
	return out, v
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	periods, err := h.Store.List(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_list_failed", "failed to list periods", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, periods, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	p, err := h.Store.Get(r.Context(), chi.URLParam(r, "periodID"))
	if errors.Is(err, period.ErrPeriodNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "period not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_get_failed", "failed to load period", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	p, v := payload.validate()
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.Create(r.Context(), p)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_create_failed", "failed to create period", middleware.GetRequestID(r.Context()))
		return
	}
	p.ID = id
	api.Created(w, p, middleware.GetRequestID(r.Context()))
}

// handleUpdate never touches the auto-creation flag; the store excludes it
// from the update, so the one-shot marker stays monotonic.
func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload periodPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	p, v := payload.validate()
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	p.ID = chi.URLParam(r, "periodID")

	err := h.Store.Update(r.Context(), p)
	if errors.Is(err, period.ErrPeriodNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "period not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_update_failed", "failed to update period", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, p, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	err := h.Store.Deactivate(r.Context(), chi.URLParam(r, "periodID"))
	if errors.Is(err, period.ErrPeriodNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "period not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "period_deactivate_failed", "failed to deactivate period", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"deactivated": true}, middleware.GetRequestID(r.Context()))
}
