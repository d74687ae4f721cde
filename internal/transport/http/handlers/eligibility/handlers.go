package eligibilityhandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/eligibility"
	"appraisal/internal/domain/identity"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Store     *eligibility.Store
	Directory *identity.Store
	Perms     middleware.PermissionStore
}

func NewHandler(store *eligibility.Store, directory *identity.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Directory: directory, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/eligibility", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEligibilityRead, h.Perms)).Get("/", h.handleListEligible)
		r.With(middleware.RequirePermission(auth.PermEligibilityWrite, h.Perms)).Post("/", h.handleUpsertEligible)
		r.With(middleware.RequirePermission(auth.PermEligibilityWrite, h.Perms)).Delete("/{rowID}", h.handleRemoveEligible)
		r.With(middleware.RequirePermission(auth.PermEligibilityRead, h.Perms)).Get("/mappings", h.handleListMappings)
		r.With(middleware.RequirePermission(auth.PermEligibilityWrite, h.Perms)).Post("/mappings", h.handleUpsertMapping)
		r.With(middleware.RequirePermission(auth.PermEligibilityWrite, h.Perms)).Delete("/mappings/{rowID}", h.handleRemoveMapping)
		r.With(middleware.RequirePermission(auth.PermEligibilityRead, h.Perms)).Get("/resolve-manager", h.handleResolveManager)
	})
	r.Route("/leaders", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermEligibilityRead, h.Perms)).Get("/", h.handleListLeaders)
		r.With(middleware.RequirePermission(auth.PermEligibilityWrite, h.Perms)).Post("/", h.handleAddLeader)
		r.With(middleware.RequirePermission(auth.PermEligibilityWrite, h.Perms)).Delete("/{userID}", h.handleRemoveLeader)
	})
}

func (h *Handler) handleListEligible(w http.ResponseWriter, r *http.Request) {
	periodID := strings.TrimSpace(r.URL.Query().Get("periodId"))
	rows, err := h.Store.ListEligible(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "eligibility_list_failed", "failed to list eligibility rows", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertEligible(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID   string  `json:"userId"`
		PeriodID *string `json:"periodId"`
		Active   *bool   `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "user id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	row := eligibility.EligibleUser{UserID: payload.UserID, PeriodID: payload.PeriodID, Active: true}
	if payload.Active != nil {
		row.Active = *payload.Active
	}

	id, err := h.Store.UpsertEligible(r.Context(), row)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "eligibility_upsert_failed", "failed to save eligibility row", middleware.GetRequestID(r.Context()))
		return
	}
	row.ID = id
	api.Created(w, row, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveEligible(w http.ResponseWriter, r *http.Request) {
	err := h.Store.RemoveEligible(r.Context(), chi.URLParam(r, "rowID"))
	if errors.Is(err, eligibility.ErrRowNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "eligibility row not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "eligibility_remove_failed", "failed to remove eligibility row", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"removed": true}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListMappings(w http.ResponseWriter, r *http.Request) {
	periodID := strings.TrimSpace(r.URL.Query().Get("periodId"))
	rows, err := h.Store.ListMappings(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mapping_list_failed", "failed to list manager mappings", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, rows, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpsertMapping(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		EmployeeID string  `json:"employeeId"`
		ManagerID  string  `json:"managerId"`
		PeriodID   *string `json:"periodId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("employeeId", payload.EmployeeID, "employee id is required")
	v.Required("managerId", payload.ManagerID, "manager id is required")
	if payload.EmployeeID != "" && payload.EmployeeID == payload.ManagerID {
		v.Add("managerId", "employee cannot be their own evaluator")
	}
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	row := eligibility.ManagerMapping{
		EmployeeID: payload.EmployeeID,
		ManagerID:  payload.ManagerID,
		PeriodID:   payload.PeriodID,
		Active:     true,
	}
	id, err := h.Store.UpsertMapping(r.Context(), row)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mapping_upsert_failed", "failed to save manager mapping", middleware.GetRequestID(r.Context()))
		return
	}
	row.ID = id
	api.Created(w, row, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveMapping(w http.ResponseWriter, r *http.Request) {
	err := h.Store.RemoveMapping(r.Context(), chi.URLParam(r, "rowID"))
	if errors.Is(err, eligibility.ErrRowNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "manager mapping not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "mapping_remove_failed", "failed to remove manager mapping", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"removed": true}, middleware.GetRequestID(r.Context()))
}

// handleResolveManager answers "who would evaluate this employee" without
// creating anything, so admins can audit the mapping before the run fires.
func (h *Handler) handleResolveManager(w http.ResponseWriter, r *http.Request) {
	employeeID := strings.TrimSpace(r.URL.Query().Get("employeeId"))
	periodID := strings.TrimSpace(r.URL.Query().Get("periodId"))

	v := shared.NewValidator()
	v.Required("employeeId", employeeID, "employee id is required")
	v.Required("periodId", periodID, "period id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	managerID, err := h.Store.ResolveManager(r.Context(), employeeID, periodID)
	switch {
	case errors.Is(err, eligibility.ErrNoManager):
		api.Fail(w, http.StatusNotFound, "no_manager_mapping", "no active manager mapping for employee", middleware.GetRequestID(r.Context()))
		return
	case errors.Is(err, eligibility.ErrAmbiguousMapping):
		api.Fail(w, http.StatusConflict, "ambiguous_manager_mapping", "multiple active manager mappings in the deciding scope", middleware.GetRequestID(r.Context()))
		return
	case err != nil:
		api.Fail(w, http.StatusInternalServerError, "resolve_failed", "failed to resolve manager", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"employeeId": employeeID, "periodId": periodID, "managerId": managerID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListLeaders(w http.ResponseWriter, r *http.Request) {
	leaders, err := h.Directory.ListLeaders(r.Context())
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leader_list_failed", "failed to list leaders", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, leaders, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleAddLeader(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserID          string `json:"userId"`
		LeadershipTitle string `json:"leadershipTitle"`
		Department      string `json:"department"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	v := shared.NewValidator()
	v.Required("userId", payload.UserID, "user id is required")
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Directory.AddLeader(r.Context(), payload.UserID, payload.LeadershipTitle, payload.Department)
	if errors.Is(err, identity.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leader_add_failed", "failed to add leader", middleware.GetRequestID(r.Context()))
		return
	}
	api.Created(w, map[string]any{"id": id, "userId": payload.UserID}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleRemoveLeader(w http.ResponseWriter, r *http.Request) {
	err := h.Directory.RemoveLeader(r.Context(), chi.URLParam(r, "userID"))
	if errors.Is(err, identity.ErrUserNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "user has no active leadership record", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "leader_remove_failed", "failed to remove leader", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"removed": true}, middleware.GetRequestID(r.Context()))
}
