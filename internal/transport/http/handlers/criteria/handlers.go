package criteriahandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/criteria"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Store *criteria.Store
	Perms middleware.PermissionStore
}

func NewHandler(store *criteria.Store, perms middleware.PermissionStore) *Handler {
	return &Handler{Store: store, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/criteria", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermCriteriaRead, h.Perms)).Get("/", h.handleList)
		r.With(middleware.RequirePermission(auth.PermCriteriaWrite, h.Perms)).Post("/", h.handleCreate)
		r.With(middleware.RequirePermission(auth.PermCriteriaWrite, h.Perms)).Put("/{criterionID}", h.handleUpdate)
		r.With(middleware.RequirePermission(auth.PermCriteriaWrite, h.Perms)).Delete("/{criterionID}", h.handleDeactivate)
	})
}

type criterionPayload struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Audience    string `json:"audience"`
	LeadersOnly bool   `json:"leadersOnly"`
	Weight      string `json:"weight"`
}

func (p criterionPayload) validate() (criteria.Criterion, *shared.Validator) {
	v := shared.NewValidator()
	out := criteria.Criterion{
		Name:        strings.TrimSpace(p.Name),
		Description: strings.TrimSpace(p.Description),
		Category:    strings.TrimSpace(p.Category),
		Audience:    strings.ToLower(strings.TrimSpace(p.Audience)),
		LeadersOnly: p.LeadersOnly,
		Active:      true,
	}
	v.Required("name", p.Name, "name is required")
	v.Required("category", p.Category, "category is required")
	if out.Audience == "" {
		out.Audience = criteria.AudienceManager
	}
	v.Enum("audience", out.Audience,
		[]string{criteria.AudienceManager, criteria.AudienceCollaborator},
		"must be manager or collaborator")

	out.Weight = decimal.NewFromInt(1)
	if strings.TrimSpace(p.Weight) != "" {
		weight, err := decimal.NewFromString(strings.TrimSpace(p.Weight))
		if err != nil || weight.IsNegative() || weight.IsZero() {
			v.Add("weight", "must be a positive decimal")
		} else {
			out.Weight = weight
		}
	}
	return out, v
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	audience := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("audience")))
	list, err := h.Store.ListActive(r.Context(), audience)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criteria_list_failed", "failed to list criteria", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, list, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	c, v := payload.validate()
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}

	id, err := h.Store.Create(r.Context(), c)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criterion_create_failed", "failed to create criterion", middleware.GetRequestID(r.Context()))
		return
	}
	c.ID = id
	api.Created(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var payload criterionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}
	c, v := payload.validate()
	if v.Reject(w, middleware.GetRequestID(r.Context())) {
		return
	}
	c.ID = chi.URLParam(r, "criterionID")

	err := h.Store.Update(r.Context(), c)
	if errors.Is(err, criteria.ErrCriterionNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "criterion not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criterion_update_failed", "failed to update criterion", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, c, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleDeactivate(w http.ResponseWriter, r *http.Request) {
	err := h.Store.Deactivate(r.Context(), chi.URLParam(r, "criterionID"))
	if errors.Is(err, criteria.ErrCriterionNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "criterion not found", middleware.GetRequestID(r.Context()))
		return
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "criterion_deactivate_failed", "failed to deactivate criterion", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"deactivated": true}, middleware.GetRequestID(r.Context()))
}
