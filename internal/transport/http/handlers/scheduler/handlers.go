package schedulerhandler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"appraisal/internal/domain/auth"
	"appraisal/internal/domain/period"
	"appraisal/internal/domain/scheduler"
	"appraisal/internal/platform/metrics"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
	"appraisal/internal/transport/http/shared"
)

type Handler struct {
	Service    *scheduler.Service
	Periods    *period.Store
	Perms      middleware.PermissionStore
	Metrics    *metrics.Collector
	CronSecret string
}

func NewHandler(service *scheduler.Service, periods *period.Store, perms middleware.PermissionStore, collector *metrics.Collector, cronSecret string) *Handler {
	return &Handler{Service: service, Periods: periods, Perms: perms, Metrics: collector, CronSecret: cronSecret}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/scheduler", func(r chi.Router) {
		// The run trigger authorizes itself: either an admin token or the
		// shared cron secret for headless invocation.
		r.Post("/run", h.handleRun)
		r.With(middleware.RequirePermission(auth.PermSchedulerLogs, h.Perms)).Get("/logs", h.handleListLogs)
	})
}

func (h *Handler) authorized(r *http.Request) bool {
	if secret := strings.TrimSpace(r.Header.Get("X-Cron-Secret")); secret != "" && h.CronSecret != "" {
		return subtle.ConstantTimeCompare([]byte(secret), []byte(h.CronSecret)) == 1
	}
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		return false
	}
	allowed, err := h.Perms.HasPermission(r.Context(), user.Role, auth.PermSchedulerRun)
	return err == nil && allowed
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "admin token or cron secret required", middleware.GetRequestID(r.Context()))
		return
	}

	periodID := strings.TrimSpace(r.URL.Query().Get("periodId"))
	summary, err := h.Service.Run(r.Context(), periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "scheduler_run_failed", "scheduled creation run failed", middleware.GetRequestID(r.Context()))
		return
	}
	if h.Metrics != nil {
		h.Metrics.RecordSchedulerRun(summary.TotalCreated)
	}
	api.Success(w, summary, middleware.GetRequestID(r.Context()))
}

func (h *Handler) handleListLogs(w http.ResponseWriter, r *http.Request) {
	periodID := strings.TrimSpace(r.URL.Query().Get("periodId"))
	page := shared.ParsePagination(r, 50, 200)

	logs, err := h.Periods.ListCronLogs(r.Context(), periodID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "cron_log_list_failed", "failed to list scheduler logs", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, logs, middleware.GetRequestID(r.Context()))
}
