package authhandler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"appraisal/internal/domain/auth"
	"appraisal/internal/transport/http/api"
	"appraisal/internal/transport/http/middleware"
)

const tokenTTL = 12 * time.Hour

type Handler struct {
	Store  *auth.Store
	Secret string
}

func NewHandler(store *auth.Store, secret string) *Handler {
	return &Handler{Store: store, Secret: secret}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin exchanges credentials for a bearer token. Unknown email and
// wrong password produce the same response.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", middleware.GetRequestID(r.Context()))
		return
	}

	user, err := h.Store.FindActiveUserByEmail(r.Context(), payload.Email)
	if err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}
	if err := auth.CheckPassword(user.PasswordHash, payload.Password); err != nil {
		api.Fail(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", middleware.GetRequestID(r.Context()))
		return
	}

	token, err := auth.GenerateToken(h.Secret, auth.Claims{UserID: user.ID, Role: user.Role}, tokenTTL)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "token_error", "failed to issue token", middleware.GetRequestID(r.Context()))
		return
	}

	if err := h.Store.UpdateLastLogin(r.Context(), user.ID); err != nil {
		slog.Warn("last login update failed", "userId", user.ID, "err", err)
	}

	api.Success(w, map[string]any{
		"token": token,
		"user":  map[string]any{"id": user.ID, "role": user.Role},
	}, middleware.GetRequestID(r.Context()))
}

// HandleMe echoes the authenticated caller, mostly for clients to bootstrap.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	api.Success(w, map[string]any{"id": user.UserID, "role": user.Role}, middleware.GetRequestID(r.Context()))
}
