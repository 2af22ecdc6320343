// Package handler exposes registration, login, and the current-account
// endpoint.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"matchport/internal/account/service"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/httputil"
	"matchport/pkg/requestcontext"
)

type Handler struct {
	service *service.Service
	logger  *slog.Logger
}

func New(svc *service.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterPublic mounts the unauthenticated auth endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.HandleRegister)
	r.Post("/auth/login", h.HandleLogin)
}

// RegisterAuthed mounts the endpoints that require a bearer token.
func (h *Handler) RegisterAuthed(r chi.Router) {
	r.Get("/me", h.HandleMe)
}

// HandleRegister handles POST /auth/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger)
	if !ok {
		return
	}

	a, err := h.service.Register(ctx, service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
		Role:     req.Role,
		Phone:    req.Phone,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromAccount(a))
}

// HandleLogin handles POST /auth/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[LoginRequest](w, r, h.logger)
	if !ok {
		return
	}

	token, a, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.WarnContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		Account:     FromAccount(a),
	})
}

// HandleMe handles GET /api/me.
func (h *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	actorID := requestcontext.ActorID(ctx)
	if actorID.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}
	a, err := h.service.Get(ctx, actorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromAccount(a))
}
