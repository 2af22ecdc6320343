// Package handler exposes the admin surface: the vetting queue, request
// moderation (deny/approve/delete, singly and in bulk), and the dashboard.
// Role enforcement lives in the services; these handlers just route.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	accounthandler "matchport/internal/account/handler"
	accountservice "matchport/internal/account/service"
	"matchport/internal/board"
	requesthandler "matchport/internal/request/handler"
	requestservice "matchport/internal/request/service"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/httputil"
	"matchport/pkg/requestcontext"
)

type Handler struct {
	accounts *accountservice.Service
	requests *requestservice.Service
	board    *board.Service
	logger   *slog.Logger
}

func New(accounts *accountservice.Service, requests *requestservice.Service, boardSvc *board.Service, logger *slog.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		requests: requests,
		board:    boardSvc,
		logger:   logger,
	}
}

// RegisterAuthed mounts the admin endpoints under /admin.
func (h *Handler) RegisterAuthed(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/dashboard", h.HandleDashboard)
		r.Get("/vetting", h.HandleVettingQueue)
		r.Post("/accounts/{accountID}/vet", h.HandleVetAccount)
		r.Get("/accounts/{accountID}/vetting-events", h.HandleVettingEvents)
		r.Post("/requests/{requestID}/deny", h.HandleDeny)
		r.Post("/requests/{requestID}/approve", h.HandleApprove)
		r.Delete("/requests/{requestID}", h.HandleDelete)
		r.Post("/requests/bulk", h.HandleBulk)
	})
}

// HandleDashboard handles GET /api/admin/dashboard.
func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.accounts.EnsureAdmin(ctx, requestcontext.ActorID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	d, err := h.board.Dashboard(ctx)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, d)
}

// HandleVettingQueue handles GET /api/admin/vetting.
func (h *Handler) HandleVettingQueue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	queue, err := h.accounts.VettingQueue(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*accounthandler.AccountResponse, 0, len(queue))
	for _, a := range queue {
		out = append(out, accounthandler.FromAccount(a))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// VetRequest is the body of POST /api/admin/accounts/{id}/vet.
type VetRequest struct {
	Vetted bool   `json:"vetted"`
	Note   string `json:"note,omitempty"`
}

// HandleVetAccount handles POST /api/admin/accounts/{accountID}/vet.
func (h *Handler) HandleVetAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[VetRequest](w, r, h.logger)
	if !ok {
		return
	}

	updated, err := h.accounts.SetVetting(ctx, requestcontext.ActorID(ctx), accountID, req.Vetted, req.Note)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "vetting decision recorded",
		"request_id", requestcontext.RequestID(ctx),
		"account_id", accountID,
		"vetted", req.Vetted,
	)
	httputil.WriteJSON(w, http.StatusOK, accounthandler.FromAccount(updated))
}

// VettingEventResponse is one vetting ledger row.
type VettingEventResponse struct {
	AdminID   string `json:"admin_id"`
	Vetted    bool   `json:"vetted"`
	Note      string `json:"note,omitempty"`
	Timestamp string `json:"timestamp"`
}

// HandleVettingEvents handles GET /api/admin/accounts/{accountID}/vetting-events.
func (h *Handler) HandleVettingEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID, err := id.ParseAccountID(chi.URLParam(r, "accountID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	events, err := h.accounts.VettingHistory(ctx, requestcontext.ActorID(ctx), accountID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]*VettingEventResponse, 0, len(events))
	for _, ev := range events {
		out = append(out, &VettingEventResponse{
			AdminID:   ev.AdminID.String(),
			Vetted:    ev.Vetted,
			Note:      ev.Note,
			Timestamp: ev.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// DenyRequest is the body of POST /api/admin/requests/{id}/deny.
type DenyRequest struct {
	Reason string `json:"reason"`
}

func (r *DenyRequest) Validate() error {
	if r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "a denial reason is required")
	}
	return nil
}

// HandleDeny handles POST /api/admin/requests/{requestID}/deny.
func (h *Handler) HandleDeny(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[DenyRequest](w, r, h.logger)
	if !ok {
		return
	}

	denied, err := h.requests.Deny(ctx, requestcontext.ActorID(ctx), requestID, req.Reason)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.board.InvalidatePages(ctx)
	httputil.WriteJSON(w, http.StatusOK, requesthandler.FromRequest(denied))
}

// HandleApprove handles POST /api/admin/requests/{requestID}/approve.
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	approved, err := h.requests.Approve(ctx, requestcontext.ActorID(ctx), requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.board.InvalidatePages(ctx)
	httputil.WriteJSON(w, http.StatusOK, requesthandler.FromRequest(approved))
}

// HandleDelete handles DELETE /api/admin/requests/{requestID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.requests.AdminDelete(ctx, requestcontext.ActorID(ctx), requestID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.board.InvalidatePages(ctx)
	w.WriteHeader(http.StatusNoContent)
}

// BulkRequest is the body of POST /api/admin/requests/bulk.
type BulkRequest struct {
	Action string   `json:"action"`
	IDs    []string `json:"ids"`
	Reason string   `json:"reason,omitempty"`
}

func (r *BulkRequest) Validate() error {
	switch r.Action {
	case "deny", "approve", "delete":
	default:
		return dErrors.New(dErrors.CodeValidation, "action must be deny, approve, or delete")
	}
	if len(r.IDs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "at least one request ID is required")
	}
	if r.Action == "deny" && r.Reason == "" {
		return dErrors.New(dErrors.CodeValidation, "a denial reason is required")
	}
	return nil
}

// BulkResponse reports per-request outcomes.
type BulkResponse struct {
	Succeeded []string          `json:"succeeded"`
	Failed    map[string]string `json:"failed,omitempty"`
}

// HandleBulk handles POST /api/admin/requests/bulk.
func (h *Handler) HandleBulk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.accounts.EnsureAdmin(ctx, requestcontext.ActorID(ctx)); err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, ok := httputil.DecodeAndPrepare[BulkRequest](w, r, h.logger)
	if !ok {
		return
	}

	ids := make([]id.RequestID, 0, len(req.IDs))
	for _, s := range req.IDs {
		requestID, err := id.ParseRequestID(s)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		ids = append(ids, requestID)
	}

	adminID := requestcontext.ActorID(ctx)
	var out *requestservice.BulkOutcome
	switch req.Action {
	case "deny":
		out = h.requests.DenyMany(ctx, adminID, ids, req.Reason)
	case "approve":
		out = h.requests.ApproveMany(ctx, adminID, ids)
	case "delete":
		out = h.requests.DeleteMany(ctx, adminID, ids)
	}
	h.board.InvalidatePages(ctx)

	resp := BulkResponse{Succeeded: make([]string, 0, len(out.Succeeded))}
	for _, requestID := range out.Succeeded {
		resp.Succeeded = append(resp.Succeeded, requestID.String())
	}
	if len(out.Failed) > 0 {
		resp.Failed = make(map[string]string, len(out.Failed))
		for requestID, msg := range out.Failed {
			resp.Failed[requestID.String()] = msg
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
