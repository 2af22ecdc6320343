// Package handler wires the request lifecycle commands to HTTP. Every
// endpoint here requires a bearer token; the public read side lives in the
// board handler.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"matchport/internal/request"
	"matchport/internal/request/service"
	id "matchport/pkg/domain"
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

// RegisterAuthed mounts the lifecycle endpoints on an authenticated router.
func (h *Handler) RegisterAuthed(r chi.Router) {
	r.Post("/requests", h.HandleCreate)
	r.Get("/requests/mine", h.HandleMine)
	r.Put("/requests/{requestID}", h.HandleUpdate)
	r.Delete("/requests/{requestID}", h.HandleDelete)
	r.Post("/claim/{requestID}", h.HandleClaim)
	r.Post("/fulfill/{requestID}", h.HandleFulfill)
	r.Post("/unclaim/{requestID}", h.HandleUnclaim)
	r.Post("/requests/{requestID}/note", h.HandleNote)
	r.Get("/requests/{requestID}/fulfillment", h.HandleFulfillment)
}

func (h *Handler) requestID(w http.ResponseWriter, r *http.Request) (id.RequestID, bool) {
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.RequestID{}, false
	}
	return requestID, true
}

// HandleCreate handles POST /api/requests.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateRequestRequest](w, r, h.logger)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	created, err := h.service.Create(ctx, requestcontext.ActorID(ctx), in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "request created",
		"request_id", requestcontext.RequestID(ctx),
		"id", created.ID,
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRequest(created))
}

// HandleMine handles GET /api/requests/mine.
func (h *Handler) HandleMine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.service.Mine(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequests(list))
}

// HandleUpdate handles PUT /api/requests/{requestID}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[CreateRequestRequest](w, r, h.logger)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	updated, err := h.service.Update(ctx, requestcontext.ActorID(ctx), requestID, request.UpdateInput(in))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(updated))
}

// HandleDelete handles DELETE /api/requests/{requestID}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(ctx, requestcontext.ActorID(ctx), requestID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleClaim handles POST /api/claim/{requestID}.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ClaimRequest](w, r, h.logger)
	if !ok {
		return
	}

	claimed, err := h.service.Claim(ctx, requestcontext.ActorID(ctx), requestID, req.DonorNote)
	if err != nil {
		h.logger.InfoContext(ctx, "claim rejected",
			"request_id", requestcontext.RequestID(ctx),
			"id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ClaimResponse{Success: true, ClaimedAt: claimed.ClaimedAt})
}

// HandleFulfill handles POST /api/fulfill/{requestID}.
func (h *Handler) HandleFulfill(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[FulfillRequest](w, r, h.logger)
	if !ok {
		return
	}
	in, err := req.ToInput()
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	fulfilled, _, err := h.service.Fulfill(ctx, requestcontext.ActorID(ctx), requestID, in)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FulfillResponse{Success: true, FulfilledAt: fulfilled.FulfilledAt})
}

// HandleUnclaim handles POST /api/unclaim/{requestID}.
func (h *Handler) HandleUnclaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	if _, err := h.service.Release(ctx, requestcontext.ActorID(ctx), requestID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, ReleaseResponse{Success: true})
}

// HandleNote handles POST /api/requests/{requestID}/note.
func (h *Handler) HandleNote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[NoteRequest](w, r, h.logger)
	if !ok {
		return
	}
	updated, err := h.service.AddDonorNote(ctx, requestcontext.ActorID(ctx), requestID, req.Note)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRequest(updated))
}

// HandleFulfillment handles GET /api/requests/{requestID}/fulfillment.
func (h *Handler) HandleFulfillment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, ok := h.requestID(w, r)
	if !ok {
		return
	}
	record, err := h.service.Fulfillment(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromFulfillment(record))
}
