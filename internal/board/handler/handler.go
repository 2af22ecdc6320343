// Package handler exposes the public, unauthenticated read side: the
// request board, request details, and the reference lists.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"matchport/internal/board"
	"matchport/internal/catalog"
	"matchport/internal/request"
	id "matchport/pkg/domain"
	"matchport/pkg/platform/httputil"
)

// CatalogStore lists the reference categories for the board's filters.
type CatalogStore interface {
	ListActive(ctx context.Context, kind catalog.Kind) ([]*catalog.Category, error)
}

type Handler struct {
	board   *board.Service
	catalog CatalogStore
	logger  *slog.Logger
}

func New(boardSvc *board.Service, catalogStore CatalogStore, logger *slog.Logger) *Handler {
	return &Handler{board: boardSvc, catalog: catalogStore, logger: logger}
}

// RegisterPublic mounts the board endpoints.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/requests", h.HandleBrowse)
	r.Get("/requests/{requestID}", h.HandleDetail)
	r.Get("/cause-areas", h.HandleCauseAreas)
}

// HandleBrowse handles GET /requests.
func (h *Handler) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	params := r.URL.Query()

	q := board.Query{Search: params.Get("q")}

	if s := params.Get("status"); s != "" {
		status, err := request.ParseStatus(s)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.Status = status
	}
	if s := params.Get("cause"); s != "" {
		causeID, err := id.ParseCategoryID(s)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		q.CauseAreaID = causeID
	}
	sortBy, err := board.ParseSort(params.Get("sort"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	q.Sort = sortBy
	if s := params.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err == nil && page > 0 {
			q.Page = page
		}
	}

	page, err := h.board.Browse(ctx, q)
	if err != nil {
		h.logger.ErrorContext(ctx, "board browse failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPage(page))
}

// HandleDetail handles GET /requests/{requestID}.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID, err := id.ParseRequestID(chi.URLParam(r, "requestID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	detail, err := h.board.Detail(ctx, requestID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDetail(detail))
}

// HandleCauseAreas handles GET /cause-areas.
func (h *Handler) HandleCauseAreas(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.catalog.ListActive(ctx, catalog.KindCauseArea)
	if err != nil {
		h.logger.ErrorContext(ctx, "cause area listing failed", "error", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromCategories(list))
}
