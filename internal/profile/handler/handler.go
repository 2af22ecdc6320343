// Package handler exposes organization and donor profile endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"matchport/internal/profile"
	id "matchport/pkg/domain"
	dErrors "matchport/pkg/domain-errors"
	"matchport/pkg/platform/httputil"
	pkgstrings "matchport/pkg/platform/strings"
	"matchport/pkg/requestcontext"
)

type Handler struct {
	service *profile.Service
	logger  *slog.Logger
}

func New(svc *profile.Service, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

// RegisterPublic mounts the organization directory.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Get("/organizations", h.HandleListOrganizations)
}

// RegisterAuthed mounts the profile editing endpoints.
func (h *Handler) RegisterAuthed(r chi.Router) {
	r.Get("/profile/organization", h.HandleGetOrganization)
	r.Put("/profile/organization", h.HandleUpsertOrganization)
	r.Post("/profile/organization/logo", h.HandleUploadLogo)
	r.Get("/profile/donor", h.HandleGetDonorProfile)
	r.Put("/profile/donor", h.HandleUpsertDonorProfile)
	r.Post("/profile/donor/picture", h.HandleUploadPicture)
}

// HandleListOrganizations handles GET /organizations.
func (h *Handler) HandleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := h.service.Organizations(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganizations(orgs))
}

// HandleGetOrganization handles GET /api/profile/organization.
func (h *Handler) HandleGetOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	org, err := h.service.Organization(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}

// HandleUpsertOrganization handles PUT /api/profile/organization.
func (h *Handler) HandleUpsertOrganization(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[OrgRequest](w, r, h.logger)
	if !ok {
		return
	}
	causeIDs, err := parseCategoryIDs(req.CauseAreaIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	org, err := h.service.UpsertOrganization(ctx, requestcontext.ActorID(ctx), profile.OrgInput{
		Name:      req.Name,
		Website:   req.Website,
		Mission:   req.Mission,
		Email:     req.Email,
		Phone:     req.Phone,
		Address:   req.Address,
		Zipcode:   req.Zipcode,
		EIN:       req.EIN,
		LogoEmoji: req.LogoEmoji,
		CauseIDs:  causeIDs,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}

const maxUploadMemory = 4 << 20

// HandleUploadLogo handles POST /api/profile/organization/logo as a
// multipart form with a "logo" file field.
func (h *Handler) HandleUploadLogo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form upload"))
		return
	}
	file, header, err := r.FormFile("logo")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "logo file is required"))
		return
	}
	defer file.Close()

	org, err := h.service.UploadLogo(ctx, requestcontext.ActorID(ctx),
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromOrganization(org))
}

// HandleUploadPicture handles POST /api/profile/donor/picture as a
// multipart form with a "picture" file field.
func (h *Handler) HandleUploadPicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "expected a multipart form upload"))
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "picture file is required"))
		return
	}
	defer file.Close()

	dp, err := h.service.UploadPicture(ctx, requestcontext.ActorID(ctx),
		header.Filename, header.Header.Get("Content-Type"), header.Size, file)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDonorProfile(dp))
}

// HandleGetDonorProfile handles GET /api/profile/donor.
func (h *Handler) HandleGetDonorProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dp, err := h.service.DonorProfileFor(ctx, requestcontext.ActorID(ctx))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDonorProfile(dp))
}

// HandleUpsertDonorProfile handles PUT /api/profile/donor.
func (h *Handler) HandleUpsertDonorProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[DonorRequest](w, r, h.logger)
	if !ok {
		return
	}
	causeIDs, err := parseCategoryIDs(req.CauseAreaIDs)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	dp, err := h.service.UpsertDonorProfile(ctx, requestcontext.ActorID(ctx), profile.DonorInput{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		MaxPerRequestCents: req.MaxPerRequestCents,
		ServiceAreaZipcode: req.ServiceAreaZipcode,
		CauseIDs:           causeIDs,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromDonorProfile(dp))
}

func parseCategoryIDs(raw []string) ([]id.CategoryID, error) {
	raw = pkgstrings.DedupeAndTrim(raw)
	if len(raw) == 0 {
		return nil, nil
	}
	out := make([]id.CategoryID, 0, len(raw))
	for _, s := range raw {
		cid, err := id.ParseCategoryID(s)
		if err != nil {
			return nil, err
		}
		out = append(out, cid)
	}
	return out, nil
}
