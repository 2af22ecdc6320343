// Package httpapi assembles the service router. Handlers register their own
// routes; this package only decides which middleware wraps which route group.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthandler "matchport/internal/account/handler"
	adminhandler "matchport/internal/admin/handler"
	boardhandler "matchport/internal/board/handler"
	notifyhandler "matchport/internal/notify/handler"
	"matchport/internal/platform/middleware"
	profilehandler "matchport/internal/profile/handler"
	requesthandler "matchport/internal/request/handler"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router needs. Handlers are required; Health
// and UploadDir may be zero when the corresponding feature is disabled.
type Deps struct {
	Accounts      *accounthandler.Handler
	Requests      *requesthandler.Handler
	Board         *boardhandler.Handler
	Profiles      *profilehandler.Handler
	Notifications *notifyhandler.Handler
	Admin         *adminhandler.Handler

	Auth   middleware.JWTValidator
	Logger *slog.Logger

	// Health reports backend connectivity for /healthz. Nil means the
	// process being up is the only signal.
	Health func(ctx context.Context) error

	// UploadDir, when set, is served read-only under /uploads/.
	UploadDir string
}

// NewRouter builds the full route tree. Public reads (the board, the cause
// area catalog, registration and login) sit outside the auth gate; every
// mutation of accounts, profiles or requests requires a bearer token.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Timeout(requestTimeout))

	r.Get("/healthz", handleHealth(d.Health))
	r.Handle("/metrics", promhttp.Handler())

	if d.UploadDir != "" {
		fs := http.FileServer(http.Dir(d.UploadDir))
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", fs))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		d.Accounts.RegisterPublic(r)
		d.Board.RegisterPublic(r)
		d.Profiles.RegisterPublic(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(d.Auth, d.Logger))

			d.Accounts.RegisterAuthed(r)
			d.Requests.RegisterAuthed(r)
			d.Profiles.RegisterAuthed(r)
			d.Notifications.RegisterAuthed(r)
			d.Admin.RegisterAuthed(r)
		})
	})

	return r
}

func handleHealth(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r.Context()); err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
