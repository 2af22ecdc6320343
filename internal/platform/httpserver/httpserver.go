// Package httpserver builds the API's http.Server with its timeout policy
// in one place.
package httpserver

import (
	"net/http"
	"time"
)

// New returns a server whose write timeout sits above the 30s handler
// timeout applied by the router, so the middleware's 504 reaches the client
// before the connection is cut.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      35 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
}
