// Package api serves a read-only HTTP view of the controller state. It
// never accepts commands: the TCP command channel stays the only writer.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/larsks/ledremote/internal/controller"
	"github.com/larsks/ledremote/internal/httpserver"
	"github.com/rs/zerolog/log"
)

// StateSource is the part of the controller the API reads.
type StateSource interface {
	Snapshot() controller.Snapshot
}

// Server represents the API server.
type Server struct {
	listenAddr string
	source     StateSource
	router     *chi.Mux
	server     *http.Server
}

// NewServer creates a status server for source. allowedOrigins configures
// CORS; an empty list allows any origin.
func NewServer(listenAddr string, source StateSource, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s := &Server{
		listenAddr: listenAddr,
		source:     source,
		router:     chi.NewRouter(),
	}

	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		MaxAge:         300,
	}))

	s.router.Get("/healthz", s.healthHandler)
	s.router.Get("/status", s.statusHandler)
	s.router.Get("/output/{name}", s.outputHandler)

	return s
}

// ServeHTTP lets the server be used directly as an http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the HTTP server until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              s.listenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Info().Str("address", s.listenAddr).Msg("starting status API")
	return httpserver.ListenAndServe(ctx, s.server)
}
