// Package web serves the dashboard. Every page load is one full render
// pass: fetch current state from the engine, format it, attach action
// controls. Actions are POST handlers that issue exactly one engine call
// and redirect back to a fresh render.
package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dockdeck/dockdeck/internal/config"
	"github.com/dockdeck/dockdeck/internal/docker"
	"github.com/dockdeck/dockdeck/internal/logging"
	"github.com/dockdeck/dockdeck/internal/notify"
	"github.com/dockdeck/dockdeck/internal/state"
)

// Server holds everything a render pass needs.
type Server struct {
	cfg      *config.Config
	client   docker.Client
	snap     *state.Snapshot
	notifier *notify.MultiNotifier
	http     *http.Server
}

// New wires a Server for the given config and engine client.
func New(cfg *config.Config, client docker.Client, notifier *notify.MultiNotifier) *Server {
	s := &Server{
		cfg:      cfg,
		client:   client,
		snap:     state.New(),
		notifier: notifier,
	}
	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ListenPort),
		Handler: s.Routes(),
	}
	return s
}

// Routes builds the chi router for all dashboard pages and actions.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/", s.handleOverview)

	r.Route("/containers", func(r chi.Router) {
		r.Get("/", s.handleContainers)
		r.Get("/{id}", s.handleContainerDetail)
		r.Post("/{id}/start", s.handleContainerStart)
		r.Post("/{id}/stop", s.handleContainerStop)
		r.Post("/{id}/restart", s.handleContainerRestart)
		r.Post("/{id}/remove", s.handleContainerRemove)
		r.Post("/{id}/rename", s.handleContainerRename)
		r.Post("/{id}/config", s.handleContainerConfig)
		r.Get("/{id}/logs", s.handleContainerLogs)
		r.Get("/{id}/exec", s.handleExecForm)
		r.Post("/{id}/exec", s.handleExecRun)
		r.Get("/{id}/files", s.handleFiles)
		r.Get("/{id}/files/download", s.handleFileDownload)
		r.Post("/{id}/files/upload", s.handleFileUpload)
	})

	r.Route("/images", func(r chi.Router) {
		r.Get("/", s.handleImages)
		r.Post("/pull", s.handleImagePull)
		r.Post("/{id}/remove", s.handleImageRemove)
	})

	r.Route("/volumes", func(r chi.Router) {
		r.Get("/", s.handleVolumes)
		r.Post("/create", s.handleVolumeCreate)
		r.Post("/{name}/remove", s.handleVolumeRemove)
		r.Post("/prune", s.handleVolumePrune)
	})

	r.Route("/networks", func(r chi.Router) {
		r.Get("/", s.handleNetworks)
		r.Post("/create", s.handleNetworkCreate)
		r.Post("/{id}/remove", s.handleNetworkRemove)
		r.Post("/{id}/connect", s.handleNetworkConnect)
		r.Post("/{id}/disconnect", s.handleNetworkDisconnect)
		r.Post("/prune", s.handleNetworkPrune)
	})

	return r
}

// ListenAndServe blocks serving the dashboard until the listener fails or
// Shutdown is called.
func (s *Server) ListenAndServe() error {
	logging.Get().Info().Str("addr", s.http.Addr).Msg("dashboard listening")
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestLogger logs one line per request through the global logger.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logging.Get().Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

// callCtx derives the per-engine-call context from the request. The
// dashboard applies its own timeout so a stalled daemon stalls only this
// render, bounded.
func (s *Server) callCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), s.cfg.RequestTimeout)
}
