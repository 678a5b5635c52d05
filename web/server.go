// Package web serves the PropertyEdge dashboard, analysis pages and the
// JSON/markdown exports.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"propertyedge/utils"
)

type Server struct {
	httpServer *http.Server
	logger     *utils.Logger
}

// NewRouter mounts every route on a chi router.
func NewRouter(h *Handler, logger *utils.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(LoggerMiddleware(logger), middleware.Recoverer)

	r.Get("/", h.Dashboard)
	r.Post("/analyze", h.Analyze)
	r.Get("/healthz", h.Health)

	r.Route("/a/{id}", func(r chi.Router) {
		r.Get("/", h.AnalysisPage)
		r.Get("/json", h.AnalysisJSON)
		r.Get("/md", h.AnalysisMarkdown)
	})

	return r
}

func NewServer(addr string, handler http.Handler, logger *utils.Logger) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Start blocks serving requests until Stop is called.
func (s *Server) Start() error {
	s.logger.Info("[web] Listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("[web] Shutting down")
	return s.httpServer.Shutdown(ctx)
}
