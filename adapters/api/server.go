package api

import (
	"net/http"

	"modelgate/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Server exposes the governance workflow over HTTP for reporting and
// workflow collaborators
type Server struct {
	router  *chi.Mux
	service *app.ValidationService
	logger  *zap.Logger
}

// NewServer creates the governance API server
func NewServer(service *app.ValidationService, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		router:  chi.NewRouter(),
		service: service,
		logger:  logger,
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/validations", s.handleValidate)
		r.Post("/comparisons", s.handleCompare)
		r.Get("/snapshots/{snapshotID}", s.handleGetSnapshot)
		r.Get("/models/{modelID}/snapshots/latest", s.handleLatestSnapshot)
	})
}
