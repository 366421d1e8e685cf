package api

import (
	"log/slog"
	"net/http"

	"github.com/BrainDriveAI/document-processing-service/internal/config"
	"github.com/BrainDriveAI/document-processing-service/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for the document processing service.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.cfg.DisableAuth, s.log))

		r.Post("/api/v1/documents/process", s.handleProcess)
		r.Get("/api/v1/documents/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/v1/documents/jobs/{jobID}/chunks", s.handleJobChunks)
		r.Delete("/api/v1/documents/{docID}", s.handleDeleteDocument)

		r.Post("/api/v1/chunk", s.handleChunk)
		r.Get("/api/v1/stats", s.handleStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
