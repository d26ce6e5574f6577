package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/floatchat/floatchat/internal/answer"
	"github.com/floatchat/floatchat/internal/cache"
	"github.com/floatchat/floatchat/internal/database"
	"github.com/floatchat/floatchat/internal/ingestion"
	"github.com/floatchat/floatchat/pkg/config"
)

// Server exposes the chat, data, visualization and admin HTTP APIs.
type Server struct {
	db         *database.DB
	cache      *cache.Cache
	pipeline   *answer.Pipeline
	syncer     *ingestion.Syncer // nil when ingestion is not wired into this process
	llmEnabled bool
	log        zerolog.Logger
	httpSrv    *http.Server
}

// New creates the HTTP server. syncer may be nil; the manual ingest endpoint
// then reports unavailable.
func New(cfg config.HTTPConfig, db *database.DB, c *cache.Cache, pipeline *answer.Pipeline, syncer *ingestion.Syncer, llmEnabled bool, logger zerolog.Logger) *Server {
	s := &Server{
		db:         db,
		cache:      c,
		pipeline:   pipeline,
		syncer:     syncer,
		llmEnabled: llmEnabled,
		log:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat/query", s.handleChatQuery)
	mux.HandleFunc("POST /api/chat/sessions", s.handleCreateSession)
	mux.HandleFunc("GET /api/chat/sessions/{id}", s.handleGetSession)
	mux.HandleFunc("GET /api/chat/sessions/{id}/messages", s.handleSessionMessages)
	mux.HandleFunc("GET /api/data/floats", s.handleListFloats)
	mux.HandleFunc("GET /api/data/floats/{id}", s.handleGetFloat)
	mux.HandleFunc("GET /api/data/statistics", s.handleStatistics)
	mux.HandleFunc("GET /api/viz/map", s.handleVizMap)
	mux.HandleFunc("GET /api/viz/timeseries", s.handleVizTimeseries)
	mux.HandleFunc("POST /api/admin/ingest", s.handleAdminIngest)
	mux.HandleFunc("GET /api/admin/health", s.handleHealth)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.logRequests(mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Start begins serving. Blocks until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.httpSrv.Addr).Msg("HTTP server listening")
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryFloat(r *http.Request, name string) *float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}
