package server

import (
	"net/http"
	"time"
)

// handleAdminIngest triggers one synchronous fetch-and-publish cycle.
func (s *Server) handleAdminIngest(w http.ResponseWriter, r *http.Request) {
	if s.syncer == nil {
		s.writeError(w, http.StatusServiceUnavailable, "ingestion is not available on this instance")
		return
	}

	published, err := s.syncer.SyncOnce(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("manual ingest failed")
		s.writeError(w, http.StatusBadGateway, "ingestion failed: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"published": published,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	overall := "ok"
	dbStatus := "ok"
	status := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		overall = "degraded"
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, map[string]any{
		"status":      overall,
		"database":    dbStatus,
		"llm_enabled": s.llmEnabled,
		"time":        time.Now().UTC().Format(time.RFC3339),
	})
}
