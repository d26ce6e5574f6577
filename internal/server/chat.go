package server

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/floatchat/floatchat/internal/answer"
	"github.com/floatchat/floatchat/internal/cache"
	"github.com/floatchat/floatchat/internal/database"
	"github.com/floatchat/floatchat/internal/query"
)

// Aggregate answers are cached only when the pipeline is confident; nearest
// and radius answers depend on the live float set and are never cached.
const answerCacheMinConfidence = 0.8

type chatQueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
}

type chatQueryResponse struct {
	answer.Envelope
	SessionID string `json:"session_id,omitempty"`
}

func (s *Server) handleChatQuery(w http.ResponseWriter, r *http.Request) {
	var req chatQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	env := s.answerWithCache(r.Context(), req)

	if req.SessionID != "" {
		s.recordExchange(r.Context(), req, env)
	}

	s.writeJSON(w, http.StatusOK, chatQueryResponse{Envelope: *env, SessionID: req.SessionID})
}

func (s *Server) answerWithCache(ctx context.Context, req chatQueryRequest) *answer.Envelope {
	key := cache.AnswerKey(req.Query)
	cacheable := query.Classify(req.Query).Kind == query.IntentAggregate

	if cacheable {
		var cached answer.Envelope
		if s.cache.GetJSON(ctx, key, &cached) {
			s.log.Debug().Str("key", key).Msg("answer cache hit")
			return &cached
		}
	}

	env := s.pipeline.Answer(ctx, req.Query, req.UserID)

	if cacheable && env.Confidence >= answerCacheMinConfidence {
		s.cache.SetJSON(ctx, key, env, cache.AnswerTTL)
	}
	return env
}

// recordExchange logs the user question and assistant answer against the
// session. Failures are logged, never surfaced: chat history is best effort.
func (s *Server) recordExchange(ctx context.Context, req chatQueryRequest, env *answer.Envelope) {
	session, err := s.db.GetChatSession(ctx, req.SessionID)
	if err != nil || session == nil {
		s.log.Warn().Err(err).Str("session_id", req.SessionID).Msg("session lookup failed, skipping history")
		return
	}

	userMsg := &database.ChatMessage{
		SessionID:   req.SessionID,
		MessageType: database.MessageTypeUser,
		Content:     req.Query,
	}
	if err := s.db.AddChatMessage(ctx, userMsg); err != nil {
		s.log.Warn().Err(err).Msg("failed to record user message")
		return
	}

	assistantMsg := &database.ChatMessage{
		SessionID:   req.SessionID,
		MessageType: database.MessageTypeAssistant,
		Content:     env.Response,
		DataPoints:  &env.DataPoints,
		Confidence:  &env.Confidence,
	}
	if err := s.db.AddChatMessage(ctx, assistantMsg); err != nil {
		s.log.Warn().Err(err).Msg("failed to record assistant message")
	}
}

type createSessionRequest struct {
	UserID string `json:"user_id,omitempty"`
	Title  string `json:"title,omitempty"`
}

type sessionResponse struct {
	SessionID  string  `json:"session_id"`
	UserID     *string `json:"user_id"`
	Title      *string `json:"title"`
	QueryCount int     `json:"query_count"`
	LastQuery  *string `json:"last_query"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toSessionResponse(s *database.ChatSession) sessionResponse {
	return sessionResponse{
		SessionID:  s.SessionID,
		UserID:     s.UserID,
		Title:      s.Title,
		QueryCount: s.QueryCount,
		LastQuery:  s.LastQuery,
		CreatedAt:  s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil {
		// Body is optional for session creation
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	session := &database.ChatSession{SessionID: uuid.New().String()}
	if req.UserID != "" {
		session.UserID = &req.UserID
	}
	if req.Title != "" {
		session.Title = &req.Title
	}

	if err := s.db.CreateChatSession(r.Context(), session); err != nil {
		s.log.Error().Err(err).Msg("failed to create session")
		s.writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}

	created, err := s.db.GetChatSession(r.Context(), session.SessionID)
	if err != nil || created == nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load created session")
		return
	}
	s.writeJSON(w, http.StatusCreated, toSessionResponse(created))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := s.db.GetChatSession(r.Context(), r.PathValue("id"))
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get session")
		s.writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if session == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.writeJSON(w, http.StatusOK, toSessionResponse(session))
}

type messageResponse struct {
	ID          int64    `json:"id"`
	MessageType string   `json:"message_type"`
	Content     string   `json:"content"`
	DataPoints  *int     `json:"data_points"`
	Confidence  *float64 `json:"confidence"`
	CreatedAt   string   `json:"created_at"`
}

func (s *Server) handleSessionMessages(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	limit := queryInt(r, "limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	session, err := s.db.GetChatSession(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to get session")
		return
	}
	if session == nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	messages, err := s.db.GetSessionMessages(r.Context(), sessionID, limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to get session messages")
		s.writeError(w, http.StatusInternalServerError, "failed to get messages")
		return
	}

	out := make([]messageResponse, 0, len(messages))
	for _, m := range messages {
		out = append(out, messageResponse{
			ID:          m.ID,
			MessageType: m.MessageType,
			Content:     m.Content,
			DataPoints:  m.DataPoints,
			Confidence:  m.Confidence,
			CreatedAt:   m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   out,
	})
}
