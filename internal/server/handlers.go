package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/dan1sh0/Baseera-AI/internal/chat"
	"github.com/dan1sh0/Baseera-AI/internal/llm"
	"github.com/dan1sh0/Baseera-AI/internal/retriever"
)

// searchResult is the wire shape of one retrieval result.
type searchResult struct {
	Kind       string  `json:"kind"`
	Citation   string  `json:"citation"`
	SourceName string  `json:"source_name"`
	Arabic     string  `json:"arabic"`
	English    string  `json:"english"`
	Grade      string  `json:"grade,omitempty"`
	Narrator   string  `json:"narrator,omitempty"`
	Score      float64 `json:"score"`
	MatchedBy  string  `json:"matched_by"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
	Count   int            `json:"count"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "query parameter q is required")
		return
	}
	mode := retriever.ParseMode(r.URL.Query().Get("type"))

	results, err := s.searcher.Retrieve(r.Context(), query, mode)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	resp := searchResponse{Results: make([]searchResult, 0, len(results)), Count: len(results)}
	for _, res := range results {
		d := res.Document
		resp.Results = append(resp.Results, searchResult{
			Kind:       string(d.Kind),
			Citation:   d.Citation(),
			SourceName: d.SourceName,
			Arabic:     d.Arabic,
			English:    d.English,
			Grade:      string(d.Grade),
			Narrator:   d.Narrator,
			Score:      res.Score,
			MatchedBy:  string(res.MatchedBy),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSurahs(w http.ResponseWriter, r *http.Request) {
	surahs, err := s.corpus.Surahs(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "listing surahs failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"surahs": surahs,
		"count":  len(surahs),
	})
}

type chatRequest struct {
	Question string `json:"question"`
}

type chatResponse struct {
	Answer    string `json:"answer,omitempty"`
	Error     string `json:"error,omitempty"`
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sessionID := r.Header.Get("X-Session-ID")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	answer, err := s.asker.Ask(r.Context(), sessionID, req.Question)
	if err != nil {
		status := answerStatusCode(err)
		writeJSON(w, status, chatResponse{
			Error:     err.Error(),
			SessionID: sessionID,
			Status:    "error",
		})
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:    answer,
		SessionID: sessionID,
		Status:    "success",
	})
}

// answerStatusCode maps the answer error taxonomy onto HTTP statuses.
func answerStatusCode(err error) int {
	switch {
	case errors.Is(err, chat.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, llm.ErrAuth):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "status": "error"})
}
