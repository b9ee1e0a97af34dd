package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jonathan/keyword-ranker/internal/ranking"
	"github.com/jonathan/keyword-ranker/internal/schemas"
)

// readBody reads the whole request body, rejecting bodies over maxBodyBytes.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &ErrBodyTooLarge{Limit: maxErr.Limit}
		}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	return body, nil
}

// handleRank returns the candidates annotated with placeholder importance and advice
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := schemas.ValidateRankRequest(body, s.defaultTopK)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := ranking.Rank(req)
	s.metrics.ObserveRanked(len(resp.RankedImportant))
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleAnalyze scores a resume against a job description
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	req, err := schemas.ValidateAnalyzeRequest(body)
	if err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			err = &ErrInvalidBody{Err: validationErr}
		}
		s.writeError(w, r, err)
		return
	}

	resp := s.analyzer.Analyze(r.Context(), req)
	s.metrics.IncAnalyzeLLMStatus(string(resp.LLMStatus))
	s.jsonResponse(w, http.StatusOK, resp)
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleNotFound answers unrouted paths with a JSON 404
func (s *Server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusNotFound, map[string]any{
		"error":   codeNotFound,
		"message": "not found",
	})
}

// methodNotAllowed answers a known path requested with the wrong method
func (s *Server) methodNotAllowed(method string) http.HandlerFunc {
	allow := method
	if method == http.MethodGet {
		allow += ", " + http.MethodHead
	}
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Allow", allow)
		s.jsonResponse(w, http.StatusMethodNotAllowed, map[string]any{
			"error":   codeMethodNotAllowed,
			"message": fmt.Sprintf("method %s not allowed", r.Method),
		})
	}
}
