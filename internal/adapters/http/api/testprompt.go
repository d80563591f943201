package api

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"strings"

	"github.com/okian/caliper/internal/domain/types"
)

type testPromptRequest struct {
	Prompt string            `json:"prompt"`
	Model  string            `json:"model"`
	Pairs  []types.ParamPair `json:"param_pairs"`
}

type testPromptResponse struct {
	Prompt  string                   `json:"prompt"`
	Model   string                   `json:"model"`
	Results []types.GenerationResult `json:"results"`
}

// handleTestPrompt runs one generation per parameter pair and returns the
// scored results. Individual pair failures are reported inline so one bad
// generation does not fail the whole batch.
func (s *Server) handleTestPrompt(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	var req testPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", WrapKind("decode request", ErrBadRequest, err))
		return
	}

	if err := validateTestPrompt(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err)
		return
	}

	results, err := s.deps.RunPrompt(r.Context(), req.Prompt, req.Model, req.Pairs)
	if err != nil {
		if errors.Is(err, ErrBackpressure) {
			writeError(w, http.StatusServiceUnavailable, "overloaded", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusOK, testPromptResponse{
		Prompt:  req.Prompt,
		Model:   req.Model,
		Results: results,
	})
}

func validateTestPrompt(req testPromptRequest) error {
	if strings.TrimSpace(req.Prompt) == "" {
		return NewKind("prompt must not be blank", ErrBadRequest)
	}
	if strings.TrimSpace(req.Model) == "" {
		return NewKind("model must not be blank", ErrBadRequest)
	}
	if len(req.Pairs) == 0 {
		return NewKind("at least one parameter pair is required", ErrBadRequest)
	}
	for _, p := range req.Pairs {
		if !isFinite(p.Temperature) || !isFinite(p.TopP) {
			return NewKind("temperature and top_p must be finite numbers", ErrBadRequest)
		}
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
