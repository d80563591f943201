package api

import (
	"net/http"
	"strconv"
)

// handleListEvaluations returns stored evaluations, paginated with
// ?skip and ?limit query parameters.
func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_skip", err)
		return
	}
	limit, err := queryInt(r, "limit", defaultPageLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_limit", err)
		return
	}

	if skip < 0 || limit < 0 {
		writeError(w, http.StatusBadRequest, "invalid_pagination", NewKind("skip and limit must be non-negative", ErrBadRequest))
		return
	}
	if limit > s.maxPageLimit {
		limit = s.maxPageLimit
	}

	rows, err := s.deps.ListEvaluations(r.Context(), skip, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal", err)
		return
	}

	writeJSON(w, http.StatusOK, rows)
}

func queryInt(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapKind("parse "+key, ErrBadRequest, err)
	}
	return v, nil
}
