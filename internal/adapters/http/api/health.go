package api

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
}

// handleHealth reports liveness. It carries no dependency checks so load
// balancers can poll it cheaply.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
		return
	}

	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
