package api

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// QueryHandler accepts the free-text name the engine should resolve. This
// is the ingestion seam the telemetry decoder would normally drive.
type QueryHandler struct {
	deps Dependencies
}

// NewQueryHandler creates a new query handler.
func NewQueryHandler(deps Dependencies) *QueryHandler {
	return &QueryHandler{deps: deps}
}

// queryRequest mirrors the PUT /query body.
type queryRequest struct {
	Query string `json:"query"`
}

// HandleQuery handles PUT /query requests. Re-sending an unchanged query
// is a no-op inside the engine.
func (h *QueryHandler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body; expected {\"query\": \"...\"}", http.StatusBadRequest)
		return
	}
	h.deps.SetQuery(req.Query)
	w.WriteHeader(http.StatusNoContent)
}
