package api

import (
	"net/http"

	json "github.com/goccy/go-json"
)

// FrameHandler serves the current render snapshot.
type FrameHandler struct {
	deps Dependencies
}

// NewFrameHandler creates a new frame handler.
func NewFrameHandler(deps Dependencies) *FrameHandler {
	return &FrameHandler{deps: deps}
}

// HandleGetFrame handles GET /frame requests.
func (h *FrameHandler) HandleGetFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.deps.Frame()); err != nil {
		http.Error(w, "encode frame", http.StatusInternalServerError)
	}
}
