package api

import (
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/darkone83/insignia-board/internal/domain/resolve"
)

// DiagnosticsHandler serves the near-miss list from the last resolution.
type DiagnosticsHandler struct {
	deps Dependencies
}

// NewDiagnosticsHandler creates a new diagnostics handler.
func NewDiagnosticsHandler(deps Dependencies) *DiagnosticsHandler {
	return &DiagnosticsHandler{deps: deps}
}

// HandleGetDiagnostics handles GET /diagnostics requests.
func (h *DiagnosticsHandler) HandleGetDiagnostics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	diags := h.deps.Diagnostics()
	if diags == nil {
		diags = []resolve.Diagnostic{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(diags); err != nil {
		http.Error(w, "encode diagnostics", http.StatusInternalServerError)
	}
}
