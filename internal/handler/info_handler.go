package handler

import (
	"net/http"
)

// DependencyCheck reports whether an external dependency is usable.
type DependencyCheck func() bool

// InfoHandler serves the service description and liveness endpoints.
type InfoHandler struct {
	frontendURL string
	checks      map[string]DependencyCheck
}

func NewInfoHandler(frontendURL string, checks map[string]DependencyCheck) *InfoHandler {
	return &InfoHandler{frontendURL: frontendURL, checks: checks}
}

type infoResponse struct {
	Message      string            `json:"message"`
	Status       string            `json:"status"`
	Frontend     string            `json:"frontend"`
	Endpoints    map[string]string `json:"endpoints"`
	Dependencies map[string]bool   `json:"dependencies"`
}

var endpointDescriptions = map[string]string{
	"POST /api/convert":       "Convert document format",
	"POST /api/save":          "Save document",
	"GET /api/list":           "List all documents",
	"GET /api/open/:filename": "Open a document",
	"POST /api/upload":        "Upload and convert a document",
	"POST /api/export/pdf":    "Export document as PDF",
	"GET /app/":               "Editor UI",
}

// Info handles GET /.
func (h *InfoHandler) Info(w http.ResponseWriter, r *http.Request) {
	deps := make(map[string]bool, len(h.checks))
	for name, check := range h.checks {
		deps[name] = check()
	}
	writeJSON(w, http.StatusOK, infoResponse{
		Message:      "Open Office Web API Server",
		Status:       "running",
		Frontend:     h.frontendURL,
		Endpoints:    endpointDescriptions,
		Dependencies: deps,
	})
}

// Health handles GET /health.
func (h *InfoHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
