package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lexforge/lexforge/internal/domain/query"
	"github.com/lexforge/lexforge/internal/middleware"
	"github.com/lexforge/lexforge/internal/port/audit"
	"github.com/lexforge/lexforge/internal/service"
)

// Handlers bundles the HTTP handlers and their collaborators.
type Handlers struct {
	orchestrator *service.OrchestratorService
	sink         audit.Sink
	health       func() map[string]string
}

// NewHandlers creates the handler set. health may be nil; it reports
// per-component status on /health.
func NewHandlers(orchestrator *service.OrchestratorService, sink audit.Sink, health func() map[string]string) *Handlers {
	return &Handlers{orchestrator: orchestrator, sink: sink, health: health}
}

type queryRequest struct {
	QueryText       string            `json:"query_text"`
	RequiredEngines []query.EngineID  `json:"required_engines,omitempty"`
	Context         map[string]string `json:"context,omitempty"`
}

// HandleQuery runs one orchestrated query for the matter named in the
// X-Matter-ID header.
func (h *Handlers) HandleQuery(w http.ResponseWriter, r *http.Request) {
	matterID := middleware.MatterIDFromContext(r.Context())

	req, ok := readJSON[queryRequest](w, r)
	if !ok {
		return
	}

	result, err := h.orchestrator.ProcessQuery(r.Context(), query.ExecutionRequest{
		MatterID:        matterID,
		QueryText:       req.QueryText,
		RequiredEngines: req.RequiredEngines,
		Context:         req.Context,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ListMatterAudit returns the matter's audit trail, newest first.
func (h *Handlers) ListMatterAudit(w http.ResponseWriter, r *http.Request) {
	matterID := chi.URLParam(r, "id")
	if matterID == "" {
		writeError(w, http.StatusBadRequest, "matter id is required")
		return
	}

	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := h.sink.ListByMatter(r.Context(), matterID, limit)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// Health reports service liveness and per-component status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if h.health != nil {
		components := h.health()
		resp["components"] = components
		for _, state := range components {
			if state != "ok" && state != "closed" {
				resp["status"] = "degraded"
			}
		}
	}
	writeJSON(w, http.StatusOK, resp)
}
