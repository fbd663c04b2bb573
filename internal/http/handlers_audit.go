package http

import (
	"net/http"
	"strconv"

	"contas/internal/core"
	"contas/internal/storage"
)

type auditEntryView struct {
	ID         string `json:"id"`
	Event      string `json:"event"`
	EntityKind string `json:"entityKind"`
	EntityID   string `json:"entityId"`
	Detail     string `json:"detail,omitempty"`
	OccurredAt string `json:"occurredAt"`
}

func newAuditEntryView(e storage.AuditEntry) auditEntryView {
	return auditEntryView{
		ID:         e.ID,
		Event:      e.Event,
		EntityKind: e.EntityKind,
		EntityID:   e.EntityID,
		Detail:     e.Detail,
		OccurredAt: e.OccurredAt,
	}
}

// handleAudit serves the newest audit entries, capped by the configured
// limit. An optional limit query parameter narrows the page.
func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, r, core.NewValidationError("limit", "must be a positive integer"))
			return
		}
		limit = n
	}

	entries, err := s.audit.Recent(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]auditEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, newAuditEntryView(e))
	}
	writeJSON(w, http.StatusOK, views)
}
