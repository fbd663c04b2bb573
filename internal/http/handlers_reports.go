package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"contas/internal/core"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	rng, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := "dashboard:" + rng.From.String() + ":" + rng.To.String()
	if summary, found := s.dashboardCache.Get(key); found {
		slog.DebugContext(r.Context(), "Dashboard cache hit", "key", key)
		writeJSON(w, http.StatusOK, newDashboardView(summary))
		return
	}

	summary, err := s.reports.Dashboard(r.Context(), rng, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.dashboardCache.Set(key, summary)

	writeJSON(w, http.StatusOK, newDashboardView(summary))
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	kind := core.ReportKind(strings.TrimSpace(r.URL.Query().Get("kind")))
	rng, err := parseRange(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := "report:" + string(kind) + ":" + rng.From.String() + ":" + rng.To.String()
	if report, found := s.reportCache.Get(key); found {
		slog.DebugContext(r.Context(), "Report cache hit", "key", key)
		writeJSON(w, http.StatusOK, newReportView(report))
		return
	}

	report, err := s.reports.BuildReport(r.Context(), kind, rng)
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.reportCache.Set(key, report)

	writeJSON(w, http.StatusOK, newReportView(report))
}
