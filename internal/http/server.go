// Package http exposes the bookkeeping API: registries, payable and
// receivable entries, the transaction ledger, the dashboard and the
// category reports. Everything speaks JSON.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"contas/internal/cache"
	"contas/internal/core"
	"contas/internal/middleware/trace"
	"contas/internal/services"
)

type Server struct {
	http.Server

	registry     *services.RegistryService
	ledger       *services.LedgerService
	payables     *services.PayableService
	receivables  *services.ReceivableService
	reports      *services.ReportService
	audit        *services.AuditService
	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	trace        *trace.Middleware
	cacheManager *cache.Manager

	// Read caches for the expensive aggregations. Any ledger mutation
	// flushes both.
	dashboardCache *cache.LRUCache[core.DashboardSummary]
	reportCache    *cache.LRUCache[core.Report]

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, registry *services.RegistryService, ledger *services.LedgerService,
	payables *services.PayableService, receivables *services.ReceivableService,
	reports *services.ReportService, audit *services.AuditService) *Server {

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		registry:       registry,
		ledger:         ledger,
		payables:       payables,
		receivables:    receivables,
		reports:        reports,
		audit:          audit,
		rateLimiter:    newRateLimiter(),
		metrics:        &securityMetrics{},
		trace:          trace.NewMiddleware(extractClientIP),
		cacheManager:   cache.NewManager(),
		dashboardCache: cache.NewLRUCache[core.DashboardSummary](100, 2*time.Minute),
		reportCache:    cache.NewLRUCache[core.Report](200, 2*time.Minute),
	}

	s.cacheManager.Register(s.dashboardCache)
	s.cacheManager.Register(s.reportCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/api/accounts", s.guard(s.handleAccounts))
	mux.HandleFunc("/api/accounts/{id}", s.guard(s.handleAccountByID))
	mux.HandleFunc("/api/categories", s.guard(s.handleCategories))
	mux.HandleFunc("/api/categories/{id}", s.guard(s.handleCategoryByID))
	mux.HandleFunc("/api/clients-suppliers", s.guard(s.handleClientsSuppliers))
	mux.HandleFunc("/api/clients-suppliers/{id}", s.guard(s.handleClientSupplierByID))
	mux.HandleFunc("/api/payables", s.guard(s.handlePayables))
	mux.HandleFunc("/api/payables/{id}", s.guard(s.handlePayableByID))
	mux.HandleFunc("/api/payables/{id}/pay", s.guard(s.handlePayPayable))
	mux.HandleFunc("/api/payables/{id}/unpay", s.guard(s.handleUnpayPayable))
	mux.HandleFunc("/api/receivables", s.guard(s.handleReceivables))
	mux.HandleFunc("/api/receivables/{id}", s.guard(s.handleReceivableByID))
	mux.HandleFunc("/api/receivables/{id}/receive", s.guard(s.handleReceiveReceivable))
	mux.HandleFunc("/api/receivables/{id}/unreceive", s.guard(s.handleUnreceiveReceivable))
	mux.HandleFunc("/api/transactions", s.guard(s.handleTransactions))
	mux.HandleFunc("/api/transactions/{id}", s.guard(s.handleTransactionByID))
	mux.HandleFunc("/api/dashboard", s.guard(s.handleDashboard))
	mux.HandleFunc("/api/reports", s.guard(s.handleReports))
	mux.HandleFunc("/api/audit", s.guard(s.handleAudit))

	return s
}

// guard applies tracing, security headers, suspicious-request
// detection and mutation rate limiting around a handler.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	traced := s.trace.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := extractClientIP(r)

		if detectSuspiciousRequest(r, s.metrics) {
			slog.WarnContext(r.Context(), "Suspicious request blocked",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			writeErrorMessage(w, http.StatusBadRequest, "invalid request")
			return
		}

		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP, s.metrics) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP,
				"method", r.Method,
				"url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next(w, r)
	}))
	return traced.ServeHTTP
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// invalidateAggregates flushes the dashboard and report caches after a
// write.
func (s *Server) invalidateAggregates() {
	s.dashboardCache.Clear()
	s.reportCache.Clear()
}

// Shutdown stops the cleanup goroutines and drains the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
