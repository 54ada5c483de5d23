// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finledger/internal/cache"
	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/services"
)

type Server struct {
	http.Server
	store       *ledger.Store
	records     *services.RecordService
	salary      *services.SalaryService
	members     *services.MembershipService
	payments    *services.PaymentService
	rateLimiter *rateLimiter

	// Summaries are cached per month and flushed on any mutation, since most
	// mutations can move a month's totals.
	summaryCache *cache.LRUCache[core.Summary]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// Services bundles the application services the API fronts.
type Services struct {
	Records  *services.RecordService
	Salary   *services.SalaryService
	Members  *services.MembershipService
	Payments *services.PaymentService
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, store *ledger.Store, svc Services) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
		store:        store,
		records:      svc.Records,
		salary:       svc.Salary,
		members:      svc.Members,
		payments:     svc.Payments,
		rateLimiter:  newRateLimiter(),
		summaryCache: cache.NewLRUCache[core.Summary](100, 5*time.Minute),
		cacheManager: cache.NewManager(),
	}

	s.cacheManager.Register(s.summaryCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/company", s.withSecurityHeaders(s.handleGetCompany))
	mux.HandleFunc("PUT /api/company", s.withSecurityHeaders(s.handleSetCompany))

	mux.HandleFunc("GET /api/expenses", s.withSecurityHeaders(s.handleListExpenses))
	mux.HandleFunc("POST /api/expenses", s.withSecurityHeaders(s.handleCreateExpense))
	mux.HandleFunc("GET /api/incomes", s.withSecurityHeaders(s.handleListIncomes))
	mux.HandleFunc("POST /api/incomes", s.withSecurityHeaders(s.handleCreateIncome))

	mux.HandleFunc("GET /api/employees", s.withSecurityHeaders(s.handleListEmployees))
	mux.HandleFunc("POST /api/employees", s.withSecurityHeaders(s.handleCreateEmployee))
	mux.HandleFunc("PUT /api/employees/{id}", s.withSecurityHeaders(s.handleUpdateEmployee))
	mux.HandleFunc("PUT /api/employees/{id}/active", s.withSecurityHeaders(s.handleSetEmployeeActive))
	mux.HandleFunc("GET /api/employees/{id}/salary-history", s.withSecurityHeaders(s.handleSalaryHistory))
	mux.HandleFunc("GET /api/employees/{id}/projects", s.withSecurityHeaders(s.handleEmployeeProjects))
	mux.HandleFunc("POST /api/salaries", s.withSecurityHeaders(s.handlePostSalary))

	mux.HandleFunc("GET /api/projects", s.withSecurityHeaders(s.handleListProjects))
	mux.HandleFunc("POST /api/projects", s.withSecurityHeaders(s.handleCreateProject))
	mux.HandleFunc("PUT /api/projects/{id}", s.withSecurityHeaders(s.handleUpdateProject))
	mux.HandleFunc("GET /api/projects/{id}/members", s.withSecurityHeaders(s.handleListMembers))
	mux.HandleFunc("POST /api/projects/{id}/members", s.withSecurityHeaders(s.handleAddMember))
	mux.HandleFunc("DELETE /api/projects/{id}/members/{employeeId}", s.withSecurityHeaders(s.handleRemoveMember))
	mux.HandleFunc("POST /api/projects/{id}/payments", s.withSecurityHeaders(s.handleAddPayment))
	mux.HandleFunc("PUT /api/payments/{id}", s.withSecurityHeaders(s.handleEditPayment))
	mux.HandleFunc("DELETE /api/payments/{id}", s.withSecurityHeaders(s.handleDeletePayment))

	mux.HandleFunc("GET /api/summary", s.withSecurityHeaders(s.handleSummary))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
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

// withSecurityHeaders adds security headers, rate limiting, and request
// logging to responses.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Extract client IP (considering proxies)
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		// Rate limit mutations only; reads are cheap.
		if isMutation(r.Method) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// invalidateSummaries drops every cached month rollup after a mutation.
func (s *Server) invalidateSummaries() {
	s.summaryCache.Clear()
}
