package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tally/internal/auth"
	"tally/internal/services"
)

// Server is the JSON API surface over the ledger and group services.
type Server struct {
	http.Server
	authenticator *auth.PasswordAuthenticator
	tokens        *auth.TokenManager
	ledger        *services.LedgerService
	groups        *services.GroupService
	rateLimiter   *rateLimiter
	metrics       *metrics
	readyCheck    func(context.Context) error
	shutdownOnce  sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
// readyCheck is probed by /readyz; nil means always ready.
func NewServer(addr string, authenticator *auth.PasswordAuthenticator, tokens *auth.TokenManager, ledger *services.LedgerService, groups *services.GroupService, readyCheck func(context.Context) error) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
		},
		authenticator: authenticator,
		tokens:        tokens,
		ledger:        ledger,
		groups:        groups,
		rateLimiter:   newRateLimiter(),
		metrics:       newMetrics(),
		readyCheck:    readyCheck,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("POST /api/register", s.wrap(s.handleRegister))
	mux.HandleFunc("POST /api/login", s.wrap(s.handleLogin))

	mux.HandleFunc("GET /api/transactions", s.wrap(s.requireAuth(s.handleListTransactions)))
	mux.HandleFunc("POST /api/transactions", s.wrap(s.requireAuth(s.handleCreateTransaction)))
	mux.HandleFunc("GET /api/transactions/{id}", s.wrap(s.requireAuth(s.handleGetTransaction)))
	mux.HandleFunc("PUT /api/transactions/{id}", s.wrap(s.requireAuth(s.handleUpdateTransaction)))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.wrap(s.requireAuth(s.handleDeleteTransaction)))

	mux.HandleFunc("GET /api/budgets", s.wrap(s.requireAuth(s.handleListBudgets)))
	mux.HandleFunc("POST /api/budgets", s.wrap(s.requireAuth(s.handleCreateBudget)))
	mux.HandleFunc("PUT /api/budgets/{id}", s.wrap(s.requireAuth(s.handleUpdateBudget)))
	mux.HandleFunc("DELETE /api/budgets/{id}", s.wrap(s.requireAuth(s.handleDeleteBudget)))

	mux.HandleFunc("GET /api/summary", s.wrap(s.requireAuth(s.handleSummary)))

	mux.HandleFunc("GET /api/groups", s.wrap(s.requireAuth(s.handleListGroups)))
	mux.HandleFunc("POST /api/groups", s.wrap(s.requireAuth(s.handleCreateGroup)))
	mux.HandleFunc("GET /api/groups/{id}", s.wrap(s.requireAuth(s.handleGetGroup)))
	mux.HandleFunc("POST /api/groups/{id}/members", s.wrap(s.requireAuth(s.handleAddMember)))
	mux.HandleFunc("GET /api/groups/{id}/expenses", s.wrap(s.requireAuth(s.handleListExpenses)))
	mux.HandleFunc("POST /api/groups/{id}/expenses", s.wrap(s.requireAuth(s.handleAddExpense)))
	mux.HandleFunc("GET /api/groups/{id}/settlements", s.wrap(s.requireAuth(s.handleSettlementPlan)))
	mux.HandleFunc("POST /api/groups/{id}/settlements", s.wrap(s.requireAuth(s.handleRecordSettlement)))
	mux.HandleFunc("GET /api/groups/{id}/settlements/history", s.wrap(s.requireAuth(s.handleListSettlements)))

	return s
}

// wrap adds request tracing, rate limiting, security headers, metrics and
// request logging around a handler.
func (s *Server) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := uuid.NewString()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		duration := time.Since(start)
		s.metrics.observe(r.Method, r.URL.Path, rw.statusCode, duration)
		slog.InfoContext(ctx, "request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", duration.Milliseconds(),
			"client_ip", clientIP)
	}
}

// responseWriter captures the status code for logging and metrics.
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

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readyCheck != nil {
		if err := s.readyCheck(r.Context()); err != nil {
			slog.ErrorContext(r.Context(), "readiness check failed", "error", err)
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the listener and the rate limiter cleanup goroutine.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}
