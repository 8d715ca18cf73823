// Package http exposes the JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendify/internal/auth"
	authmw "spendify/internal/middleware/auth"
	"spendify/internal/middleware/ratelimit"
	"spendify/internal/middleware/security"
	"spendify/internal/middleware/trace"
	"spendify/internal/receipts"
	"spendify/internal/services"
	"spendify/internal/storage"
)

type Server struct {
	http.Server

	authService  *auth.Service
	ledger       *services.LedgerService
	transactions *services.TransactionService
	recurring    *services.RecurringService
	receiptStore receipts.Store
	storage      *storage.SQLiteRepository

	rateLimiter  *ratelimit.Limiter
	shutdownOnce sync.Once
}

type Deps struct {
	Auth         *auth.Service
	TokenIssuer  *auth.TokenIssuer
	Ledger       *services.LedgerService
	Transactions *services.TransactionService
	Recurring    *services.RecurringService
	Receipts     receipts.Store
	Storage      *storage.SQLiteRepository
}

// NewServer configures routes and the middleware chain, returning a
// ready-to-run server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		authService:  deps.Auth,
		ledger:       deps.Ledger,
		transactions: deps.Transactions,
		recurring:    deps.Recurring,
		receiptStore: deps.Receipts,
		storage:      deps.Storage,
		rateLimiter:  ratelimit.NewLimiter(ratelimit.DefaultConfig()),
	}

	detector := security.NewDetector()
	traceMW := trace.NewMiddleware(detector.ExtractClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	sessionMW := authmw.NewMiddleware(deps.TokenIssuer)
	limitMW := s.rateLimiter.Middleware(detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
	})

	// Public routes.
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	// Authenticated routes.
	api := http.NewServeMux()
	api.HandleFunc("GET /api/v1/auth/me", s.handleMe)
	api.HandleFunc("GET /api/v1/transactions", s.handleListTransactions)
	api.HandleFunc("POST /api/v1/transactions", s.handleCreateTransaction)
	api.HandleFunc("GET /api/v1/transactions/{id}", s.handleGetTransaction)
	api.HandleFunc("PUT /api/v1/transactions/{id}", s.handleUpdateTransaction)
	api.HandleFunc("DELETE /api/v1/transactions/{id}", s.handleDeleteTransaction)
	api.HandleFunc("GET /api/v1/recurring", s.handleListRecurring)
	api.HandleFunc("POST /api/v1/recurring", s.handleCreateRecurring)
	api.HandleFunc("PUT /api/v1/recurring/{id}", s.handleUpdateRecurring)
	api.HandleFunc("PATCH /api/v1/recurring/{id}/active", s.handleSetRecurringActive)
	api.HandleFunc("DELETE /api/v1/recurring/{id}", s.handleDeleteRecurring)
	api.HandleFunc("POST /api/v1/receipts", s.handleUploadReceipt)
	mux.Handle("/api/v1/", sessionMW.Middleware(api))

	// Receipt files when the disk backend is active.
	if disk, ok := deps.Receipts.(*receipts.DiskStore); ok {
		files := http.StripPrefix("/receipts/", http.FileServer(http.Dir(disk.Dir())))
		mux.Handle("GET /receipts/", files)
	}

	handler := headersMW.Middleware(limitMW(traceMW.Middleware(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return s
}

// Shutdown stops the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.storage.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
