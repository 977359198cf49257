// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"swiftwallet/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(ledgerHandler *handler.LedgerHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy","timestamp":"` + time.Now().UTC().Format(time.RFC3339) + `"}`))
	})

	// Ledger API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/balance/{userID}", ledgerHandler.GetBalance)
		r.Post("/send", ledgerHandler.Send)
		r.Get("/transaction/{txHash}", ledgerHandler.GetTransaction)
		r.Get("/gas-prices", ledgerHandler.GetGasPrices)
		r.Post("/estimate", ledgerHandler.Estimate)
	})

	return r
}
