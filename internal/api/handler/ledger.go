// internal/api/handler/ledger.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"swiftwallet/internal/service"
	"swiftwallet/internal/util"
)

// DefaultTimeout bounds every request handled by the router.
const DefaultTimeout = 15 * time.Second

// LedgerHandler handles HTTP requests for balances, sends, transactions,
// gas prices, and estimates.
type LedgerHandler struct {
	engine   service.TransactionEngine
	selector service.ChainSelector
	oracle   service.GasOracle
	logger   *slog.Logger
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(engine service.TransactionEngine, selector service.ChainSelector, oracle service.GasOracle, logger *slog.Logger) *LedgerHandler {
	return &LedgerHandler{
		engine:   engine,
		selector: selector,
		oracle:   oracle,
		logger:   logger,
	}
}

func (h *LedgerHandler) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps service errors onto HTTP status codes: the
// not-found family becomes 404, validation and balance/route failures
// become 400, and everything else is a 500.
func (h *LedgerHandler) respondWithError(w http.ResponseWriter, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidAmount),
		util.IsError(err, util.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound),
		util.IsError(err, util.ErrUserNotFound),
		util.IsError(err, util.ErrSenderNotFound),
		util.IsError(err, util.ErrRecipientNotFound),
		util.IsError(err, util.ErrTransactionNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientBalance),
		util.IsError(err, util.ErrInsufficientTotalBalance),
		util.IsError(err, util.ErrNoViableBridgeRoute),
		util.IsError(err, util.ErrInsufficientBalanceToBridge):
		statusCode = http.StatusBadRequest
		message = err.Error()
	default:
		h.logger.Error("Unhandled service error", "error", err)
	}

	h.respondWithJSON(w, statusCode, map[string]string{"error": message})
}

// GetBalance handles GET /api/balance/{userID}.
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	byChain, total, err := h.engine.GetBalance(r.Context(), userID)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"userId":          userID,
		"totalBalance":    total.Round(2),
		"balancesByChain": byChain,
	})
}

// SendRequest is the request body for POST /api/send.
type SendRequest struct {
	From   string          `json:"from"`
	To     string          `json:"to"`
	Amount decimal.Decimal `json:"amount"`
}

// Send handles POST /api/send.
func (h *LedgerHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.From == "" || req.To == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if !req.Amount.IsPositive() {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	result, err := h.engine.Send(r.Context(), req.From, req.To, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":           true,
		"bridged":           result.Bridged,
		"transaction":       result.Transaction,
		"bridgeTransaction": result.BridgeTransaction,
		"totalCost":         result.TotalCost,
	})
}

// GetTransaction handles GET /api/transaction/{txHash}.
func (h *LedgerHandler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	txHash := chi.URLParam(r, "txHash")

	transaction, err := h.engine.GetStatus(r.Context(), txHash)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	h.respondWithJSON(w, http.StatusOK, transaction)
}

// GetGasPrices handles GET /api/gas-prices.
func (h *LedgerHandler) GetGasPrices(w http.ResponseWriter, r *http.Request) {
	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"gasCosts": h.oracle.AllCosts(),
	})
}

// EstimateRequest is the request body for POST /api/estimate.
type EstimateRequest struct {
	UserID string          `json:"userId"`
	Amount decimal.Decimal `json:"amount"`
}

// Estimate handles POST /api/estimate.
func (h *LedgerHandler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if req.UserID == "" {
		h.respondWithError(w, util.ErrInvalidInput)
		return
	}
	if !req.Amount.IsPositive() {
		h.respondWithError(w, util.ErrInvalidAmount)
		return
	}

	selection, err := h.selector.SelectChain(r.Context(), req.UserID, req.Amount)
	if err != nil {
		h.respondWithError(w, err)
		return
	}

	if selection.NeedsBridge {
		h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success":        false,
			"reason":         "NEEDS_BRIDGE",
			"message":        "Insufficient balance on single chain. Bridging required",
			"totalBalance":   selection.TotalBalance,
			"requiredAmount": selection.RequiredAmount,
		})
		return
	}

	h.respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"selectedChain": selection.Chain,
		"gasCost":       selection.GasCost,
		"alternatives":  selection.Alternatives,
	})
}
