// internal/service/engine.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/repository"
	"swiftwallet/internal/util"
	"swiftwallet/pkg/db"

	"github.com/shopspring/decimal"
)

// TransactionEngine orchestrates a logical send request end to end:
// validation, chain selection, optional bridging, settlement, and the
// atomic balance mutations plus audit record.
type TransactionEngine interface {
	// Send moves amount from one user to another on the cheapest viable
	// chain, bridging the sender's funds first when no single chain
	// suffices. Validation failures return before any side effect.
	Send(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal) (*domain.SendResult, error)
	// GetStatus looks up a persisted transaction record by hash.
	GetStatus(ctx context.Context, txHash string) (*domain.Transaction, error)
	// GetBalance returns a user's per-chain balances and their sum.
	GetBalance(ctx context.Context, userID string) (map[domain.Chain]decimal.Decimal, decimal.Decimal, error)
}

type transactionEngine struct {
	dbBeginner   db.DBTxBeginner
	dbExecutor   repository.DBExecutor
	users        repository.UserRepository
	transactions repository.TransactionRepository
	ledger       Ledger
	selector     ChainSelector
	oracle       GasOracle
	router       BridgeRouter
	submitter    ChainSubmitter
	beginTx      db.BeginTxFunc
	commitTx     db.CommitTxFunc
	rollbackTx   db.RollbackTxFunc
	logger       *slog.Logger
}

// NewTransactionEngine creates a new TransactionEngine.
func NewTransactionEngine(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	ledger Ledger,
	selector ChainSelector,
	oracle GasOracle,
	router BridgeRouter,
	submitter ChainSubmitter,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
	logger *slog.Logger,
) TransactionEngine {
	return &transactionEngine{
		dbBeginner:   dbBeginner,
		dbExecutor:   dbExecutor,
		users:        users,
		transactions: transactions,
		ledger:       ledger,
		selector:     selector,
		oracle:       oracle,
		router:       router,
		submitter:    submitter,
		beginTx:      beginTx,
		commitTx:     commitTx,
		rollbackTx:   rollbackTx,
		logger:       logger,
	}
}

func (e *transactionEngine) Send(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal) (*domain.SendResult, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("send: %w", util.ErrInvalidAmount)
	}
	if _, err := e.users.GetUserByID(ctx, e.dbExecutor, fromUserID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("send: %w", util.ErrSenderNotFound)
		}
		return nil, fmt.Errorf("send: %w", err)
	}
	if _, err := e.users.GetUserByID(ctx, e.dbExecutor, toUserID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("send: %w", util.ErrRecipientNotFound)
		}
		return nil, fmt.Errorf("send: %w", err)
	}

	selection, err := e.selector.SelectChain(ctx, fromUserID, amount)
	if err != nil {
		// Includes ErrInsufficientTotalBalance; surfaced unchanged.
		return nil, fmt.Errorf("send: %w", err)
	}
	if selection.NeedsBridge {
		return e.sendWithBridge(ctx, fromUserID, toUserID, amount)
	}

	return e.settleDirect(ctx, fromUserID, toUserID, amount, selection.Chain, selection.GasCost)
}

// settleDirect submits the transfer, then applies debit, credit, and the
// audit record in one atomic scope. The submitter call happens before the
// scope opens so external latency never holds balance locks.
func (e *transactionEngine) settleDirect(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal, chain domain.Chain, gasCost decimal.Decimal) (*domain.SendResult, error) {
	receipt, err := e.submitter.Submit(ctx, chain, fromUserID, toUserID, amount)
	if err != nil {
		return nil, fmt.Errorf("send: %w: %v", util.ErrSubmissionFailed, err)
	}

	totalDeducted := amount.Add(gasCost)

	txController, err := e.beginTx(ctx, e.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("send: failed to begin transaction: %w", err)
	}
	defer e.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("send: transaction controller does not implement DBExecutor")
	}

	if _, err := e.ledger.Adjust(ctx, txExecutor, fromUserID, chain, totalDeducted.Neg()); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	if _, err := e.ledger.Adjust(ctx, txExecutor, toUserID, chain, amount); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		TxHash:        receipt.TxHash,
		Type:          domain.TransactionTypeTransfer,
		FromUserID:    fromUserID,
		ToUserID:      toUserID,
		Chain:         chain,
		Amount:        amount,
		GasCost:       gasCost,
		BridgeCost:    decimal.Zero,
		TotalDeducted: totalDeducted,
		Status:        domain.TransactionStatusConfirmed,
		BlockNumber:   &receipt.BlockNumber,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.transactions.CreateTransaction(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	if err := e.commitTx(txController); err != nil {
		return nil, fmt.Errorf("send: %w: %v", util.ErrIntegrity, err)
	}

	e.logger.Info("Transfer settled",
		"txHash", record.TxHash, "chain", chain,
		"from", fromUserID, "to", toUserID, "amount", amount)

	return &domain.SendResult{
		Transaction: record,
		TotalCost:   gasCost,
	}, nil
}

// sendWithBridge consolidates the sender's funds onto the globally
// cheapest settlement chain, then settles the transfer there. The bridge
// and the final transfer run in two separate atomic scopes: a committed
// bridge is durable, so a failure afterwards leaves the user bridged but
// unsent, and that state is surfaced as an error rather than rolled back.
func (e *transactionEngine) sendWithBridge(ctx context.Context, fromUserID, toUserID string, amount decimal.Decimal) (*domain.SendResult, error) {
	costs := e.oracle.AllCosts()
	if len(costs) == 0 {
		return nil, fmt.Errorf("send: no chain costs available")
	}
	sort.SliceStable(costs, func(i, j int) bool {
		return costs[i].USDCost.LessThan(costs[j].USDCost)
	})
	// The settlement target is the cheapest chain overall, regardless of
	// what the sender currently holds.
	target := costs[0]

	amountToBridge := amount.Add(target.USDCost)

	routes, err := e.router.FindRoutes(ctx, fromUserID, amountToBridge, target.Chain)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}
	if len(routes) == 0 {
		return nil, fmt.Errorf("send: %w", util.ErrNoViableBridgeRoute)
	}

	best := routes[0]
	if best.MaxTransferable.LessThan(amountToBridge) {
		return nil, fmt.Errorf("send: %w: need %s, can transfer %s",
			util.ErrInsufficientBalanceToBridge, amountToBridge, best.MaxTransferable)
	}

	bridgeTx, err := e.router.ExecuteBridge(ctx, fromUserID, best.FromChain, target.Chain, amountToBridge)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	e.logger.Info("Bridge committed",
		"bridgeTxHash", bridgeTx.TxHash,
		"fromChain", best.FromChain, "toChain", target.Chain,
		"amount", amountToBridge, "bridgeCost", bridgeTx.BridgeCost)

	// From here on the bridge is durable: any failure below returns an
	// error over a correctly bridged but unsent balance.
	receipt, err := e.submitter.Submit(ctx, target.Chain, fromUserID, toUserID, amount)
	if err != nil {
		return nil, fmt.Errorf("send: after bridge %s: %w: %v", bridgeTx.TxHash, util.ErrSubmissionFailed, err)
	}

	totalDeducted := amount.Add(target.USDCost)

	txController, err := e.beginTx(ctx, e.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("send: after bridge %s: failed to begin transaction: %w", bridgeTx.TxHash, err)
	}
	defer e.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("send: transaction controller does not implement DBExecutor")
	}

	if _, err := e.ledger.Adjust(ctx, txExecutor, fromUserID, target.Chain, totalDeducted.Neg()); err != nil {
		return nil, fmt.Errorf("send: after bridge %s: %w", bridgeTx.TxHash, err)
	}
	if _, err := e.ledger.Adjust(ctx, txExecutor, toUserID, target.Chain, amount); err != nil {
		return nil, fmt.Errorf("send: after bridge %s: %w", bridgeTx.TxHash, err)
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		TxHash:        receipt.TxHash,
		Type:          domain.TransactionTypeTransfer,
		FromUserID:    fromUserID,
		ToUserID:      toUserID,
		Chain:         target.Chain,
		Amount:        amount,
		GasCost:       target.USDCost,
		BridgeCost:    decimal.Zero, // the fee lives on the bridge record
		TotalDeducted: totalDeducted,
		Status:        domain.TransactionStatusConfirmed,
		BlockNumber:   &receipt.BlockNumber,
		Bridged:       true,
		BridgeTxHash:  &bridgeTx.TxHash,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := e.transactions.CreateTransaction(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("send: after bridge %s: %w", bridgeTx.TxHash, err)
	}

	if err := e.commitTx(txController); err != nil {
		return nil, fmt.Errorf("send: after bridge %s: %w: %v", bridgeTx.TxHash, util.ErrIntegrity, err)
	}

	e.logger.Info("Bridged transfer settled",
		"txHash", record.TxHash, "bridgeTxHash", bridgeTx.TxHash,
		"chain", target.Chain, "from", fromUserID, "to", toUserID, "amount", amount)

	return &domain.SendResult{
		Transaction:       record,
		BridgeTransaction: bridgeTx,
		Bridged:           true,
		TotalCost:         target.USDCost.Add(bridgeTx.BridgeCost),
	}, nil
}

func (e *transactionEngine) GetStatus(ctx context.Context, txHash string) (*domain.Transaction, error) {
	transaction, err := e.transactions.GetTransactionByHash(ctx, e.dbExecutor, txHash)
	if err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("get status: %w", util.ErrTransactionNotFound)
		}
		return nil, fmt.Errorf("get status: %w", err)
	}
	return transaction, nil
}

func (e *transactionEngine) GetBalance(ctx context.Context, userID string) (map[domain.Chain]decimal.Decimal, decimal.Decimal, error) {
	if _, err := e.users.GetUserByID(ctx, e.dbExecutor, userID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, decimal.Zero, fmt.Errorf("get balance: %w", util.ErrUserNotFound)
		}
		return nil, decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return e.ledger.Totals(ctx, userID)
}
