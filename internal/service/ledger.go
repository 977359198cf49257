// internal/service/ledger.go
package service

import (
	"context"
	"fmt"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/repository"
	"swiftwallet/internal/util"
	"swiftwallet/pkg/db"

	"github.com/shopspring/decimal"
)

// Ledger owns every balance mutation. Adjust is the single primitive: it
// applies a signed delta to one (user, chain) balance and refuses to let
// the stored amount go negative.
type Ledger interface {
	// Adjust applies delta to the balance for (userID, chain) and returns
	// the new amount. A negative delta is a debit. When the resulting
	// amount would be negative, Adjust returns ErrInsufficientBalance and
	// leaves the stored amount unchanged.
	//
	// scope is an optional ambient transaction: when non-nil, the
	// mutation joins the caller's atomic scope and the caller commits or
	// rolls back; when nil, the ledger begins, commits, and rolls back
	// its own transaction.
	Adjust(ctx context.Context, scope repository.DBExecutor, userID string, chain domain.Chain, delta decimal.Decimal) (decimal.Decimal, error)
	// Totals returns the per-chain balance mapping for a user and the sum
	// across all chains.
	Totals(ctx context.Context, userID string) (map[domain.Chain]decimal.Decimal, decimal.Decimal, error)
}

type ledger struct {
	dbBeginner db.DBTxBeginner
	dbExecutor repository.DBExecutor
	balances   repository.BalanceRepository
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewLedger creates a new Ledger backed by the balance repository.
func NewLedger(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	balances repository.BalanceRepository,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) Ledger {
	return &ledger{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		balances:   balances,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

func (l *ledger) Adjust(ctx context.Context, scope repository.DBExecutor, userID string, chain domain.Chain, delta decimal.Decimal) (decimal.Decimal, error) {
	if scope != nil {
		return l.adjustIn(ctx, scope, userID, chain, delta)
	}

	txController, err := l.beginTx(ctx, l.dbBeginner)
	if err != nil {
		return decimal.Zero, fmt.Errorf("adjust: failed to begin transaction: %w", err)
	}
	defer l.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return decimal.Zero, fmt.Errorf("adjust: transaction controller does not implement DBExecutor")
	}

	newAmount, err := l.adjustIn(ctx, txExecutor, userID, chain, delta)
	if err != nil {
		return decimal.Zero, err
	}

	if err := l.commitTx(txController); err != nil {
		return decimal.Zero, fmt.Errorf("adjust: %w: %v", util.ErrIntegrity, err)
	}
	return newAmount, nil
}

// adjustIn performs the locked read-modify-write inside an open scope.
func (l *ledger) adjustIn(ctx context.Context, q repository.DBExecutor, userID string, chain domain.Chain, delta decimal.Decimal) (decimal.Decimal, error) {
	balance, err := l.balances.GetForUpdate(ctx, q, userID, chain)
	if err != nil {
		return decimal.Zero, fmt.Errorf("adjust: %w", err)
	}

	candidate := balance.Amount.Add(delta)
	if candidate.IsNegative() {
		return decimal.Zero, fmt.Errorf("adjust: %w on %s: current %s, attempted %s",
			util.ErrInsufficientBalance, chain, balance.Amount, delta)
	}

	if err := l.balances.SetAmount(ctx, q, balance.ID, candidate); err != nil {
		return decimal.Zero, fmt.Errorf("adjust: %w", err)
	}
	return candidate, nil
}

func (l *ledger) Totals(ctx context.Context, userID string) (map[domain.Chain]decimal.Decimal, decimal.Decimal, error) {
	balances, err := l.balances.ListByUser(ctx, l.dbExecutor, userID)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("totals: %w", err)
	}

	byChain := make(map[domain.Chain]decimal.Decimal, len(balances))
	total := decimal.Zero
	for _, b := range balances {
		byChain[b.Chain] = b.Amount
		total = total.Add(b.Amount)
	}
	return byChain, total, nil
}
