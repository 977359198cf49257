// internal/repository/balance_repo.go
package repository

import (
	"context"

	"swiftwallet/internal/domain"

	"github.com/shopspring/decimal"
)

// BalanceRepository defines the interface for per-chain balance rows.
// Mutation goes exclusively through GetForUpdate followed by SetAmount,
// both inside one transaction, so concurrent writers to the same
// (user, chain) row serialize on the row lock.
type BalanceRepository interface {
	// GetForUpdate returns the balance row for (userID, chain), creating a
	// zero row first if none exists, and locks it for the duration of the
	// surrounding transaction.
	GetForUpdate(ctx context.Context, q DBExecutor, userID string, chain domain.Chain) (*domain.Balance, error)
	// SetAmount persists a new amount for a previously locked row.
	SetAmount(ctx context.Context, q DBExecutor, balanceID int64, amount decimal.Decimal) error
	// ListByUser returns all balance rows a user holds.
	ListByUser(ctx context.Context, q DBExecutor, userID string) ([]domain.Balance, error)
}
