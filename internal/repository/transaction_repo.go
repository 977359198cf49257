// internal/repository/transaction_repo.go
package repository

import (
	"context"

	"swiftwallet/internal/domain"
)

// TransactionRepository defines the interface for the append-only
// transaction audit trail.
type TransactionRepository interface {
	// CreateTransaction inserts a new transaction record using the provided DBExecutor.
	CreateTransaction(ctx context.Context, q DBExecutor, transaction *domain.Transaction) error
	// GetTransactionByHash retrieves a transaction record by its unique hash.
	GetTransactionByHash(ctx context.Context, q DBExecutor, txHash string) (*domain.Transaction, error)
}
