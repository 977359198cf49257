// internal/repository/postgres/transaction_pg.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/repository"
	"swiftwallet/internal/util"

	"github.com/jmoiron/sqlx"
)

// TransactionRepository implements repository.TransactionRepository for PostgreSQL.
type TransactionRepository struct{}

// NewTransactionRepository creates a new TransactionRepository.
func NewTransactionRepository(db *sqlx.DB) repository.TransactionRepository {
	return &TransactionRepository{}
}

// CreateTransaction inserts a new transaction record using the provided DBExecutor.
func (r *TransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	query := `INSERT INTO transactions
              (tx_hash, type, from_user_id, to_user_id, chain, from_chain, to_chain,
               amount, gas_cost, bridge_cost, total_deducted, status, block_number,
               bridged, bridge_tx_hash, created_at, updated_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
              RETURNING id`

	err := q.QueryRowContext(ctx, query,
		transaction.TxHash,
		transaction.Type,
		transaction.FromUserID,
		transaction.ToUserID,
		transaction.Chain,
		transaction.FromChain,
		transaction.ToChain,
		transaction.Amount,
		transaction.GasCost,
		transaction.BridgeCost,
		transaction.TotalDeducted,
		transaction.Status,
		transaction.BlockNumber,
		transaction.Bridged,
		transaction.BridgeTxHash,
		transaction.CreatedAt,
		transaction.UpdatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// GetTransactionByHash retrieves a transaction record by its unique hash.
func (r *TransactionRepository) GetTransactionByHash(ctx context.Context, q repository.DBExecutor, txHash string) (*domain.Transaction, error) {
	var transaction domain.Transaction
	query := `SELECT id, tx_hash, type, from_user_id, to_user_id, chain, from_chain, to_chain,
                     amount, gas_cost, bridge_cost, total_deducted, status, block_number,
                     bridged, bridge_tx_hash, created_at, updated_at
              FROM transactions WHERE tx_hash = $1`
	err := q.GetContext(ctx, &transaction, query, txHash)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, util.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by hash %s: %w", txHash, err)
	}
	return &transaction, nil
}
