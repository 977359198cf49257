// internal/repository/postgres/balance_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// BalanceRepository implements repository.BalanceRepository for PostgreSQL.
type BalanceRepository struct{}

// NewBalanceRepository creates a new BalanceRepository.
func NewBalanceRepository(db *sqlx.DB) repository.BalanceRepository {
	return &BalanceRepository{}
}

// GetForUpdate returns the balance row for (userID, chain), creating a zero
// row if none exists yet, and takes a row lock. The lock is what serializes
// concurrent mutations of the same pair; callers must run this inside a
// transaction and write the new amount with SetAmount before committing.
func (r *BalanceRepository) GetForUpdate(ctx context.Context, q repository.DBExecutor, userID string, chain domain.Chain) (*domain.Balance, error) {
	now := time.Now().UTC()
	insert := `INSERT INTO balances (user_id, chain, amount, created_at, updated_at)
               VALUES ($1, $2, 0, $3, $3)
               ON CONFLICT (user_id, chain) DO NOTHING`
	if _, err := q.ExecContext(ctx, insert, userID, chain, now); err != nil {
		return nil, fmt.Errorf("failed to ensure balance row for %s/%s: %w", userID, chain, err)
	}

	var balance domain.Balance
	query := `SELECT id, user_id, chain, amount, created_at, updated_at
              FROM balances WHERE user_id = $1 AND chain = $2 FOR UPDATE`
	if err := q.GetContext(ctx, &balance, query, userID, chain); err != nil {
		return nil, fmt.Errorf("failed to lock balance row for %s/%s: %w", userID, chain, err)
	}
	return &balance, nil
}

// SetAmount persists a new amount for a previously locked row.
func (r *BalanceRepository) SetAmount(ctx context.Context, q repository.DBExecutor, balanceID int64, amount decimal.Decimal) error {
	query := `UPDATE balances SET amount = $1, updated_at = $2 WHERE id = $3`
	result, err := q.ExecContext(ctx, query, amount, time.Now().UTC(), balanceID)
	if err != nil {
		return fmt.Errorf("failed to update balance %d: %w", balanceID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected for balance %d: %w", balanceID, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no rows affected when updating balance %d", balanceID)
	}
	return nil
}

// ListByUser returns all balance rows a user holds, in chain name order.
func (r *BalanceRepository) ListByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.Balance, error) {
	balances := []domain.Balance{}
	query := `SELECT id, user_id, chain, amount, created_at, updated_at
              FROM balances WHERE user_id = $1 ORDER BY chain`
	if err := q.SelectContext(ctx, &balances, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list balances for user %s: %w", userID, err)
	}
	return balances, nil
}
