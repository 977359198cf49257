// internal/domain/balance.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// Balance is a user's holding on a single chain. The (UserID, Chain) pair
// is unique, and Amount never goes below zero. Rows are created lazily on
// the first credit or debit against a chain and are never hard-deleted.
type Balance struct {
	ID        int64           `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"user_id"`
	Chain     Chain           `db:"chain" json:"chain"`
	Amount    decimal.Decimal `db:"amount" json:"amount"` // NUMERIC(20, 6) in DB
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt time.Time       `db:"updated_at" json:"updated_at"`
}
