// internal/domain/transaction.go
package domain

import (
	"time"

	"github.com/shopspring/decimal" // For precise monetary calculations
)

// TransactionType defines the kind of settlement a record describes.
type TransactionType string

const (
	TransactionTypeTransfer TransactionType = "transfer"
	TransactionTypeBridge   TransactionType = "bridge"
)

// TransactionStatus defines the settlement status of a transaction.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusConfirmed TransactionStatus = "confirmed"
	TransactionStatusFailed    TransactionStatus = "failed"
)

// Transaction is an immutable audit record of a settled operation.
// TotalDeducted always equals Amount + GasCost + BridgeCost for the
// record's type; bridge records carry the same user as sender and
// recipient and set FromChain/ToChain.
type Transaction struct {
	ID            int64             `db:"id" json:"id"`
	TxHash        string            `db:"tx_hash" json:"txHash"` // Unique settlement hash
	Type          TransactionType   `db:"type" json:"type"`
	FromUserID    string            `db:"from_user_id" json:"fromUserId"`
	ToUserID      string            `db:"to_user_id" json:"toUserId"`
	Chain         Chain             `db:"chain" json:"chain"` // Settlement chain
	FromChain     *Chain            `db:"from_chain" json:"fromChain,omitempty"`
	ToChain       *Chain            `db:"to_chain" json:"toChain,omitempty"`
	Amount        decimal.Decimal   `db:"amount" json:"amount"`
	GasCost       decimal.Decimal   `db:"gas_cost" json:"gasCost"`
	BridgeCost    decimal.Decimal   `db:"bridge_cost" json:"bridgeCost"`
	TotalDeducted decimal.Decimal   `db:"total_deducted" json:"totalDeducted"`
	Status        TransactionStatus `db:"status" json:"status"`
	BlockNumber   *int64            `db:"block_number" json:"blockNumber,omitempty"`
	Bridged       bool              `db:"bridged" json:"bridged"`
	BridgeTxHash  *string           `db:"bridge_tx_hash" json:"bridgeTxHash,omitempty"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}
