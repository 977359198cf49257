// internal/service/submitter.go
package service

import (
	"context"
	"math/rand/v2"
	"strings"
	"time"

	"swiftwallet/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ChainSubmitter settles a transfer on a chain and returns the
// confirmation receipt. The engine calls it before opening any ledger
// scope, so a slow or failing submitter never holds balance locks.
type ChainSubmitter interface {
	Submit(ctx context.Context, chain domain.Chain, fromUserID, toUserID string, amount decimal.Decimal) (*domain.Receipt, error)
}

// simulatedSubmitter confirms every transfer immediately with a
// generated hash and pseudo-random block number. It stands in for real
// chain submission, which is out of scope for this service.
type simulatedSubmitter struct{}

// NewSimulatedSubmitter creates the simulated ChainSubmitter.
func NewSimulatedSubmitter() ChainSubmitter {
	return &simulatedSubmitter{}
}

func (s *simulatedSubmitter) Submit(ctx context.Context, chain domain.Chain, fromUserID, toUserID string, amount decimal.Decimal) (*domain.Receipt, error) {
	return &domain.Receipt{
		TxHash:      NewTxHash(),
		Chain:       chain,
		BlockNumber: rand.Int64N(1_000_000),
		Status:      domain.TransactionStatusConfirmed,
		Timestamp:   time.Now().UTC(),
	}, nil
}

// NewTxHash generates a 64-hex-character transfer hash with a 0x prefix.
func NewTxHash() string {
	return "0x" + randomHex64()
}

// NewBridgeTxHash generates a bridge transaction hash. The literal
// "bridge" marker makes bridge records recognizable at a glance.
func NewBridgeTxHash() string {
	return "0xbridge" + randomHex64()[:56]
}

func randomHex64() string {
	return strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
}
