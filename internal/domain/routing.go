// internal/domain/routing.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GasCost is the oracle's transfer cost estimate for one chain.
type GasCost struct {
	Chain        Chain           `json:"chain"`
	GasPriceGwei decimal.Decimal `json:"gasPrice"`
	GasUnits     int64           `json:"transferCost"`
	NativeToken  string          `json:"nativeToken"`
	NativeCost   decimal.Decimal `json:"costInNativeToken"` // rounded to 9 decimal places
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	USDCost      decimal.Decimal `json:"estimatedCostUSDC"` // rounded to 6 decimal places
}

// ChainSelection is the outcome of picking the cheapest chain with
// sufficient balance for a transfer. NeedsBridge is an expected outcome,
// not an error: the user has enough in total but not on any single chain.
type ChainSelection struct {
	NeedsBridge    bool
	Chain          Chain
	GasCost        decimal.Decimal
	Alternatives   []GasCost // up to two cheaper-than-third options, for observability
	TotalBalance   decimal.Decimal
	RequiredAmount decimal.Decimal
}

// BridgeRoute is a candidate source chain for fulfilling a bridge
// requirement into a target chain. MaxTransferable is the balance left
// after the bridge fee; Shortfall is set only when CanFulfill is false.
type BridgeRoute struct {
	FromChain        Chain           `json:"fromChain"`
	ToChain          Chain           `json:"toChain"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	BridgeCost       decimal.Decimal `json:"bridgeCost"`
	MaxTransferable  decimal.Decimal `json:"maxTransferable"`
	CanFulfill       bool            `json:"canFulfill"`
	Shortfall        decimal.Decimal `json:"shortfall,omitempty"`
}

// Receipt is a chain submitter's confirmation of a settled transfer.
type Receipt struct {
	TxHash      string            `json:"transactionHash"`
	Chain       Chain             `json:"chain"`
	BlockNumber int64             `json:"blockNumber"`
	Status      TransactionStatus `json:"status"`
	Timestamp   time.Time         `json:"timestamp"`
}

// SendResult is the outcome of a logical send request: the transfer
// record, plus the bridge record when the transfer had to be bridged.
type SendResult struct {
	Transaction       *Transaction    `json:"transaction"`
	BridgeTransaction *Transaction    `json:"bridgeTransaction,omitempty"`
	Bridged           bool            `json:"bridged"`
	TotalCost         decimal.Decimal `json:"totalCost"` // gas, plus bridge fee when bridged
}
