// internal/service/oracle.go
package service

import (
	"fmt"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/util"

	"github.com/shopspring/decimal"
)

// GasOracle estimates the USD-denominated cost of a transfer on each
// supported chain. The estimates are a deterministic function of static
// per-chain tables; the oracle holds no mutable state.
type GasOracle interface {
	CostOf(chain domain.Chain) (domain.GasCost, error)
	// AllCosts returns the cost estimate for every supported chain, in
	// the declared chain order.
	AllCosts() []domain.GasCost
}

// ChainGasParams are the static pricing parameters for one chain.
type ChainGasParams struct {
	GasPriceGwei decimal.Decimal
	GasUnits     int64
	NativeToken  string
}

// Rounding precision for cost values: repeated estimates must not drift,
// so both figures are truncated to fixed decimal places.
const (
	nativeCostPlaces = 9
	usdCostPlaces    = 6
)

var gweiPerNative = decimal.NewFromInt(1_000_000_000)

type gasOracle struct {
	order []domain.Chain
	gas   map[domain.Chain]ChainGasParams
	rates map[string]decimal.Decimal // native token -> USD
}

// NewGasOracle returns the oracle with the production pricing tables.
func NewGasOracle() GasOracle {
	return NewGasOracleWithTables(
		domain.SupportedChains(),
		map[domain.Chain]ChainGasParams{
			domain.ChainEthereum: {GasPriceGwei: decimal.NewFromInt(50), GasUnits: 21000, NativeToken: "ETH"},
			domain.ChainPolygon:  {GasPriceGwei: decimal.NewFromInt(30), GasUnits: 21000, NativeToken: "MATIC"},
			domain.ChainArbitrum: {GasPriceGwei: decimal.RequireFromString("0.1"), GasUnits: 21000, NativeToken: "ETH"},
			domain.ChainOptimism: {GasPriceGwei: decimal.RequireFromString("0.1"), GasUnits: 21000, NativeToken: "ETH"},
			domain.ChainSolana:   {GasPriceGwei: decimal.RequireFromString("0.05"), GasUnits: 21000, NativeToken: "SOL"},
		},
		map[string]decimal.Decimal{
			"ETH":   decimal.NewFromInt(3500),
			"MATIC": decimal.RequireFromString("0.85"),
			"SOL":   decimal.NewFromInt(133),
		},
	)
}

// NewGasOracleWithTables returns an oracle over caller-supplied tables.
// order controls AllCosts ordering and must only name chains present in gas.
func NewGasOracleWithTables(order []domain.Chain, gas map[domain.Chain]ChainGasParams, rates map[string]decimal.Decimal) GasOracle {
	return &gasOracle{order: order, gas: gas, rates: rates}
}

func (o *gasOracle) CostOf(chain domain.Chain) (domain.GasCost, error) {
	params, ok := o.gas[chain]
	if !ok {
		return domain.GasCost{}, fmt.Errorf("gas cost: unsupported chain %q: %w", chain, util.ErrNotFound)
	}
	rate := o.rates[params.NativeToken]

	nativeCost := params.GasPriceGwei.
		Mul(decimal.NewFromInt(params.GasUnits)).
		Div(gweiPerNative)

	return domain.GasCost{
		Chain:        chain,
		GasPriceGwei: params.GasPriceGwei,
		GasUnits:     params.GasUnits,
		NativeToken:  params.NativeToken,
		NativeCost:   nativeCost.Round(nativeCostPlaces),
		ExchangeRate: rate,
		USDCost:      nativeCost.Mul(rate).Round(usdCostPlaces),
	}, nil
}

func (o *gasOracle) AllCosts() []domain.GasCost {
	costs := make([]domain.GasCost, 0, len(o.order))
	for _, chain := range o.order {
		cost, err := o.CostOf(chain)
		if err != nil {
			continue // order should only name configured chains
		}
		costs = append(costs, cost)
	}
	return costs
}
