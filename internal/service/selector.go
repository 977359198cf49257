// internal/service/selector.go
package service

import (
	"context"
	"fmt"
	"sort"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/repository"
	"swiftwallet/internal/util"

	"github.com/shopspring/decimal"
)

// ChainSelector picks the cheapest single chain on which a user can pay
// the requested amount.
type ChainSelector interface {
	// SelectChain returns the cheapest chain whose balance covers amount.
	// When no single chain suffices but the user's total does, the
	// selection comes back with NeedsBridge set; when even the total is
	// short, SelectChain fails with ErrInsufficientTotalBalance.
	SelectChain(ctx context.Context, userID string, amount decimal.Decimal) (*domain.ChainSelection, error)
}

type chainSelector struct {
	dbExecutor repository.DBExecutor
	users      repository.UserRepository
	ledger     Ledger
	oracle     GasOracle
}

// NewChainSelector creates a new ChainSelector.
func NewChainSelector(dbExecutor repository.DBExecutor, users repository.UserRepository, ledger Ledger, oracle GasOracle) ChainSelector {
	return &chainSelector{
		dbExecutor: dbExecutor,
		users:      users,
		ledger:     ledger,
		oracle:     oracle,
	}
}

// SelectChain ranks viable chains by estimated USD gas cost. Cost ties
// keep the oracle's declared chain order (stable sort).
func (s *chainSelector) SelectChain(ctx context.Context, userID string, amount decimal.Decimal) (*domain.ChainSelection, error) {
	if _, err := s.users.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("select chain: %w", util.ErrUserNotFound)
		}
		return nil, fmt.Errorf("select chain: %w", err)
	}

	costs := s.oracle.AllCosts()
	byChain, total, err := s.ledger.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("select chain: %w", err)
	}

	viable := make([]domain.GasCost, 0, len(costs))
	for _, cost := range costs {
		balance, ok := byChain[cost.Chain]
		if ok && balance.GreaterThanOrEqual(amount) {
			viable = append(viable, cost)
		}
	}
	sort.SliceStable(viable, func(i, j int) bool {
		return viable[i].USDCost.LessThan(viable[j].USDCost)
	})

	if len(viable) == 0 {
		if total.GreaterThanOrEqual(amount) {
			// Expected outcome, not an error: the caller moves on to the
			// bridge path.
			return &domain.ChainSelection{
				NeedsBridge:    true,
				TotalBalance:   total,
				RequiredAmount: amount,
			}, nil
		}
		return nil, fmt.Errorf("select chain: %w: have %s, need %s",
			util.ErrInsufficientTotalBalance, total, amount)
	}

	alternatives := viable[1:min(len(viable), 3)]
	return &domain.ChainSelection{
		Chain:          viable[0].Chain,
		GasCost:        viable[0].USDCost,
		Alternatives:   alternatives,
		RequiredAmount: amount,
	}, nil
}
