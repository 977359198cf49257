// internal/service/bridge.go
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/repository"
	"swiftwallet/internal/util"
	"swiftwallet/pkg/db"

	"github.com/shopspring/decimal"
)

// BridgeRouter discovers and executes cross-chain routes for a single
// user's funds. Bridging debits amount plus a fixed fee from the source
// chain and credits only the amount to the destination: the fee is
// burned, never credited anywhere.
type BridgeRouter interface {
	// BridgeCost returns the fee for moving value from one chain to
	// another. Cost is zero when from == to. ok is false when either
	// chain is outside the bridge graph or no entry exists for the pair,
	// meaning the pair is unroutable.
	BridgeCost(from, to domain.Chain) (cost decimal.Decimal, ok bool)
	// FindRoutes enumerates candidate source chains for moving
	// targetAmount onto targetChain, sorted ascending by bridge cost.
	// When no route can fulfill the amount, it falls back to every route
	// with a positive transferable balance, annotated with the shortfall.
	// An empty list (no error) means the user has nothing bridgeable.
	FindRoutes(ctx context.Context, userID string, targetAmount decimal.Decimal, targetChain domain.Chain) ([]domain.BridgeRoute, error)
	// ExecuteBridge atomically debits amount + fee from fromChain,
	// credits amount to toChain, and persists the bridge record. All
	// three effects commit or roll back together.
	ExecuteBridge(ctx context.Context, userID string, fromChain, toChain domain.Chain, amount decimal.Decimal) (*domain.Transaction, error)
}

// DefaultBridgeCosts is the production directed fee matrix, in USD.
// Chains absent from the matrix (solana) cannot be bridged at all.
func DefaultBridgeCosts() map[domain.Chain]map[domain.Chain]decimal.Decimal {
	return map[domain.Chain]map[domain.Chain]decimal.Decimal{
		domain.ChainEthereum: {
			domain.ChainPolygon:  decimal.NewFromInt(5),
			domain.ChainArbitrum: decimal.NewFromInt(10),
			domain.ChainOptimism: decimal.NewFromInt(10),
		},
		domain.ChainPolygon: {
			domain.ChainEthereum: decimal.NewFromInt(15),
			domain.ChainArbitrum: decimal.NewFromInt(8),
			domain.ChainOptimism: decimal.NewFromInt(8),
		},
		domain.ChainArbitrum: {
			domain.ChainEthereum: decimal.NewFromInt(12),
			domain.ChainPolygon:  decimal.NewFromInt(8),
			domain.ChainOptimism: decimal.NewFromInt(5),
		},
		domain.ChainOptimism: {
			domain.ChainEthereum: decimal.NewFromInt(12),
			domain.ChainPolygon:  decimal.NewFromInt(8),
			domain.ChainArbitrum: decimal.NewFromInt(5),
		},
	}
}

type bridgeRouter struct {
	dbBeginner   db.DBTxBeginner
	dbExecutor   repository.DBExecutor
	users        repository.UserRepository
	transactions repository.TransactionRepository
	ledger       Ledger
	costs        map[domain.Chain]map[domain.Chain]decimal.Decimal
	beginTx      db.BeginTxFunc
	commitTx     db.CommitTxFunc
	rollbackTx   db.RollbackTxFunc
}

// NewBridgeRouter creates a new BridgeRouter over the given fee matrix.
// Pass DefaultBridgeCosts() for the production matrix.
func NewBridgeRouter(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	ledger Ledger,
	costs map[domain.Chain]map[domain.Chain]decimal.Decimal,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) BridgeRouter {
	return &bridgeRouter{
		dbBeginner:   dbBeginner,
		dbExecutor:   dbExecutor,
		users:        users,
		transactions: transactions,
		ledger:       ledger,
		costs:        costs,
		beginTx:      beginTx,
		commitTx:     commitTx,
		rollbackTx:   rollbackTx,
	}
}

func (b *bridgeRouter) BridgeCost(from, to domain.Chain) (decimal.Decimal, bool) {
	if from == to {
		return decimal.Zero, true
	}
	targets, ok := b.costs[from]
	if !ok {
		return decimal.Zero, false
	}
	cost, ok := targets[to]
	return cost, ok
}

func (b *bridgeRouter) FindRoutes(ctx context.Context, userID string, targetAmount decimal.Decimal, targetChain domain.Chain) ([]domain.BridgeRoute, error) {
	if _, err := b.users.GetUserByID(ctx, b.dbExecutor, userID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("find routes: %w", util.ErrUserNotFound)
		}
		return nil, fmt.Errorf("find routes: %w", err)
	}

	byChain, _, err := b.ledger.Totals(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find routes: %w", err)
	}

	// First pass keeps only routes that can fulfill the full amount.
	routes := b.collectRoutes(byChain, targetAmount, targetChain, true)
	if len(routes) == 0 {
		// Fall back to partial routes so the caller can still surface
		// the best available option and its shortfall.
		routes = b.collectRoutes(byChain, targetAmount, targetChain, false)
	}

	// Bridge cost is the sole ranking key; balance size does not matter.
	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].BridgeCost.LessThan(routes[j].BridgeCost)
	})
	return routes, nil
}

// collectRoutes walks the user's chains in the declared order so route
// enumeration is deterministic.
func (b *bridgeRouter) collectRoutes(byChain map[domain.Chain]decimal.Decimal, targetAmount decimal.Decimal, targetChain domain.Chain, fulfillOnly bool) []domain.BridgeRoute {
	routes := []domain.BridgeRoute{}
	for _, chain := range domain.SupportedChains() {
		if chain == targetChain {
			continue
		}
		balance, held := byChain[chain]
		if !held {
			continue
		}

		cost, ok := b.BridgeCost(chain, targetChain)
		if !ok {
			continue // unroutable pair
		}

		maxTransferable := balance.Sub(cost)
		if maxTransferable.IsNegative() {
			maxTransferable = decimal.Zero
		}

		route := domain.BridgeRoute{
			FromChain:        chain,
			ToChain:          targetChain,
			AvailableBalance: balance,
			BridgeCost:       cost,
			MaxTransferable:  maxTransferable,
		}

		if fulfillOnly {
			if maxTransferable.GreaterThanOrEqual(targetAmount) {
				route.CanFulfill = true
				routes = append(routes, route)
			}
			continue
		}
		if maxTransferable.IsPositive() {
			route.Shortfall = targetAmount.Sub(maxTransferable)
			routes = append(routes, route)
		}
	}
	return routes
}

func (b *bridgeRouter) ExecuteBridge(ctx context.Context, userID string, fromChain, toChain domain.Chain, amount decimal.Decimal) (*domain.Transaction, error) {
	if _, err := b.users.GetUserByID(ctx, b.dbExecutor, userID); err != nil {
		if util.IsError(err, util.ErrNotFound) {
			return nil, fmt.Errorf("execute bridge: %w", util.ErrUserNotFound)
		}
		return nil, fmt.Errorf("execute bridge: %w", err)
	}

	bridgeCost, ok := b.BridgeCost(fromChain, toChain)
	if !ok {
		return nil, fmt.Errorf("execute bridge: %w: %s -> %s", util.ErrNoViableBridgeRoute, fromChain, toChain)
	}
	totalRequired := amount.Add(bridgeCost)

	txController, err := b.beginTx(ctx, b.dbBeginner)
	if err != nil {
		return nil, fmt.Errorf("execute bridge: failed to begin transaction: %w", err)
	}
	defer b.rollbackTx(txController)

	txExecutor, ok2 := txController.(repository.DBExecutor)
	if !ok2 {
		return nil, fmt.Errorf("execute bridge: transaction controller does not implement DBExecutor")
	}

	// Debit the full amount plus fee from the source chain; the ledger
	// rejects the debit with ErrInsufficientBalance before any write when
	// the balance is short, and the deferred rollback discards the scope.
	if _, err := b.ledger.Adjust(ctx, txExecutor, userID, fromChain, totalRequired.Neg()); err != nil {
		return nil, fmt.Errorf("execute bridge: %w", err)
	}

	// Credit only the amount to the destination; the fee is burned.
	if _, err := b.ledger.Adjust(ctx, txExecutor, userID, toChain, amount); err != nil {
		return nil, fmt.Errorf("execute bridge: %w", err)
	}

	now := time.Now().UTC()
	record := &domain.Transaction{
		TxHash:        NewBridgeTxHash(),
		Type:          domain.TransactionTypeBridge,
		FromUserID:    userID,
		ToUserID:      userID, // a bridge moves the user's own funds
		Chain:         toChain,
		FromChain:     &fromChain,
		ToChain:       &toChain,
		Amount:        amount,
		GasCost:       decimal.Zero,
		BridgeCost:    bridgeCost,
		TotalDeducted: totalRequired,
		Status:        domain.TransactionStatusConfirmed,
		Bridged:       true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := b.transactions.CreateTransaction(ctx, txExecutor, record); err != nil {
		return nil, fmt.Errorf("execute bridge: %w", err)
	}

	if err := b.commitTx(txController); err != nil {
		return nil, fmt.Errorf("execute bridge: %w: %v", util.ErrIntegrity, err)
	}
	return record, nil
}
