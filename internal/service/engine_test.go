// internal/service/engine_test.go
package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type engineFixture struct {
	engine       TransactionEngine
	users        *MockUserRepository
	transactions *MockTransactionRepository
	ledger       *MockLedger
	selector     *MockChainSelector
	oracle       *MockGasOracle
	router       *MockBridgeRouter
	submitter    *MockChainSubmitter
	harness      *txHarness
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()
	f := &engineFixture{
		users:        new(MockUserRepository),
		transactions: new(MockTransactionRepository),
		ledger:       new(MockLedger),
		selector:     new(MockChainSelector),
		oracle:       new(MockGasOracle),
		router:       new(MockBridgeRouter),
		submitter:    new(MockChainSubmitter),
		harness:      newTxHarness(),
	}
	f.engine = NewTransactionEngine(
		nil, new(MockDBExecutor),
		f.users, f.transactions,
		f.ledger, f.selector, f.oracle, f.router, f.submitter,
		f.harness.begin, f.harness.commit, f.harness.rollback,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func receipt(chain domain.Chain) *domain.Receipt {
	return &domain.Receipt{
		TxHash:      NewTxHash(),
		Chain:       chain,
		BlockNumber: 123456,
		Status:      domain.TransactionStatusConfirmed,
		Timestamp:   time.Now().UTC(),
	}
}

func TestSendRejectsNonPositiveAmount(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	for _, amount := range []decimal.Decimal{decimal.Zero, dec("-5")} {
		_, err := f.engine.Send(ctx, "user1", "user2", amount)
		assert.ErrorIs(t, err, util.ErrInvalidAmount)
	}

	// Fail-fast: no lookups, no balance changes.
	f.users.AssertNotCalled(t, "GetUserByID", mock.Anything, mock.Anything, mock.Anything)
	f.ledger.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendUnknownSender(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	f.users.On("GetUserByID", mock.Anything, mock.Anything, "ghost").
		Return(nil, util.ErrNotFound)

	_, err := f.engine.Send(ctx, "ghost", "user2", dec("100"))
	assert.ErrorIs(t, err, util.ErrSenderNotFound)
	f.ledger.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendUnknownRecipient(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	f.users.On("GetUserByID", mock.Anything, mock.Anything, "ghost").
		Return(nil, util.ErrNotFound)

	_, err := f.engine.Send(ctx, "user1", "ghost", dec("100"))
	assert.ErrorIs(t, err, util.ErrRecipientNotFound)
}

func TestSendDirectTransferConservation(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	userExists(f.users, "user2")

	gas := dec("0.0005355")
	f.selector.On("SelectChain", ctx, "user1", decEq(dec("300"))).
		Return(&domain.ChainSelection{Chain: domain.ChainPolygon, GasCost: gas}, nil).Once()
	f.submitter.On("Submit", ctx, domain.ChainPolygon, "user1", "user2", decEq(dec("300"))).
		Return(receipt(domain.ChainPolygon), nil).Once()

	// Sender pays amount + gas on the selected chain; the recipient
	// receives exactly the amount. The gas leaves the ledger.
	f.ledger.On("Adjust", ctx, f.harness.tx, "user1", domain.ChainPolygon, decEq(dec("300").Add(gas).Neg())).
		Return(dec("199.9994645"), nil).Once()
	f.ledger.On("Adjust", ctx, f.harness.tx, "user2", domain.ChainPolygon, decEq(dec("300"))).
		Return(dec("1300"), nil).Once()

	var saved *domain.Transaction
	f.transactions.On("CreateTransaction", ctx, f.harness.tx, mock.AnythingOfType("*domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(2).(*domain.Transaction) }).
		Return(nil).Once()

	result, err := f.engine.Send(ctx, "user1", "user2", dec("300"))
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.Equal(t, domain.TransactionTypeTransfer, saved.Type)
	assert.Equal(t, domain.ChainPolygon, saved.Chain)
	assert.True(t, saved.Amount.Equal(dec("300")))
	assert.True(t, saved.GasCost.Equal(gas))
	assert.True(t, saved.BridgeCost.IsZero())
	assert.True(t, saved.TotalDeducted.Equal(dec("300").Add(gas)))
	assert.Equal(t, domain.TransactionStatusConfirmed, saved.Status)
	require.NotNil(t, saved.BlockNumber)
	assert.False(t, saved.Bridged)

	assert.False(t, result.Bridged)
	assert.Nil(t, result.BridgeTransaction)
	assert.True(t, result.TotalCost.Equal(gas))
	assert.Equal(t, 1, f.harness.committed)
	f.ledger.AssertExpectations(t)
}

func TestSendRecordFailureRollsBackBothLegs(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	userExists(f.users, "user2")

	gas := dec("3.675")
	f.selector.On("SelectChain", ctx, "user1", decEq(dec("50"))).
		Return(&domain.ChainSelection{Chain: domain.ChainEthereum, GasCost: gas}, nil).Once()
	f.submitter.On("Submit", ctx, domain.ChainEthereum, "user1", "user2", decEq(dec("50"))).
		Return(receipt(domain.ChainEthereum), nil).Once()
	f.ledger.On("Adjust", ctx, f.harness.tx, "user1", domain.ChainEthereum, decEq(dec("53.675").Neg())).
		Return(dec("946.325"), nil).Once()
	f.ledger.On("Adjust", ctx, f.harness.tx, "user2", domain.ChainEthereum, decEq(dec("50"))).
		Return(dec("2050"), nil).Once()
	f.transactions.On("CreateTransaction", ctx, f.harness.tx, mock.AnythingOfType("*domain.Transaction")).
		Return(assert.AnError).Once()

	_, err := f.engine.Send(ctx, "user1", "user2", dec("50"))
	require.Error(t, err)

	assert.Equal(t, 0, f.harness.committed)
	assert.Equal(t, 1, f.harness.rolledBack)
}

func TestSendSubmissionFailureLeavesLedgerUntouched(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	userExists(f.users, "user2")

	f.selector.On("SelectChain", ctx, "user1", decEq(dec("50"))).
		Return(&domain.ChainSelection{Chain: domain.ChainEthereum, GasCost: dec("3.675")}, nil).Once()
	f.submitter.On("Submit", ctx, domain.ChainEthereum, "user1", "user2", decEq(dec("50"))).
		Return(nil, assert.AnError).Once()

	_, err := f.engine.Send(ctx, "user1", "user2", dec("50"))
	assert.ErrorIs(t, err, util.ErrSubmissionFailed)

	// The submitter runs before the atomic scope opens.
	assert.Equal(t, 0, f.harness.begun)
	f.ledger.AssertNotCalled(t, "Adjust", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendInsufficientTotalSurfacesUnchanged(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	userExists(f.users, "user2")

	f.selector.On("SelectChain", ctx, "user1", decEq(dec("9999"))).
		Return(nil, util.ErrInsufficientTotalBalance).Once()

	_, err := f.engine.Send(ctx, "user1", "user2", dec("9999"))
	assert.ErrorIs(t, err, util.ErrInsufficientTotalBalance)
	f.router.AssertNotCalled(t, "FindRoutes", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func needsBridgeSelection(total, amount string) *domain.ChainSelection {
	return &domain.ChainSelection{
		NeedsBridge:    true,
		TotalBalance:   dec(total),
		RequiredAmount: dec(amount),
	}
}

// bridgeable cost fixture: polygon is the cheapest settlement chain.
func bridgeableCosts() []domain.GasCost {
	return []domain.GasCost{
		{Chain: domain.ChainEthereum, USDCost: dec("3.675")},
		{Chain: domain.ChainPolygon, USDCost: dec("0.5")},
		{Chain: domain.ChainArbitrum, USDCost: dec("0.75")},
	}
}

func TestSendBridgePathSettlesOnCheapestChain(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	userExists(f.users, "user2")

	f.selector.On("SelectChain", ctx, "user1", decEq(dec("300"))).
		Return(needsBridgeSelection("350", "300"), nil).Once()
	f.oracle.On("AllCosts").Return(bridgeableCosts()).Once()

	// amountToBridge = 300 + 0.5 gas on the polygon target.
	amountToBridge := dec("300.5")
	bridgeHash := NewBridgeTxHash()
	fromChain := domain.ChainEthereum
	toChain := domain.ChainPolygon

	f.router.On("FindRoutes", ctx, "user1", decEq(amountToBridge), domain.ChainPolygon).
		Return([]domain.BridgeRoute{{
			FromChain:       fromChain,
			ToChain:         toChain,
			BridgeCost:      dec("5"),
			MaxTransferable: dec("995"),
			CanFulfill:      true,
		}}, nil).Once()
	f.router.On("ExecuteBridge", ctx, "user1", fromChain, toChain, decEq(amountToBridge)).
		Return(&domain.Transaction{
			TxHash:        bridgeHash,
			Type:          domain.TransactionTypeBridge,
			FromUserID:    "user1",
			ToUserID:      "user1",
			Chain:         toChain,
			FromChain:     &fromChain,
			ToChain:       &toChain,
			Amount:        amountToBridge,
			BridgeCost:    dec("5"),
			TotalDeducted: dec("305.5"),
			Bridged:       true,
		}, nil).Once()
	f.submitter.On("Submit", ctx, domain.ChainPolygon, "user1", "user2", decEq(dec("300"))).
		Return(receipt(domain.ChainPolygon), nil).Once()

	f.ledger.On("Adjust", ctx, f.harness.tx, "user1", domain.ChainPolygon, decEq(dec("-300.5"))).
		Return(decimal.Zero, nil).Once()
	f.ledger.On("Adjust", ctx, f.harness.tx, "user2", domain.ChainPolygon, decEq(dec("300"))).
		Return(dec("1300"), nil).Once()

	var saved *domain.Transaction
	f.transactions.On("CreateTransaction", ctx, f.harness.tx, mock.AnythingOfType("*domain.Transaction")).
		Run(func(args mock.Arguments) { saved = args.Get(2).(*domain.Transaction) }).
		Return(nil).Once()

	result, err := f.engine.Send(ctx, "user1", "user2", dec("300"))
	require.NoError(t, err)

	require.NotNil(t, saved)
	assert.True(t, saved.Bridged)
	require.NotNil(t, saved.BridgeTxHash)
	assert.Equal(t, bridgeHash, *saved.BridgeTxHash)
	assert.Equal(t, domain.ChainPolygon, saved.Chain)
	assert.True(t, saved.GasCost.Equal(dec("0.5")))
	assert.True(t, saved.TotalDeducted.Equal(dec("300.5")))

	assert.True(t, result.Bridged)
	require.NotNil(t, result.BridgeTransaction)
	// Total cost combines the target-chain gas and the bridge fee.
	assert.True(t, result.TotalCost.Equal(dec("5.5")))
	assert.Equal(t, 1, f.harness.committed)
}

func TestSendBridgePathNoRoutes(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	userExists(f.users, "user2")

	f.selector.On("SelectChain", ctx, "user1", decEq(dec("300"))).
		Return(needsBridgeSelection("350", "300"), nil).Once()
	f.oracle.On("AllCosts").Return(bridgeableCosts()).Once()
	f.router.On("FindRoutes", ctx, "user1", decEq(dec("300.5")), domain.ChainPolygon).
		Return([]domain.BridgeRoute{}, nil).Once()

	_, err := f.engine.Send(ctx, "user1", "user2", dec("300"))
	assert.ErrorIs(t, err, util.ErrNoViableBridgeRoute)
	f.router.AssertNotCalled(t, "ExecuteBridge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendBridgePathBestRouteTooShort(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	userExists(f.users, "user2")

	f.selector.On("SelectChain", ctx, "user1", decEq(dec("300"))).
		Return(needsBridgeSelection("350", "300"), nil).Once()
	f.oracle.On("AllCosts").Return(bridgeableCosts()).Once()
	f.router.On("FindRoutes", ctx, "user1", decEq(dec("300.5")), domain.ChainPolygon).
		Return([]domain.BridgeRoute{{
			FromChain:       domain.ChainEthereum,
			ToChain:         domain.ChainPolygon,
			BridgeCost:      dec("5"),
			MaxTransferable: dec("195"),
			CanFulfill:      false,
			Shortfall:       dec("105.5"),
		}}, nil).Once()

	_, err := f.engine.Send(ctx, "user1", "user2", dec("300"))
	assert.ErrorIs(t, err, util.ErrInsufficientBalanceToBridge)
	f.router.AssertNotCalled(t, "ExecuteBridge", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetStatus(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)

	record := &domain.Transaction{TxHash: "0xabc", Type: domain.TransactionTypeTransfer}
	f.transactions.On("GetTransactionByHash", ctx, mock.Anything, "0xabc").
		Return(record, nil).Once()
	f.transactions.On("GetTransactionByHash", ctx, mock.Anything, "0xmissing").
		Return(nil, util.ErrNotFound).Once()

	got, err := f.engine.GetStatus(ctx, "0xabc")
	require.NoError(t, err)
	assert.Equal(t, record, got)

	_, err = f.engine.GetStatus(ctx, "0xmissing")
	assert.ErrorIs(t, err, util.ErrTransactionNotFound)
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()
	f := newEngineFixture(t)
	userExists(f.users, "user1")
	f.users.On("GetUserByID", mock.Anything, mock.Anything, "ghost").
		Return(nil, util.ErrNotFound)

	f.ledger.On("Totals", ctx, "user1").Return(map[domain.Chain]decimal.Decimal{
		domain.ChainEthereum: dec("1000.50"),
		domain.ChainPolygon:  dec("500.25"),
	}, dec("1500.75"), nil)

	byChain, total, err := f.engine.GetBalance(ctx, "user1")
	require.NoError(t, err)
	assert.True(t, total.Equal(dec("1500.75")))
	assert.Len(t, byChain, 2)

	_, _, err = f.engine.GetBalance(ctx, "ghost")
	assert.ErrorIs(t, err, util.ErrUserNotFound)
}
