// internal/service/mocks_test.go
package service

import (
	"context"
	"database/sql"

	"swiftwallet/internal/domain"
	"swiftwallet/internal/repository"
	"swiftwallet/pkg/db"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockDBExecutor is a mock implementation of repository.DBExecutor.
type MockDBExecutor struct {
	mock.Mock
}

func (m *MockDBExecutor) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	called := m.Called(ctx, dest, query, args)
	return called.Error(0)
}

func (m *MockDBExecutor) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	called := m.Called(ctx, dest, query, args)
	return called.Error(0)
}

func (m *MockDBExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	called := m.Called(ctx, query, args)
	return called.Get(0).(sql.Result), called.Error(1)
}

func (m *MockDBExecutor) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	m.Called(ctx, query, args)
	return &sql.Row{}
}

// fakeTx satisfies both db.TxController and repository.DBExecutor so it can
// stand in for *sqlx.Tx in service tests.
type fakeTx struct {
	MockDBExecutor
}

func (f *fakeTx) Commit() error   { return nil }
func (f *fakeTx) Rollback() error { return nil }

// txHarness supplies the injected transaction-control functions and counts
// how they were used. Rollbacks after a successful commit are ignored, the
// same way sql.ErrTxDone makes deferred rollbacks no-ops.
type txHarness struct {
	tx         *fakeTx
	beginErr   error
	commitErr  error
	begun      int
	committed  int
	rolledBack int
}

func newTxHarness() *txHarness {
	return &txHarness{tx: &fakeTx{}}
}

func (h *txHarness) begin(ctx context.Context, _ db.DBTxBeginner) (db.TxController, error) {
	if h.beginErr != nil {
		return nil, h.beginErr
	}
	h.begun++
	return h.tx, nil
}

func (h *txHarness) commit(_ db.TxController) error {
	if h.commitErr != nil {
		return h.commitErr
	}
	h.committed++
	return nil
}

func (h *txHarness) rollback(_ db.TxController) {
	if h.committed == 0 {
		h.rolledBack++
	}
}

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, q repository.DBExecutor, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, q repository.DBExecutor, id string) (*domain.User, error) {
	args := m.Called(ctx, q, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

// MockBalanceRepository is a mock implementation of repository.BalanceRepository.
type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) GetForUpdate(ctx context.Context, q repository.DBExecutor, userID string, chain domain.Chain) (*domain.Balance, error) {
	args := m.Called(ctx, q, userID, chain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Balance), args.Error(1)
}

func (m *MockBalanceRepository) SetAmount(ctx context.Context, q repository.DBExecutor, balanceID int64, amount decimal.Decimal) error {
	args := m.Called(ctx, q, balanceID, amount)
	return args.Error(0)
}

func (m *MockBalanceRepository) ListByUser(ctx context.Context, q repository.DBExecutor, userID string) ([]domain.Balance, error) {
	args := m.Called(ctx, q, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Balance), args.Error(1)
}

// MockTransactionRepository is a mock implementation of repository.TransactionRepository.
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) CreateTransaction(ctx context.Context, q repository.DBExecutor, transaction *domain.Transaction) error {
	args := m.Called(ctx, q, transaction)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetTransactionByHash(ctx context.Context, q repository.DBExecutor, txHash string) (*domain.Transaction, error) {
	args := m.Called(ctx, q, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// MockLedger is a mock implementation of Ledger.
type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) Adjust(ctx context.Context, scope repository.DBExecutor, userID string, chain domain.Chain, delta decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, scope, userID, chain, delta)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Totals(ctx context.Context, userID string) (map[domain.Chain]decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, decimal.Zero, args.Error(2)
	}
	return args.Get(0).(map[domain.Chain]decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

// MockGasOracle is a mock implementation of GasOracle.
type MockGasOracle struct {
	mock.Mock
}

func (m *MockGasOracle) CostOf(chain domain.Chain) (domain.GasCost, error) {
	args := m.Called(chain)
	return args.Get(0).(domain.GasCost), args.Error(1)
}

func (m *MockGasOracle) AllCosts() []domain.GasCost {
	args := m.Called()
	return args.Get(0).([]domain.GasCost)
}

// MockChainSelector is a mock implementation of ChainSelector.
type MockChainSelector struct {
	mock.Mock
}

func (m *MockChainSelector) SelectChain(ctx context.Context, userID string, amount decimal.Decimal) (*domain.ChainSelection, error) {
	args := m.Called(ctx, userID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChainSelection), args.Error(1)
}

// MockBridgeRouter is a mock implementation of BridgeRouter.
type MockBridgeRouter struct {
	mock.Mock
}

func (m *MockBridgeRouter) BridgeCost(from, to domain.Chain) (decimal.Decimal, bool) {
	args := m.Called(from, to)
	return args.Get(0).(decimal.Decimal), args.Bool(1)
}

func (m *MockBridgeRouter) FindRoutes(ctx context.Context, userID string, targetAmount decimal.Decimal, targetChain domain.Chain) ([]domain.BridgeRoute, error) {
	args := m.Called(ctx, userID, targetAmount, targetChain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BridgeRoute), args.Error(1)
}

func (m *MockBridgeRouter) ExecuteBridge(ctx context.Context, userID string, fromChain, toChain domain.Chain, amount decimal.Decimal) (*domain.Transaction, error) {
	args := m.Called(ctx, userID, fromChain, toChain, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

// MockChainSubmitter is a mock implementation of ChainSubmitter.
type MockChainSubmitter struct {
	mock.Mock
}

func (m *MockChainSubmitter) Submit(ctx context.Context, chain domain.Chain, fromUserID, toUserID string, amount decimal.Decimal) (*domain.Receipt, error) {
	args := m.Called(ctx, chain, fromUserID, toUserID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

// decEq matches a decimal argument by value rather than representation.
func decEq(want decimal.Decimal) interface{} {
	return mock.MatchedBy(func(got decimal.Decimal) bool {
		return got.Equal(want)
	})
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
