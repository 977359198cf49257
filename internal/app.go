// internal/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jmoiron/sqlx"

	router "swiftwallet/internal/api"
	"swiftwallet/internal/api/handler"
	"swiftwallet/internal/config"
	"swiftwallet/internal/repository"
	"swiftwallet/internal/repository/postgres"
	"swiftwallet/internal/service"
	"swiftwallet/internal/util"
	"swiftwallet/pkg/db"
)

// Application holds all the initialized components of the application.
type Application struct {
	Config *config.AppConfig
	Logger *slog.Logger
	DB     *sqlx.DB

	// Repositories
	UserRepository        repository.UserRepository
	BalanceRepository     repository.BalanceRepository
	TransactionRepository repository.TransactionRepository

	// Services
	Ledger            service.Ledger
	GasOracle         service.GasOracle
	ChainSelector     service.ChainSelector
	BridgeRouter      service.BridgeRouter
	ChainSubmitter    service.ChainSubmitter
	TransactionEngine service.TransactionEngine

	// HTTP API
	HTTPHandler http.Handler
}

// NewApplication creates a new Application instance.
func NewApplication() *Application {
	return &Application{}
}

// Initialize initializes all application components.
func (app *Application) Initialize(ctx context.Context) error {
	util.InitLogger()
	app.Logger = util.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	app.Config = cfg
	app.Logger.Info("Application configuration loaded successfully.")

	database, err := db.NewPostgresDB(app.Config.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = database
	app.Logger.Info("Database connection established.")

	if err := db.Migrate(ctx, app.DB); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	if app.Config.SeedDemoData {
		if err := db.SeedDemoData(ctx, app.DB); err != nil {
			return fmt.Errorf("failed to seed demo data: %w", err)
		}
		app.Logger.Info("Demo data seeded.")
	}

	app.UserRepository = postgres.NewUserRepository(app.DB)
	app.BalanceRepository = postgres.NewBalanceRepository(app.DB)
	app.TransactionRepository = postgres.NewTransactionRepository(app.DB)
	app.Logger.Info("Repositories initialized.")

	// Services share the concrete db.BeginTx/CommitTx/RollbackTx functions
	// from pkg/db; *sqlx.DB serves as both DBTxBeginner and DBExecutor.
	app.Ledger = service.NewLedger(
		app.DB, app.DB,
		app.BalanceRepository,
		db.BeginTx, db.CommitTx, db.RollbackTx,
	)
	app.GasOracle = service.NewGasOracle()
	app.ChainSelector = service.NewChainSelector(app.DB, app.UserRepository, app.Ledger, app.GasOracle)
	app.BridgeRouter = service.NewBridgeRouter(
		app.DB, app.DB,
		app.UserRepository, app.TransactionRepository, app.Ledger,
		service.DefaultBridgeCosts(),
		db.BeginTx, db.CommitTx, db.RollbackTx,
	)
	app.ChainSubmitter = service.NewSimulatedSubmitter()
	app.TransactionEngine = service.NewTransactionEngine(
		app.DB, app.DB,
		app.UserRepository, app.TransactionRepository,
		app.Ledger, app.ChainSelector, app.GasOracle, app.BridgeRouter, app.ChainSubmitter,
		db.BeginTx, db.CommitTx, db.RollbackTx,
		app.Logger,
	)
	app.Logger.Info("Services initialized.")

	ledgerHandler := handler.NewLedgerHandler(app.TransactionEngine, app.ChainSelector, app.GasOracle, app.Logger)
	app.HTTPHandler = router.NewRouter(ledgerHandler, app.Logger)
	app.Logger.Info("HTTP router and handlers initialized.")

	return nil
}

// Shutdown gracefully shuts down application resources.
func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("Shutting down application...")
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			app.Logger.Error("Failed to close database connection", "error", err)
			return fmt.Errorf("failed to close database connection: %w", err)
		}
		app.Logger.Info("Database connection closed.")
	}
	app.Logger.Info("Application shut down gracefully.")
	return nil
}
