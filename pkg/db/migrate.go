// pkg/db/migrate.go
package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schemaSQL string

// Migrate applies the database schema. All statements use IF NOT EXISTS,
// so running it on every startup is safe.
func Migrate(ctx context.Context, conn *sqlx.DB) error {
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// demo seed data: two users with balances spread across all chains.
var demoBalances = map[string]map[string]string{
	"user1": {
		"ethereum": "1000.50",
		"polygon":  "500.25",
		"arbitrum": "750.00",
		"optimism": "250.75",
		"solana":   "500.25",
	},
	"user2": {
		"ethereum": "2000.00",
		"polygon":  "1000.00",
		"arbitrum": "1500.00",
		"optimism": "500.00",
		"solana":   "350.00",
	},
}

// SeedDemoData inserts the demo users and their chain balances.
// Inserts are idempotent; existing rows are left untouched.
func SeedDemoData(ctx context.Context, conn *sqlx.DB) error {
	for userID, chains := range demoBalances {
		email := userID + "@example.com"
		_, err := conn.ExecContext(ctx,
			`INSERT INTO users (id, email) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			userID, email)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", userID, err)
		}

		for chain, amount := range chains {
			_, err := conn.ExecContext(ctx,
				`INSERT INTO balances (user_id, chain, amount) VALUES ($1, $2, $3)
                 ON CONFLICT (user_id, chain) DO NOTHING`,
				userID, chain, amount)
			if err != nil {
				return fmt.Errorf("failed to seed balance %s/%s: %w", userID, chain, err)
			}
		}
	}
	return nil
}
