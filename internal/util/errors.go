// internal/util/errors.go
package util

import "errors"

// Common application-specific errors.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrSenderNotFound      = errors.New("sender not found")
	ErrRecipientNotFound   = errors.New("recipient not found")
	ErrTransactionNotFound = errors.New("transaction not found")

	ErrInvalidInput  = errors.New("invalid input provided")
	ErrInvalidAmount = errors.New("amount must be greater than 0")

	// ErrInsufficientBalance means a single (user, chain) balance cannot
	// cover a debit. ErrInsufficientTotalBalance means no chain and no
	// bridge combination can cover the requested amount.
	ErrInsufficientBalance      = errors.New("insufficient balance")
	ErrInsufficientTotalBalance = errors.New("insufficient total balance")

	ErrNoViableBridgeRoute         = errors.New("no viable bridge routes available")
	ErrInsufficientBalanceToBridge = errors.New("insufficient balance to bridge")

	ErrSubmissionFailed = errors.New("chain submission failed")
	ErrIntegrity        = errors.New("atomic scope could not commit")
)

// IsError reports whether any error in err's chain matches target.
func IsError(err, target error) bool {
	return errors.Is(err, target)
}
