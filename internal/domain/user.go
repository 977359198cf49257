// internal/domain/user.go
package domain

import "time"

// User represents an account holder in the custodial ledger.
type User struct {
	ID        string    `db:"id" json:"id"` // External identifier, e.g. "user1"
	Email     *string   `db:"email" json:"email,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// NewUser creates a new User instance.
func NewUser(id string, email *string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        id,
		Email:     email,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
