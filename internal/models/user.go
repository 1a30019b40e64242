package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account that can own ledgers. Ledger participants are plain
// names and need not have an account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the login address, stored lower-cased and unique.
	Email string

	// DisplayName is shown in place of the email.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string

	CreatedAt int64
	UpdatedAt int64
}

// NewUser returns a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
