// Package auth handles accounts and session tokens for ledger owners.
//
// Ledger participants are names and never log in; only the person keeping
// the books has an account.
package auth

import (
	"context"

	"github.com/mmynk/sharedpot/internal/models"
)

// Authenticator registers and verifies ledger owners.
type Authenticator interface {
	// Register creates an account. The credential's format depends on the
	// implementation.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate returns the account matching email and credential.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)
}
