// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Account is the identity record behind every catalog user. It carries the
// credential hash and the coarse role set used for authorization decisions;
// profile data (playlists, uploads, follows) lives in the catalog modules.
type Account struct {
	ID           uuid.UUID // The unique identifier for the account.
	Email        string    // Case-normalized login identifier, unique across accounts.
	PasswordHash string    // bcrypt hash of the credential. Never serialized to callers.
	FirstName    string
	LastName     string
	Roles        Roles     // Non-empty set drawn from the closed role enumeration.
	Verified     bool      // True once the email OTP has been confirmed.
	CreatedAt    time.Time // Timestamp of when this account was created.
	UpdatedAt    time.Time // Timestamp of the last modification.
}

// DisplayName returns the name used in outbound mail.
func (a *Account) DisplayName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// NormalizeEmail lowercases and trims an email so lookups and uniqueness
// checks are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
