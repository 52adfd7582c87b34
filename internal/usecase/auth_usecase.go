// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"melodia/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new account.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string
	Password string
}

// VerifyOTPInput carries an email verification attempt.
type VerifyOTPInput struct {
	Email string
	Code  string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created account's basic information.
type RegisterOutput struct {
	Account *entity.Account
}

// LoginOutput returns the generated tokens after a successful login or
// refresh, plus the account they belong to.
type LoginOutput struct {
	AccessToken  string
	RefreshToken string
	Account      *entity.Account
}

// AuthUsecase defines the interface for authentication and session
// lifecycle operations. This is the contract the delivery layer depends on.
type AuthUsecase interface {
	// Register creates an unverified account, stores a verification code
	// and mails it. Mail failure does not fail registration; ResendOTP is
	// the recovery path.
	Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error)

	// Login verifies credentials and the verified flag, then issues a
	// token pair and records the refresh session. Unknown email and wrong
	// password are indistinguishable to the caller.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// Refresh rotates the session: it consumes the presented refresh
	// token and issues a fresh pair. A replayed token fails with
	// ErrRefreshTokenRevoked.
	Refresh(ctx context.Context, accountID uuid.UUID, refreshToken string) (*LoginOutput, error)

	// Logout revokes the refresh session. Revoking an already-revoked
	// session is not an error.
	Logout(ctx context.Context, accountID uuid.UUID, refreshToken string) error

	// VerifyOTP consumes the code and flips the account to verified.
	VerifyOTP(ctx context.Context, input VerifyOTPInput) error

	// ResendOTP regenerates and re-mails the verification code,
	// invalidating any pending one.
	ResendOTP(ctx context.Context, email string) error
}
