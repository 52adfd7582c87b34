// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"

	"melodia/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Domain-specific errors for account persistence.
var (
	// ErrAccountNotFound is returned when no account matches the lookup.
	ErrAccountNotFound = errors.New("account not found")
	// ErrEmailTaken is returned when creating an account with an email
	// that already exists.
	ErrEmailTaken = errors.New("email already taken")
)

// ListAccountsOptions controls pagination for account listings.
type ListAccountsOptions struct {
	Page  int // 1-based page number; values below 1 are treated as 1.
	Limit int // Page size; values below 1 fall back to the repository default.
}

// AccountRepository defines the persistence contract for identity records.
// The authentication core consumes it only through this interface; the
// concrete store is an external collaborator.
type AccountRepository interface {
	// Create persists a new account and fills in generated fields (ID, timestamps).
	Create(ctx context.Context, account *entity.Account) error

	// FindByEmail retrieves an account by its normalized email.
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)

	// FindByID retrieves an account by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// FindByIDs retrieves all accounts matching the given IDs.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Account, error)

	// List returns a page of accounts plus the total count.
	List(ctx context.Context, opts ListAccountsOptions) ([]*entity.Account, int64, error)

	// UpdatePasswordHash replaces the stored credential hash.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error

	// SetVerified flips the verified flag for the given accounts and
	// returns how many rows were touched.
	SetVerified(ctx context.Context, verified bool, ids ...uuid.UUID) (int64, error)

	// UpdateRoles replaces the role set for the given accounts.
	UpdateRoles(ctx context.Context, roles entity.Roles, ids ...uuid.UUID) (int64, error)

	// Delete removes the given accounts and returns how many rows were removed.
	Delete(ctx context.Context, ids ...uuid.UUID) (int64, error)
}
