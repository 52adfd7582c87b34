package usecase

import (
	"context"

	"melodia/internal/domain/entity"

	"github.com/google/uuid"
)

// ListAccountsInput controls pagination for account listings.
type ListAccountsInput struct {
	Page  int
	Limit int
}

// ListAccountsOutput is one page of accounts plus paging metadata.
type ListAccountsOutput struct {
	Accounts []*entity.Account
	Total    int64
	Page     int
	Limit    int
}

// ChangePasswordInput carries a credential change for one account. The old
// password must check out before the new one is stored.
type ChangePasswordInput struct {
	AccountID   uuid.UUID
	OldPassword string
	NewPassword string
}

// UpdateRolesInput replaces the role set of the given accounts.
type UpdateRolesInput struct {
	IDs   []uuid.UUID
	Roles entity.Roles
}

// AccountUsecase defines the account administration operations. All of
// them sit behind the admin role except ChangePassword, which any
// authenticated principal may call on itself.
type AccountUsecase interface {
	// List returns a page of accounts.
	List(ctx context.Context, input ListAccountsInput) (*ListAccountsOutput, error)

	// Get returns one account by id.
	Get(ctx context.Context, id uuid.UUID) (*entity.Account, error)

	// GetMany returns the accounts matching the given ids; missing ids
	// are absent from the result.
	GetMany(ctx context.Context, ids []uuid.UUID) ([]*entity.Account, error)

	// Delete removes the given accounts and reports how many existed.
	Delete(ctx context.Context, ids []uuid.UUID) (int64, error)

	// ChangePassword verifies the old credential and stores the new one.
	ChangePassword(ctx context.Context, input ChangePasswordInput) error

	// SetActive flips the verified flag for the given accounts and
	// reports how many were touched.
	SetActive(ctx context.Context, active bool, ids []uuid.UUID) (int64, error)

	// UpdateRoles replaces the role set for the given accounts. The new
	// set must be non-empty and drawn from the role enumeration.
	UpdateRoles(ctx context.Context, input UpdateRolesInput) (int64, error)
}
