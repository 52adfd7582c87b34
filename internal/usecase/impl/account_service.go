package impl

import (
	"context"
	"log/slog"

	deliverycontext "melodia/internal/delivery/context"
	"melodia/internal/domain/entity"
	domainerrors "melodia/internal/domain/errors"
	"melodia/internal/domain/repository"
	"melodia/internal/domain/service"
	"melodia/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	accountRepo repository.AccountRepository
	hasher      service.PasswordHasher
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	AccountRepo repository.AccountRepository
	Hasher      service.PasswordHasher
	Logger      *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		accountRepo: params.AccountRepo,
		hasher:      params.Hasher,
		logger:      params.Logger,
	}
}

func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// List returns a page of accounts.
func (srv *accountService) List(ctx context.Context, input usecase.ListAccountsInput) (*usecase.ListAccountsOutput, error) {
	accounts, total, err := srv.accountRepo.List(ctx, repository.ListAccountsOptions{
		Page:  input.Page,
		Limit: input.Limit,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list accounts")
	}

	return &usecase.ListAccountsOutput{
		Accounts: accounts,
		Total:    total,
		Page:     input.Page,
		Limit:    input.Limit,
	}, nil
}

// Get returns one account by id.
func (srv *accountService) Get(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	account, err := srv.accountRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrAccountNotFound.WrapMessage("account not found")
		}

		return nil, errors.Wrap(err, "failed to find account")
	}

	return account, nil
}

// GetMany returns the accounts matching the given ids.
func (srv *accountService) GetMany(ctx context.Context, ids []uuid.UUID) ([]*entity.Account, error) {
	accounts, err := srv.accountRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find accounts")
	}

	return accounts, nil
}

// Delete removes the given accounts.
func (srv *accountService) Delete(ctx context.Context, ids []uuid.UUID) (int64, error) {
	deleted, err := srv.accountRepo.Delete(ctx, ids...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to delete accounts")
	}

	srv.log(ctx).Info("Accounts deleted", slog.Int64("count", deleted))

	return deleted, nil
}

// ChangePassword verifies the old credential and stores the new one.
func (srv *accountService) ChangePassword(ctx context.Context, input usecase.ChangePasswordInput) error {
	account, err := srv.accountRepo.FindByID(ctx, input.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return domainerrors.ErrAccountNotFound.WrapMessage("account not found")
		}

		return errors.Wrap(err, "failed to find account for password change")
	}

	if !srv.hasher.Check(input.OldPassword, account.PasswordHash) {
		srv.log(ctx).Warn("Old password mismatch during password change", slog.Any("accountID", account.ID))

		return domainerrors.ErrInvalidCredentials.WrapMessage("old password does not match")
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return domainerrors.ErrHashingFailed.WrapMessage("failed to hash new password")
	}

	if err := srv.accountRepo.UpdatePasswordHash(ctx, account.ID, newHash); err != nil {
		return errors.Wrap(err, "failed to store new password hash")
	}

	srv.log(ctx).Info("Password changed", slog.Any("accountID", account.ID))

	return nil
}

// SetActive flips the verified flag for the given accounts.
func (srv *accountService) SetActive(ctx context.Context, active bool, ids []uuid.UUID) (int64, error) {
	affected, err := srv.accountRepo.SetVerified(ctx, active, ids...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to update active state")
	}

	srv.log(ctx).Info("Account active state updated",
		slog.Bool("active", active), slog.Int64("count", affected))

	return affected, nil
}

// UpdateRoles replaces the role set for the given accounts.
func (srv *accountService) UpdateRoles(ctx context.Context, input usecase.UpdateRolesInput) (int64, error) {
	if len(input.Roles) == 0 {
		return 0, domainerrors.ErrValidation.WrapMessage("role set must not be empty")
	}

	for _, role := range input.Roles {
		if !role.IsValid() {
			return 0, domainerrors.ErrValidation.WrapMessage("unknown role: " + string(role))
		}
	}

	affected, err := srv.accountRepo.UpdateRoles(ctx, input.Roles, input.IDs...)
	if err != nil {
		return 0, errors.Wrap(err, "failed to update roles")
	}

	srv.log(ctx).Info("Roles updated", slog.Int64("count", affected))

	return affected, nil
}
