// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"melodia/internal/domain/entity"
	domainerrors "melodia/internal/domain/errors"
	"melodia/internal/domain/repository"
	"melodia/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const defaultListLimit = 20

// accountRepository implements the repository.AccountRepository interface.
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository is the constructor for accountRepository.
func NewAccountRepository(db *gorm.DB) repository.AccountRepository {
	return &accountRepository{
		db: db,
	}
}

// Create persists a new account and fills in generated fields.
func (repo *accountRepository) Create(ctx context.Context, account *entity.Account) error {
	accountM := model.FromAccountDomain(account)

	if err := repo.db.WithContext(ctx).Create(accountM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrEmailTaken
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidation.WrapMessage("missing required account information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create account")
	}

	// Update the entity with generated values
	account.ID = accountM.ID
	account.CreatedAt = accountM.CreatedAt
	account.UpdatedAt = accountM.UpdatedAt

	return nil
}

// FindByEmail retrieves an account by its normalized email.
func (repo *accountRepository) FindByEmail(ctx context.Context, email string) (*entity.Account, error) {
	var accountM model.AccountModel

	if err := repo.db.WithContext(ctx).
		Where("email = ?", email).
		First(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by email")
	}

	return model.ToAccountDomain(&accountM), nil
}

// FindByID retrieves an account by its unique ID.
func (repo *accountRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Account, error) {
	var accountM model.AccountModel

	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&accountM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrAccountNotFound
		}

		return nil, errors.Wrap(err, "failed to find account by ID")
	}

	return model.ToAccountDomain(&accountM), nil
}

// FindByIDs retrieves all accounts matching the given IDs. Missing IDs are
// simply absent from the result; the caller decides whether that matters.
func (repo *accountRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Account, error) {
	if len(ids) == 0 {
		return []*entity.Account{}, nil
	}

	var accountModels []*model.AccountModel

	if err := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&accountModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find accounts by IDs")
	}

	accounts := make([]*entity.Account, 0, len(accountModels))
	for _, accountM := range accountModels {
		accounts = append(accounts, model.ToAccountDomain(accountM))
	}

	return accounts, nil
}

// List returns a page of accounts ordered by creation time plus the total count.
func (repo *accountRepository) List(ctx context.Context, opts repository.ListAccountsOptions) ([]*entity.Account, int64, error) {
	page := opts.Page
	if page < 1 {
		page = 1
	}

	limit := opts.Limit
	if limit < 1 {
		limit = defaultListLimit
	}

	var total int64
	if err := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to count accounts")
	}

	var accountModels []*model.AccountModel
	if err := repo.db.WithContext(ctx).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&accountModels).Error; err != nil {
		return nil, 0, errors.Wrap(err, "failed to list accounts")
	}

	accounts := make([]*entity.Account, 0, len(accountModels))
	for _, accountM := range accountModels {
		accounts = append(accounts, model.ToAccountDomain(accountM))
	}

	return accounts, total, nil
}

// UpdatePasswordHash replaces the stored credential hash.
func (repo *accountRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id = ?", id).
		Update("password_hash", passwordHash)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update password hash")
	}

	if result.RowsAffected == 0 {
		return repository.ErrAccountNotFound
	}

	return nil
}

// SetVerified flips the verified flag for the given accounts.
func (repo *accountRepository) SetVerified(ctx context.Context, verified bool, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id IN ?", ids).
		Update("verified", verified)

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to update verified flag")
	}

	return result.RowsAffected, nil
}

// UpdateRoles replaces the role set for the given accounts.
func (repo *accountRepository) UpdateRoles(ctx context.Context, roles entity.Roles, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := repo.db.WithContext(ctx).
		Model(&model.AccountModel{}).
		Where("id IN ?", ids).
		Update("roles", roles.ToStrings())

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to update roles")
	}

	return result.RowsAffected, nil
}

// Delete removes the given accounts.
func (repo *accountRepository) Delete(ctx context.Context, ids ...uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := repo.db.WithContext(ctx).
		Where("id IN ?", ids).
		Delete(&model.AccountModel{})

	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete accounts")
	}

	return result.RowsAffected, nil
}
