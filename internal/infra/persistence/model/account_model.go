// Package model contains the GORM table mappings for the persistence layer.
package model

import (
	"time"

	"melodia/internal/domain/entity"

	"github.com/google/uuid"
)

// AccountModel mirrors the 'accounts' table. PostgreSQL generates UUIDs via
// uuid_generate_v7(), so insertion order stays roughly index-ordered.
type AccountModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Email        string    `gorm:"type:varchar(255);unique;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	FirstName    string    `gorm:"type:varchar(100);not null"`
	LastName     string    `gorm:"type:varchar(100);not null"`
	Roles        []string  `gorm:"type:jsonb;serializer:json;not null"`
	Verified     bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName explicitly sets the table name for GORM.
func (AccountModel) TableName() string {
	return "accounts"
}

// FromAccountDomain maps a domain account onto its table representation.
func FromAccountDomain(account *entity.Account) *AccountModel {
	return &AccountModel{
		ID:           account.ID,
		Email:        account.Email,
		PasswordHash: account.PasswordHash,
		FirstName:    account.FirstName,
		LastName:     account.LastName,
		Roles:        account.Roles.ToStrings(),
		Verified:     account.Verified,
		CreatedAt:    account.CreatedAt,
		UpdatedAt:    account.UpdatedAt,
	}
}

// ToAccountDomain maps a table row back into the domain entity.
func ToAccountDomain(accountM *AccountModel) *entity.Account {
	return &entity.Account{
		ID:           accountM.ID,
		Email:        accountM.Email,
		PasswordHash: accountM.PasswordHash,
		FirstName:    accountM.FirstName,
		LastName:     accountM.LastName,
		Roles:        entity.RolesFromStrings(accountM.Roles),
		Verified:     accountM.Verified,
		CreatedAt:    accountM.CreatedAt,
		UpdatedAt:    accountM.UpdatedAt,
	}
}
