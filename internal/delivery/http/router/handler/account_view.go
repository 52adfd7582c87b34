package handler

import (
	"time"

	"melodia/internal/domain/entity"

	"github.com/google/uuid"
)

// accountView is the caller-facing shape of an account. The credential
// hash never leaves the service.
type accountView struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Roles     []string  `json:"roles"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toAccountView(account *entity.Account) accountView {
	return accountView{
		ID:        account.ID,
		Email:     account.Email,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		Roles:     account.Roles.ToStrings(),
		Verified:  account.Verified,
		CreatedAt: account.CreatedAt,
		UpdatedAt: account.UpdatedAt,
	}
}

func toAccountViews(accounts []*entity.Account) []accountView {
	views := make([]accountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, toAccountView(account))
	}

	return views
}
