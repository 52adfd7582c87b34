package handler

import (
	"net/http"
	"strconv"

	"melodia/internal/delivery/http/middleware"
	"melodia/internal/delivery/http/response"
	"melodia/internal/domain/entity"
	domainerrors "melodia/internal/domain/errors"
	"melodia/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccountHandler holds dependencies for account administration handlers.
type AccountHandler struct {
	uc usecase.AccountUsecase
}

// NewAccountHandler is the constructor for AccountHandler, injected by Fx.
func NewAccountHandler(uc usecase.AccountUsecase) *AccountHandler {
	return &AccountHandler{uc: uc}
}

type idsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type updateRolesRequest struct {
	IDs   []uuid.UUID `json:"ids" validate:"required,min=1"`
	Roles []string    `json:"roles" validate:"required,min=1"`
}

// List returns a page of accounts.
func (h *AccountHandler) List(c echo.Context) error {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	output, err := h.uc.List(c.Request().Context(), usecase.ListAccountsInput{
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]any{
		"accounts": toAccountViews(output.Accounts),
		"total":    output.Total,
		"page":     output.Page,
		"limit":    output.Limit,
	}, "")
}

// Get returns one account by id.
func (h *AccountHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return domainerrors.ErrValidation.WrapMessage("invalid account id")
	}

	account, err := h.uc.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountView(account), "")
}

// Lookup returns the accounts for a set of ids.
func (h *AccountHandler) Lookup(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid lookup input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	accounts, err := h.uc.GetMany(c.Request().Context(), req.IDs)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toAccountViews(accounts), "")
}

// Delete removes the given accounts.
func (h *AccountHandler) Delete(c echo.Context) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid delete input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	deleted, err := h.uc.Delete(c.Request().Context(), req.IDs)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"deleted": deleted}, "Accounts deleted")
}

// ChangePassword updates the authenticated principal's credential.
func (h *AccountHandler) ChangePassword(c echo.Context) error {
	account, ok := middleware.AccountFromContext(c)
	if !ok {
		return errors.New("password change reached without principal")
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid password input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	err := h.uc.ChangePassword(c.Request().Context(), usecase.ChangePasswordInput{
		AccountID:   account.ID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Password changed")
}

// Activate re-enables the given accounts.
func (h *AccountHandler) Activate(c echo.Context) error {
	return h.setActive(c, true, "Accounts activated")
}

// Deactivate disables the given accounts; their tokens stop working at the
// next guarded request.
func (h *AccountHandler) Deactivate(c echo.Context) error {
	return h.setActive(c, false, "Accounts deactivated")
}

func (h *AccountHandler) setActive(c echo.Context, active bool, message string) error {
	var req idsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	affected, err := h.uc.SetActive(c.Request().Context(), active, req.IDs)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"affected": affected}, message)
}

// UpdateRoles replaces the role set of the given accounts.
func (h *AccountHandler) UpdateRoles(c echo.Context) error {
	var req updateRolesRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid roles input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	affected, err := h.uc.UpdateRoles(c.Request().Context(), usecase.UpdateRolesInput{
		IDs:   req.IDs,
		Roles: entity.RolesFromStrings(req.Roles),
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"affected": affected}, "Roles updated")
}
