// Package handler contains the HTTP handlers for the application.
package handler

import (
	"net/http"
	"time"

	"melodia/config"
	"melodia/internal/delivery/http/middleware"
	"melodia/internal/delivery/http/response"
	"melodia/internal/domain/service"
	"melodia/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AuthHandler holds dependencies for authentication handlers.
type AuthHandler struct {
	uc       usecase.AuthUsecase
	tokenSvc service.TokenService
	secure   bool
}

// NewAuthHandler is the constructor for AuthHandler, injected by Fx.
func NewAuthHandler(uc usecase.AuthUsecase, tokenSvc service.TokenService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		uc:       uc,
		tokenSvc: tokenSvc,
		// Cookies stay non-Secure only in local development.
		secure: cfg.Env.Env != "dev",
	}
}

type registerRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,numeric"`
}

type sendOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Register handles account registration.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Register(c.Request().Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toAccountView(output.Account), "Account registered, verification code sent")
}

// Login handles credential login and sets the token cookies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	output, err := h.uc.Login(c.Request().Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, map[string]any{
		"accessToken":  output.AccessToken,
		"refreshToken": output.RefreshToken,
		"account":      toAccountView(output.Account),
	}, "Login successful")
}

// Refresh rotates the session. The refresh guard has already verified the
// token and attached the principal.
func (h *AuthHandler) Refresh(c echo.Context) error {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		return errors.New("refresh handler reached without principal")
	}

	token, _ := middleware.RefreshTokenFromContext(c)

	output, err := h.uc.Refresh(c.Request().Context(), claims.AccountID, token)
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, map[string]any{
		"accessToken":  output.AccessToken,
		"refreshToken": output.RefreshToken,
	}, "Token refreshed")
}

// Logout revokes the presented session when it can and always clears the
// cookies, so even stale clients end up logged out.
func (h *AuthHandler) Logout(c echo.Context) error {
	claims, hasClaims := middleware.ClaimsFromContext(c)
	token, hasToken := middleware.RefreshTokenFromContext(c)

	if hasClaims && hasToken {
		if err := h.uc.Logout(c.Request().Context(), claims.AccountID, token); err != nil {
			return errors.WithStack(err)
		}
	}

	h.clearAuthCookies(c)

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// VerifyOTP confirms the email verification code.
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req verifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid verification input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	err := h.uc.VerifyOTP(c.Request().Context(), usecase.VerifyOTPInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Email verified")
}

// SendOTP re-sends the verification code.
func (h *AuthHandler) SendOTP(c echo.Context) error {
	var req sendOTPRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	if err := h.uc.ResendOTP(c.Request().Context(), req.Email); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Verification code sent")
}

// Profile returns the authenticated principal.
func (h *AuthHandler) Profile(c echo.Context) error {
	account, ok := middleware.AccountFromContext(c)
	if !ok {
		return errors.New("profile handler reached without principal")
	}

	return response.Success(c, http.StatusOK, toAccountView(account), "")
}

func (h *AuthHandler) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(h.authCookie(middleware.CookieAccessToken, accessToken, "/", h.tokenSvc.AccessTokenTTL()))
	c.SetCookie(h.authCookie(middleware.CookieRefreshToken, refreshToken, "/auth", h.tokenSvc.RefreshTokenTTL()))
}

func (h *AuthHandler) clearAuthCookies(c echo.Context) {
	c.SetCookie(h.authCookie(middleware.CookieAccessToken, "", "/", -time.Hour))
	c.SetCookie(h.authCookie(middleware.CookieRefreshToken, "", "/auth", -time.Hour))
}

func (h *AuthHandler) authCookie(name, value, path string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
}
