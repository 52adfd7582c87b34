// Package middleware contains the HTTP middleware chain, including the
// access-control pipeline guarding every route.
package middleware

import (
	"strings"

	"melodia/internal/domain/entity"
	domainerrors "melodia/internal/domain/errors"
	"melodia/internal/domain/repository"
	"melodia/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Cookie names shared between the guards (which read them) and the auth
// handlers (which set and clear them).
const (
	CookieAccessToken  = "Authentication"
	CookieRefreshToken = "Refresh"
)

// Context keys for the attached principal.
const (
	contextKeyAccount      = "auth_account"
	contextKeyClaims       = "auth_claims"
	contextKeyRefreshToken = "auth_refresh_token"
)

type requirementKind int

const (
	requirePublic requirementKind = iota
	requireAuthenticated
	requireRoles
)

// Requirement is the access rule for a route group. It is a closed set of
// variants rather than an open strategy hierarchy: public, authenticated,
// or authenticated-with-one-of-these-roles.
type Requirement struct {
	kind  requirementKind
	roles entity.Roles
}

// Public allows anyone through. A valid access token still attaches the
// principal so handlers can personalize responses.
func Public() Requirement {
	return Requirement{kind: requirePublic}
}

// Authenticated requires a valid access token and a live account.
func Authenticated() Requirement {
	return Requirement{kind: requireAuthenticated}
}

// Roles requires authentication plus at least one of the given roles.
func Roles(roles ...entity.Role) Requirement {
	return Requirement{kind: requireRoles, roles: roles}
}

// AuthMiddleware is the access-control pipeline. Every route passes through
// Require with its Requirement; refresh and logout have dedicated guards
// because their credential is the refresh token, not the access token.
type AuthMiddleware struct {
	tokenSvc     service.TokenService
	sessionStore service.SessionStore
	accountRepo  repository.AccountRepository
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(
	tokenSvc service.TokenService,
	sessionStore service.SessionStore,
	accountRepo repository.AccountRepository,
) *AuthMiddleware {
	return &AuthMiddleware{
		tokenSvc:     tokenSvc,
		sessionStore: sessionStore,
		accountRepo:  accountRepo,
	}
}

// Require builds the middleware enforcing the given requirement.
func (m *AuthMiddleware) Require(req Requirement) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if req.kind == requirePublic {
				// Best effort: a bad or missing token is not an error
				// on a public route.
				if account, claims, err := m.resolveAccessPrincipal(c); err == nil {
					attachPrincipal(c, account, claims)
				}

				return next(c)
			}

			account, claims, err := m.resolveAccessPrincipal(c)
			if err != nil {
				return err
			}

			if req.kind == requireRoles && !account.Roles.Intersects(req.roles) {
				return domainerrors.ErrForbidden.WrapMessage("insufficient role")
			}

			attachPrincipal(c, account, claims)

			return next(c)
		}
	}
}

// RequireRefresh guards the refresh endpoint. The credential is the
// refresh cookie; a structurally valid token whose session record is gone
// counts as revoked.
func (m *AuthMiddleware) RequireRefresh(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractCookieToken(c, CookieRefreshToken)
		if token == "" {
			return domainerrors.ErrUnauthenticated.WrapMessage("refresh token is missing")
		}

		claims, err := m.tokenSvc.Verify(token, service.TokenKindRefresh)
		if err != nil {
			return errors.WithStack(err)
		}

		live, err := m.sessionStore.Exists(c.Request().Context(), claims.AccountID, token)
		if err != nil {
			return errors.Wrap(err, "failed to check refresh session")
		}
		if !live {
			return domainerrors.ErrRefreshTokenRevoked.WrapMessage("refresh session not found")
		}

		account, err := m.loadAccount(c, claims)
		if err != nil {
			return err
		}

		attachPrincipal(c, account, claims)
		c.Set(contextKeyRefreshToken, token)

		return next(c)
	}
}

// AttachLogout is the lenient logout guard: it attaches whatever principal
// it can derive but never rejects the request, so clients holding expired
// tokens can still reset their state.
func (m *AuthMiddleware) AttachLogout(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := extractCookieToken(c, CookieRefreshToken)
		if token == "" {
			return next(c)
		}

		claims, err := m.tokenSvc.Verify(token, service.TokenKindRefresh)
		if err != nil {
			return next(c)
		}

		c.Set(contextKeyClaims, claims)
		c.Set(contextKeyRefreshToken, token)

		return next(c)
	}
}

// resolveAccessPrincipal extracts, verifies and resolves the access token
// into a live account.
func (m *AuthMiddleware) resolveAccessPrincipal(c echo.Context) (*entity.Account, *service.Claims, error) {
	token := extractAccessToken(c)
	if token == "" {
		return nil, nil, domainerrors.ErrUnauthenticated.WrapMessage("access token is missing")
	}

	claims, err := m.tokenSvc.Verify(token, service.TokenKindAccess)
	if err != nil {
		return nil, nil, errors.WithStack(err)
	}

	account, err := m.loadAccount(c, claims)
	if err != nil {
		return nil, nil, err
	}

	return account, claims, nil
}

func (m *AuthMiddleware) loadAccount(c echo.Context, claims *service.Claims) (*entity.Account, error) {
	account, err := m.accountRepo.FindByID(c.Request().Context(), claims.AccountID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, domainerrors.ErrUnauthenticated.WrapMessage("account no longer exists")
		}

		return nil, errors.Wrap(err, "failed to load principal account")
	}

	// Deactivated accounts keep their tokens until expiry; the guard is
	// what makes deactivation take effect immediately.
	if !account.Verified {
		return nil, domainerrors.ErrAccountNotVerified.WrapMessage("account is deactivated")
	}

	return account, nil
}

func attachPrincipal(c echo.Context, account *entity.Account, claims *service.Claims) {
	c.Set(contextKeyAccount, account)
	c.Set(contextKeyClaims, claims)
}

// AccountFromContext returns the authenticated account attached by the
// pipeline, if any.
func AccountFromContext(c echo.Context) (*entity.Account, bool) {
	account, ok := c.Get(contextKeyAccount).(*entity.Account)

	return account, ok
}

// ClaimsFromContext returns the verified claims attached by the pipeline.
func ClaimsFromContext(c echo.Context) (*service.Claims, bool) {
	claims, ok := c.Get(contextKeyClaims).(*service.Claims)

	return claims, ok
}

// RefreshTokenFromContext returns the raw refresh token the guard read
// from the cookie.
func RefreshTokenFromContext(c echo.Context) (string, bool) {
	token, ok := c.Get(contextKeyRefreshToken).(string)

	return token, ok && token != ""
}

// extractAccessToken reads the access token from the httpOnly cookie or,
// failing that, the Authorization header.
func extractAccessToken(c echo.Context) string {
	if token := extractCookieToken(c, CookieAccessToken); token != "" {
		return token
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if token := strings.TrimPrefix(authHeader, "Bearer "); token != authHeader {
		return strings.TrimSpace(token)
	}

	return ""
}

func extractCookieToken(c echo.Context, name string) string {
	cookie, err := c.Cookie(name)
	if err != nil || cookie == nil {
		return ""
	}

	return cookie.Value
}
