package service

import (
	"time"

	"melodia/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes the two token flavors. Each kind is signed with
// its own secret, so a token of one kind never verifies as the other.
type TokenKind string

const (
	// TokenKindAccess is the short-lived credential presented on every request.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is the long-lived credential exchanged for new pairs.
	TokenKindRefresh TokenKind = "refresh"
)

// Claims is the signed claim set embedded in both token kinds. The payload
// shape is identical for access and refresh tokens; only secret, expiry and
// Kind differ.
type Claims struct {
	AccountID uuid.UUID
	Email     string
	Roles     entity.Roles
	Kind      TokenKind
	jwt.RegisteredClaims
}

// TokenPair bundles a freshly issued access/refresh pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService defines the interface for issuing and verifying signed
// time-boxed credential tokens.
type TokenService interface {
	// IssuePair signs the payload twice: once per kind, each with its own
	// secret and lifetime. Pure function of payload and configuration.
	IssuePair(account *entity.Account) (*TokenPair, error)

	// Verify parses the token and checks signature, expiry and kind
	// against the secret selected by kind. Failures map to the
	// domain token errors (expired / invalid / malformed).
	Verify(tokenString string, kind TokenKind) (*Claims, error)

	// AccessTokenTTL returns the configured access token lifetime.
	AccessTokenTTL() time.Duration

	// RefreshTokenTTL returns the configured refresh token lifetime.
	RefreshTokenTTL() time.Duration
}
