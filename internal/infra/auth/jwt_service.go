package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"melodia/config"
	"melodia/internal/domain/entity"
	domainerrors "melodia/internal/domain/errors"
	"melodia/internal/domain/service"
	"melodia/internal/errors"
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Access and refresh tokens are signed with independent secrets, so one kind
// can never be replayed as the other.
type jwtService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService is the constructor for jwtService.
// It takes configuration values to create a new token service instance.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	if cfg.SecretKey.Access == cfg.SecretKey.Refresh {
		return nil, errors.New("access and refresh secrets must differ")
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		accessTTL:     cfg.Auth.AccessTokenTTL,
		refreshTTL:    cfg.Auth.RefreshTokenTTL,
	}, nil
}

// IssuePair signs the account's claim set twice: once per token kind, each
// with its own secret and lifetime.
func (s *jwtService) IssuePair(account *entity.Account) (*service.TokenPair, error) {
	accessToken, err := s.sign(account, service.TokenKindAccess, s.accessTTL, s.accessSecret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	refreshToken, err := s.sign(account, service.TokenKindRefresh, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign refresh token")
	}

	return &service.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Verify parses and validates a token string against the secret selected by
// kind. A token of the other kind fails signature verification here.
func (s *jwtService) Verify(tokenString string, kind service.TokenKind) (*service.Claims, error) {
	secret := s.accessSecret
	if kind == service.TokenKindRefresh {
		secret = s.refreshSecret
	}

	claims := &service.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		// Ensure the signing method is what we expect.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})

	switch {
	case err == nil && token.Valid:
		// fall through to the kind check below
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, domainerrors.ErrTokenExpired.WrapMessage("token expired")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return nil, domainerrors.ErrTokenMalformed.WrapMessage("failed to parse token structure")
	default:
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token signature verification failed")
	}

	// The embedded kind must match what the caller asked for.
	if claims.Kind != kind {
		return nil, domainerrors.ErrTokenInvalid.WrapMessage("token kind mismatch")
	}

	return claims, nil
}

// AccessTokenTTL returns the configured access token lifetime.
func (s *jwtService) AccessTokenTTL() time.Duration {
	return s.accessTTL
}

// RefreshTokenTTL returns the configured refresh token lifetime.
func (s *jwtService) RefreshTokenTTL() time.Duration {
	return s.refreshTTL
}

// sign builds the claim set and produces a signed compact token.
func (s *jwtService) sign(account *entity.Account, kind service.TokenKind, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &service.Claims{
		AccountID: account.ID,
		Email:     account.Email,
		Roles:     account.Roles,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   account.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString(secret)
}
