package auth

import (
	"context"
	"time"

	"melodia/config"
	"melodia/internal/domain/repository"
	"melodia/internal/domain/service"
	"melodia/internal/errors"

	"github.com/google/uuid"
)

// sessionValue is the marker stored under a live session key; presence of
// the key is the signal, not its value.
const sessionValue = "1"

type kvSessionStore struct {
	kv  repository.KVStore
	ttl time.Duration
}

// NewSessionStore creates a refresh-session store over the given KV backend.
// Session records expire with the refresh token lifetime, so the store never
// outlives the credential it tracks.
func NewSessionStore(cfg *config.Config, kv repository.KVStore) service.SessionStore {
	return &kvSessionStore{
		kv:  kv,
		ttl: cfg.Auth.RefreshTokenTTL,
	}
}

func (s *kvSessionStore) Put(ctx context.Context, accountID uuid.UUID, refreshToken string) error {
	if err := s.kv.Set(ctx, refreshTokenKey(accountID, refreshToken), sessionValue, s.ttl); err != nil {
		return errors.Wrap(err, "store refresh session")
	}

	return nil
}

func (s *kvSessionStore) Exists(ctx context.Context, accountID uuid.UUID, refreshToken string) (bool, error) {
	_, err := s.kv.Get(ctx, refreshTokenKey(accountID, refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "check refresh session")
	}

	return true, nil
}

func (s *kvSessionStore) Consume(ctx context.Context, accountID uuid.UUID, refreshToken string) (bool, error) {
	_, err := s.kv.GetDel(ctx, refreshTokenKey(accountID, refreshToken))
	if err != nil {
		if errors.Is(err, repository.ErrKeyNotFound) {
			return false, nil
		}

		return false, errors.Wrap(err, "consume refresh session")
	}

	return true, nil
}

func (s *kvSessionStore) Revoke(ctx context.Context, accountID uuid.UUID, refreshToken string) error {
	if _, err := s.kv.Delete(ctx, refreshTokenKey(accountID, refreshToken)); err != nil {
		return errors.Wrap(err, "revoke refresh session")
	}

	return nil
}
