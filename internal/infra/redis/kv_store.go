package redis

import (
	"context"
	"time"

	"melodia/internal/domain/repository"
	"melodia/internal/errors"

	"github.com/redis/go-redis/v9"
)

// compareAndDeleteScript deletes a key only when its current value matches
// the supplied one. Running it as a script keeps the read and the delete in
// one atomic step on the server.
var compareAndDeleteScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type kvStore struct {
	client *redis.Client
}

// NewKVStore wraps a Redis client as the TTL key-value store used for
// session and verification-code records.
func NewKVStore(client *redis.Client) repository.KVStore {
	return &kvStore{client: client}
}

func (s *kvStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}

	return nil
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrKeyNotFound
		}

		return "", errors.Wrap(err, "redis get")
	}

	return value, nil
}

func (s *kvStore) Delete(ctx context.Context, key string) (bool, error) {
	deleted, err := s.client.Del(ctx, key).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis del")
	}

	return deleted > 0, nil
}

func (s *kvStore) GetDel(ctx context.Context, key string) (string, error) {
	value, err := s.client.GetDel(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrKeyNotFound
		}

		return "", errors.Wrap(err, "redis getdel")
	}

	return value, nil
}

func (s *kvStore) CompareAndDelete(ctx context.Context, key, expected string) (bool, error) {
	deleted, err := compareAndDeleteScript.Run(ctx, s.client, []string{key}, expected).Int()
	if err != nil {
		return false, errors.Wrap(err, "redis compare-and-delete")
	}

	return deleted > 0, nil
}
