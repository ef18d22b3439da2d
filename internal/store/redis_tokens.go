package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mlazarev/redirector/internal/dao"
)

// RedisTokenStore keeps single-use verification and password-reset
// tokens in Redis with a TTL. Tokens are consumed atomically with
// GETDEL, so a token can never be redeemed twice.
type RedisTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisTokenStore creates a token store over the given client.
func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{
		client: client,
		prefix: "token:",
	}
}

// Save stores a token of the given kind for a user, expiring after
// ttl.
func (s *RedisTokenStore) Save(ctx context.Context, kind, token string, userID int64, ttl time.Duration) error {
	return s.client.Set(ctx, s.key(kind, token), userID, ttl).Err()
}

// Consume redeems a token and returns the user it was issued for.
// Unknown or expired tokens return dao.ErrNotFound.
func (s *RedisTokenStore) Consume(ctx context.Context, kind, token string) (int64, error) {
	value, err := s.client.GetDel(ctx, s.key(kind, token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, dao.ErrNotFound
		}

		return 0, err
	}

	userID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, dao.ErrNotFound
	}

	return userID, nil
}

func (s *RedisTokenStore) key(kind, token string) string {
	return s.prefix + kind + ":" + token
}
