package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	previewKeyPrefix = "lead_import:preview:"
	lockKeyPrefix    = "lead_import:lock:"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisStore keeps previews as JSON values with a TTL.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a store on client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, preview *Preview, ttl time.Duration) error {
	data, err := json.Marshal(preview)
	if err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	return s.client.Set(ctx, previewKeyPrefix+preview.Key().String(), data, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, key Key) (*Preview, error) {
	data, err := s.client.Get(ctx, previewKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var preview Preview
	if err := json.Unmarshal(data, &preview); err != nil {
		return nil, fmt.Errorf("decode preview: %w", err)
	}
	return &preview, nil
}

func (s *RedisStore) Delete(ctx context.Context, key Key) error {
	return s.client.Del(ctx, previewKeyPrefix+key.String()).Err()
}

func (s *RedisStore) Acquire(ctx context.Context, key Key, ttl time.Duration) (func(), error) {
	lockKey := lockKeyPrefix + key.String()
	token := uuid.NewString()

	ok, err := s.client.SetNX(ctx, lockKey, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrBusy
	}

	release := func() {
		// The caller's context may already be cancelled when the lock is released.
		_ = releaseScript.Run(context.WithoutCancel(ctx), s.client, []string{lockKey}, token).Err()
	}
	return release, nil
}
