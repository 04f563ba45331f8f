// cache реализует необязательный кэш публичной идентичности пользователей
// поверх Redis. Username аккаунта неизменяем, поэтому кэширование по user_id
// безопасно; записи живут ограниченный TTL и сами вымываются.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IdentityCache — минимальный контракт кэша идентичности.
type IdentityCache interface {
	// Username возвращает имя пользователя и признак наличия записи в кэше.
	Username(ctx context.Context, userID uuid.UUID) (string, bool, error)
	// SetUsername сохраняет имя пользователя с TTL.
	SetUsername(ctx context.Context, userID uuid.UUID, username string, ttl time.Duration) error
	// Close закрывает клиент Redis.
	Close() error
}

type redisCache struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisCache создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "todo:ident:".
func NewRedisCache(ctx context.Context, redisURL, prefix string) (IdentityCache, error) {
	if prefix == "" {
		prefix = "todo:ident:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix}, nil
}

func (c *redisCache) key(userID uuid.UUID) string { return c.prefix + userID.String() }

func (c *redisCache) Username(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	name, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}

		return "", false, err
	}

	return name, true, nil
}

func (c *redisCache) SetUsername(ctx context.Context, userID uuid.UUID, username string, ttl time.Duration) error {
	return c.rdb.Set(ctx, c.key(userID), username, ttl).Err()
}

func (c *redisCache) Close() error { return c.rdb.Close() }
