package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	authUC "github.com/khoahotran/learnerhub/internal/application/usecase/auth"
)

const syncKeyPrefix = "usersync:"

// redisSyncCache remembers which token subjects already have a profile so the
// gateway can skip the round trip to the user service.
type redisSyncCache struct {
	rdb *redis.Client
}

func NewRedisSyncCache(rdb *redis.Client) authUC.SyncCache {
	return &redisSyncCache{rdb: rdb}
}

func (c *redisSyncCache) IsSynced(ctx context.Context, subject string) (bool, error) {
	_, err := c.rdb.Get(ctx, syncKeyPrefix+subject).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *redisSyncCache) MarkSynced(ctx context.Context, subject string, ttl time.Duration) error {
	return c.rdb.Set(ctx, syncKeyPrefix+subject, "1", ttl).Err()
}
