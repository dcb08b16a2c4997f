package throttle

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

const redisKeyPrefix = "bktrade:submit:"

// Redis is a Throttle shared by every process pointing at the same Redis.
// The cooldown is the key's TTL, so Redis does the eviction.
type Redis struct {
	client   redis.Cmdable
	cooldown time.Duration
	now      func() time.Time
}

// NewRedis creates a Redis throttle on top of client.
func NewRedis(client redis.Cmdable, cooldown time.Duration) *Redis {
	return &Redis{client: client, cooldown: cooldown, now: time.Now}
}

var _ Throttle = (*Redis)(nil)

// Allow sets the source key only if it is absent, which both checks and
// records the attempt in one round trip.
func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	return r.client.SetNX(ctx, redisKeyPrefix+key, r.now().Unix(), r.cooldown).Result()
}
