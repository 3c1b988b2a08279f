package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Domenick1991/quickreserve/config"
	"github.com/Domenick1991/quickreserve/internal/domain"
	"github.com/Domenick1991/quickreserve/internal/telephony"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client    *redis.Client
	statusTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, statusTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:    redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		statusTTL: statusTTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetStatusView returns a cached terminal view, or nil when none is stored.
func (c *RedisCache) GetStatusView(ctx context.Context, id string) (*domain.StatusView, error) {
	data, err := c.client.Get(ctx, statusKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var view domain.StatusView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// SetStatusView stores view only if it is terminal; pending views change and are never cached.
func (c *RedisCache) SetStatusView(ctx context.Context, view domain.StatusView) error {
	if !view.Status.Terminal() {
		return nil
	}
	payload, err := json.Marshal(view)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, statusKey(view.ID), payload, c.statusTTL).Err()
}

// AcquireRequestLock marks a guest's request to a store as in flight. It reports false
// when another request from the same phone to the same store holds the lock.
func (c *RedisCache) AcquireRequestLock(ctx context.Context, storeID, callerPhone, reservationID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, requestLockKey(storeID, callerPhone), reservationID, ttl).Result()
}

// releaseLockScript deletes KEYS[1] only when it still holds ARGV[1].
var releaseLockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// ReleaseRequestLock drops the lock only while it still belongs to reservationID.
func (c *RedisCache) ReleaseRequestLock(ctx context.Context, storeID, callerPhone, reservationID string) error {
	return releaseLockScript.Run(ctx, c.client, []string{requestLockKey(storeID, callerPhone)}, reservationID).Err()
}

func statusKey(id string) string {
	return "cache:reservation:status:" + id
}

func requestLockKey(storeID, callerPhone string) string {
	return "lock:reservation:store:" + storeID + ":phone:" + telephony.Digits(callerPhone)
}
