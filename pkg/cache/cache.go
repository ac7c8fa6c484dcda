package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL constants
const (
	TTLInbox   = 30 * time.Second // inbox listings (refreshed often)
	TTLDefault = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixInbox    = "inbox:"
	PrefixInboxVer = "inboxver:"
)

// ErrCacheMiss indicates the key is absent or the cached version is stale.
var ErrCacheMiss = errors.New("cache miss")

// Service caches inbox listings with version-based invalidation: every
// write touching a user's threads bumps that user's version counter, so
// entries cached under an older version are simply never read again and
// age out via TTL.
type Service interface {
	InboxVersion(ctx context.Context, userID string) (int64, error)
	BumpInboxVersions(ctx context.Context, userIDs ...string) error
	GetInbox(ctx context.Context, userID string, version int64, dest interface{}) error
	SetInbox(ctx context.Context, userID string, version int64, data interface{}) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a Redis-backed cache service
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) InboxVersion(ctx context.Context, userID string) (int64, error) {
	v, err := c.client.Get(ctx, PrefixInboxVer+userID).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *redisCache) BumpInboxVersions(ctx context.Context, userIDs ...string) error {
	if len(userIDs) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, id := range userIDs {
		pipe.Incr(ctx, PrefixInboxVer+id)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *redisCache) GetInbox(ctx context.Context, userID string, version int64, dest interface{}) error {
	data, err := c.client.Get(ctx, inboxKey(userID, version)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

func (c *redisCache) SetInbox(ctx context.Context, userID string, version int64, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, inboxKey(userID, version), raw, TTLInbox).Err()
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func inboxKey(userID string, version int64) string {
	return fmt.Sprintf("%s%s:%d", PrefixInbox, userID, version)
}
