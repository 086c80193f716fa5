package source

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"chatdash.app/api/internal/model"
)

const cacheKeyPrefix = "chatdash:chats:"

// Cached stores successful upstream payloads in Redis, one entry per token.
type Cached struct {
	next   ChatSource
	client *redis.Client
	ttl    time.Duration
}

func NewCached(next ChatSource, client *redis.Client, ttl time.Duration) *Cached {
	return &Cached{next: next, client: client, ttl: ttl}
}

func (c *Cached) FetchAll(ctx context.Context) ([]model.RawConversation, error) {
	key := cacheKey(TokenFrom(ctx))

	if !CacheSkipped(ctx) {
		convs, err := c.load(ctx, key)
		if err == nil {
			slog.DebugContext(ctx, "conversation cache hit", "count", len(convs))
			return convs, nil
		}
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "conversation cache read failed", "error", err)
		}
	}

	convs, err := c.next.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.store(ctx, key, convs); err != nil {
		slog.WarnContext(ctx, "conversation cache write failed", "error", err)
	}
	return convs, nil
}

// Invalidate drops the cached payload for the token bound to ctx.
func (c *Cached) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, cacheKey(TokenFrom(ctx))).Err()
}

func (c *Cached) load(ctx context.Context, key string) ([]model.RawConversation, error) {
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var convs []model.RawConversation
	if err := json.Unmarshal(raw, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

func (c *Cached) store(ctx context.Context, key string, convs []model.RawConversation) error {
	raw, err := json.Marshal(convs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, raw, c.ttl).Err()
}

func cacheKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return cacheKeyPrefix + hex.EncodeToString(sum[:8])
}
