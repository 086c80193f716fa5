package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	"chatdash.app/api/internal/model"
)

const keyPrefix = "chatdash:session:"

type redisStore struct {
	client *redis.Client
	clock  clockwork.Clock
}

// NewRedisStore keeps sessions as JSON values that expire with the session.
func NewRedisStore(client *redis.Client, clock clockwork.Clock) Store {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &redisStore{client: client, clock: clock}
}

func (s *redisStore) Get(ctx context.Context, id string) (*model.Session, error) {
	raw, err := s.client.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	if sess.IsExpired(s.clock.Now()) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *redisStore) Set(ctx context.Context, sess *model.Session) error {
	var ttl time.Duration
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.clock.Now())
		if ttl <= 0 {
			return s.Clear(ctx, sess.ID)
		}
	}

	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.ID, raw, ttl).Err(); err != nil {
		return fmt.Errorf("writing session: %w", err)
	}
	return nil
}

func (s *redisStore) Clear(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}
