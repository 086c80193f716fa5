package session_test

import (
	"context"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"

	"chatdash.app/api/internal/model"
	"chatdash.app/api/internal/session"
)

// storeBehaviour runs the shared contract against a backend. expire moves
// both the clock and, for Redis, the server's notion of time.
func storeBehaviour(build func() (session.Store, func(time.Duration))) {
	var (
		ctx    context.Context
		store  session.Store
		expire func(time.Duration)
		now    time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		store, expire = build()
	})

	newSession := func(id string) *model.Session {
		return &model.Session{
			ID:        id,
			Username:  "ana",
			Token:     "tok-" + id,
			CreatedAt: now,
			ExpiresAt: now.Add(time.Hour),
		}
	}

	It("round-trips a session", func() {
		Expect(store.Set(ctx, newSession("a"))).To(Succeed())

		got, err := store.Get(ctx, "a")

		Expect(err).NotTo(HaveOccurred())
		Expect(got.Username).To(Equal("ana"))
		Expect(got.Token).To(Equal("tok-a"))
		Expect(got.ExpiresAt).To(BeTemporally("==", now.Add(time.Hour)))
	})

	It("returns ErrNotFound for unknown ids", func() {
		_, err := store.Get(ctx, "missing")

		Expect(err).To(MatchError(session.ErrNotFound))
	})

	It("clears sessions", func() {
		Expect(store.Set(ctx, newSession("a"))).To(Succeed())
		Expect(store.Clear(ctx, "a")).To(Succeed())

		_, err := store.Get(ctx, "a")
		Expect(err).To(MatchError(session.ErrNotFound))
	})

	It("clearing an unknown id is not an error", func() {
		Expect(store.Clear(ctx, "nope")).To(Succeed())
	})

	It("forgets expired sessions", func() {
		Expect(store.Set(ctx, newSession("a"))).To(Succeed())

		expire(2 * time.Hour)

		_, err := store.Get(ctx, "a")
		Expect(err).To(MatchError(session.ErrNotFound))
	})
}

var _ = Describe("MemoryStore", func() {
	storeBehaviour(func() (session.Store, func(time.Duration)) {
		clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))
		return session.NewMemoryStore(clock), clock.Advance
	})
})

var _ = Describe("RedisStore", func() {
	storeBehaviour(func() (session.Store, func(time.Duration)) {
		mr := miniredis.RunT(GinkgoT())
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(client.Close)
		clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC))

		return session.NewRedisStore(client, clock), func(d time.Duration) {
			clock.Advance(d)
			mr.FastForward(d)
		}
	})

	It("does not store sessions that already expired", func() {
		mr := miniredis.RunT(GinkgoT())
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		DeferCleanup(client.Close)
		now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
		store := session.NewRedisStore(client, clockwork.NewFakeClockAt(now))

		Expect(store.Set(context.Background(), &model.Session{ID: "old", ExpiresAt: now.Add(-time.Minute)})).To(Succeed())

		Expect(mr.Exists("chatdash:session:old")).To(BeFalse())
	})
})
