package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker hands out short-lived exclusive locks backed by SET NX PX. Locks are
// never released explicitly; they expire after their ttl.
type Locker struct {
	client redis.UniversalClient
	owner  string
}

func NewLocker(client redis.UniversalClient, owner string) *Locker {
	return &Locker{client: client, owner: owner}
}

// TryLock reports whether key was free and is now held for ttl.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, key, l.owner, ttl).Result()
}

// EventDeduper remembers webhook event ids for a bounded time.
type EventDeduper struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewEventDeduper(client redis.UniversalClient, ttl time.Duration) *EventDeduper {
	return &EventDeduper{client: client, ttl: ttl}
}

// MarkSeen records eventID and reports whether it was new.
func (d *EventDeduper) MarkSeen(ctx context.Context, eventID string) (bool, error) {
	return d.client.SetNX(ctx, EventDedupKey(eventID), "1", d.ttl).Result()
}

// Forget drops eventID so a redelivery of it is processed again.
func (d *EventDeduper) Forget(ctx context.Context, eventID string) error {
	return d.client.Del(ctx, EventDedupKey(eventID)).Err()
}
