package audit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper tracks delivered entries so a crash between publish and
// mark-published does not replay them.
type Deduper interface {
	// Delivered reports whether the entry has already been published.
	Delivered(ctx context.Context, id string) (bool, error)
	// MarkDelivered records a successful publish.
	MarkDelivered(ctx context.Context, id string) error
}

// RedisDeduper keeps delivery markers under a TTL. The TTL only needs to
// outlive the window between a publish and its outbox mark.
type RedisDeduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDeduper(client *redis.Client, ttl time.Duration) *RedisDeduper {
	return &RedisDeduper{client: client, ttl: ttl}
}

var _ Deduper = (*RedisDeduper)(nil)

func (d *RedisDeduper) Delivered(ctx context.Context, id string) (bool, error) {
	n, err := d.client.Exists(ctx, deliveryKey(id)).Result()
	return n > 0, err
}

func (d *RedisDeduper) MarkDelivered(ctx context.Context, id string) error {
	return d.client.Set(ctx, deliveryKey(id), 1, d.ttl).Err()
}

func deliveryKey(id string) string {
	return "audit:published:" + id
}
