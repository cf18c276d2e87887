package likes

import (
	"context"
	"time"

	"devblog/internal/observability"

	"github.com/redis/go-redis/v9"
)

const slot = "liked"

// Redis stores the set under <prefix>liked:<sessionID>. Every write
// refreshes the TTL so an idle browsing session eventually expires.
type Redis struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	log    *observability.StoreLogger
}

// NewRedis creates a tracker for one browsing session. A zero ttl disables expiry.
func NewRedis(client *redis.Client, prefix, sessionID string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    Key(prefix, sessionID),
		ttl:    ttl,
		log:    observability.NewStoreLogger("redis"),
	}
}

// Key builds the Redis key for a browsing session's like set.
func Key(prefix, sessionID string) string {
	return prefix + slot + ":" + sessionID
}

func (r *Redis) Has(ctx context.Context, postID string) bool {
	ok, err := r.client.SIsMember(ctx, r.key, postID).Result()
	if err != nil {
		r.fail(ctx, "read", err)
		return false
	}
	observability.RecordStoreOp("read", slot, observability.ResultOK)
	return ok
}

func (r *Redis) Add(ctx context.Context, postID string) {
	pipe := r.client.TxPipeline()
	pipe.SAdd(ctx, r.key, postID)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	r.exec(ctx, pipe)
}

func (r *Redis) Remove(ctx context.Context, postID string) {
	pipe := r.client.TxPipeline()
	pipe.SRem(ctx, r.key, postID)
	if r.ttl > 0 {
		pipe.Expire(ctx, r.key, r.ttl)
	}
	r.exec(ctx, pipe)
}

func (r *Redis) Clear(ctx context.Context) {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		r.fail(ctx, "delete", err)
		return
	}
	observability.RecordStoreOp("delete", slot, observability.ResultOK)
}

func (r *Redis) exec(ctx context.Context, pipe redis.Pipeliner) {
	if _, err := pipe.Exec(ctx); err != nil {
		r.fail(ctx, "write", err)
		return
	}
	r.log.LogWrite(ctx, slot, 0)
	observability.RecordStoreOp("write", slot, observability.ResultOK)
}

func (r *Redis) fail(ctx context.Context, op string, err error) {
	r.log.LogFailure(ctx, op, slot, err)
	observability.RecordStoreOp(op, slot, observability.ResultError)
}
