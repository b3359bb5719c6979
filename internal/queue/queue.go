// Package queue is the durable hand-off between the ingest side and the
// deferred submission workers. Encoded report records ride a single Redis
// list, so Redis owns a record between encode and decode and reports survive
// relay restarts.
package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/vmihailenco/msgpack/v5"

	"push-notifications-relay/internal/record"
)

// Envelope wraps one encoded report for its trip through the queue. It is
// single-owner and transient: the ingest side creates it, the consuming
// worker destroys it by decoding or dropping it.
type Envelope struct {
	ID           string        `msgpack:"id"`
	Record       record.Record `msgpack:"record"`
	Attempt      int           `msgpack:"attempt"`
	EnqueuedAtMs int64         `msgpack:"enqueued_at_ms"`
}

// Queue hands encoded report records to the deferred-execution workers.
type Queue interface {
	Enqueue(ctx context.Context, env Envelope) error

	// Dequeue blocks up to timeout for the next envelope and returns
	// (nil, nil) when the queue stayed empty.
	Dequeue(ctx context.Context, timeout time.Duration) (*Envelope, error)
}

// RedisQueue is a Queue backed by a Redis list.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates a queue on the given list key.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, env Envelope) error {
	data, err := msgpack.Marshal(&env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("push envelope: %w", err)
	}
	return nil
}

func (q *RedisQueue) Dequeue(ctx context.Context, timeout time.Duration) (*Envelope, error) {
	vals, err := q.rdb.BLPop(ctx, timeout, q.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("pop envelope: %w", err)
	}
	// BLPOP replies [key, value].
	if len(vals) != 2 {
		return nil, fmt.Errorf("pop envelope: unexpected reply length %d", len(vals))
	}
	var env Envelope
	if err := msgpack.Unmarshal([]byte(vals[1]), &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return &env, nil
}

// Len reports how many envelopes are waiting on the queue.
func (q *RedisQueue) Len(ctx context.Context) (int64, error) {
	n, err := q.rdb.LLen(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("queue length: %w", err)
	}
	return n, nil
}
