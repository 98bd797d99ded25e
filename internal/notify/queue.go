package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"leadbot/internal/leads"
	"leadbot/pkg/redis"
)

var ErrQueueFull = errors.New("notification queue is full")

// Queue buffers leads between the coordinator and the delivery worker.
// Pop blocks until a lead is available or ctx is done.
type Queue interface {
	Push(ctx context.Context, lead leads.Lead) error
	Pop(ctx context.Context) (leads.Lead, error)
}

type MemoryQueue struct {
	items chan leads.Lead
}

func NewMemoryQueue(size int) *MemoryQueue {
	if size <= 0 {
		size = 1
	}
	return &MemoryQueue{items: make(chan leads.Lead, size)}
}

// Push never blocks; a full buffer drops the lead.
func (q *MemoryQueue) Push(ctx context.Context, lead leads.Lead) error {
	select {
	case q.items <- lead:
		return nil
	default:
		return ErrQueueFull
	}
}

// Pop reports ctx.Err() once ctx is done, even if leads are still buffered.
func (q *MemoryQueue) Pop(ctx context.Context) (leads.Lead, error) {
	if err := ctx.Err(); err != nil {
		return leads.Lead{}, err
	}
	select {
	case <-ctx.Done():
		return leads.Lead{}, ctx.Err()
	case lead := <-q.items:
		return lead, nil
	}
}

// Drain empties the buffer without blocking and returns what was in it.
func (q *MemoryQueue) Drain() []leads.Lead {
	var rest []leads.Lead
	for {
		select {
		case lead := <-q.items:
			rest = append(rest, lead)
		default:
			return rest
		}
	}
}

// ListStore is the part of the Redis client the queue needs.
type ListStore interface {
	LPush(ctx context.Context, key string, data []byte) error
	BRPop(ctx context.Context, timeout time.Duration, key string) ([]byte, error)
}

var _ ListStore = (*redis.Client)(nil)

const popWait = 5 * time.Second

// RedisQueue keeps pending notifications in a Redis list so they survive a
// restart of the bot.
type RedisQueue struct {
	store ListStore
	key   string
}

func NewRedisQueue(store ListStore, key string) *RedisQueue {
	return &RedisQueue{store: store, key: key}
}

func (q *RedisQueue) Push(ctx context.Context, lead leads.Lead) error {
	data, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}
	if err := q.store.LPush(ctx, q.key, data); err != nil {
		return fmt.Errorf("push lead: %w", err)
	}
	return nil
}

func (q *RedisQueue) Pop(ctx context.Context) (leads.Lead, error) {
	for {
		if err := ctx.Err(); err != nil {
			return leads.Lead{}, err
		}

		data, err := q.store.BRPop(ctx, popWait, q.key)
		if errors.Is(err, redis.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return leads.Lead{}, ctx.Err()
			}
			return leads.Lead{}, fmt.Errorf("pop lead: %w", err)
		}

		var lead leads.Lead
		if err := json.Unmarshal(data, &lead); err != nil {
			return leads.Lead{}, fmt.Errorf("unmarshal lead: %w", err)
		}
		return lead, nil
	}
}
