package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisUsageLedger keeps daily usage counters in Redis hashes:
//
//	usage:models:<day>        set of models seen that day
//	usage:tokens:<day>:<model> hash {requests, prompt, completion, total}
type RedisUsageLedger struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisUsageLedger creates a ledger whose keys expire after ttl
// (48h when zero).
func NewRedisUsageLedger(client *redis.Client, ttl time.Duration) *RedisUsageLedger {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &RedisUsageLedger{client: client, ttl: ttl, now: time.Now}
}

func modelsKey(day string) string {
	return fmt.Sprintf("usage:models:%s", day)
}

func tokensKey(day, model string) string {
	return fmt.Sprintf("usage:tokens:%s:%s", day, model)
}

// Record implements UsageLedger.
func (l *RedisUsageLedger) Record(ctx context.Context, model string, prompt, completion int64) error {
	day := dayKey(l.now())
	key := tokensKey(day, model)

	pipe := l.client.Pipeline()
	pipe.SAdd(ctx, modelsKey(day), model)
	pipe.Expire(ctx, modelsKey(day), l.ttl)
	pipe.HIncrBy(ctx, key, "requests", 1)
	pipe.HIncrBy(ctx, key, "prompt", prompt)
	pipe.HIncrBy(ctx, key, "completion", completion)
	pipe.HIncrBy(ctx, key, "total", prompt+completion)
	pipe.Expire(ctx, key, l.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to record token usage: %w", err)
	}
	return nil
}

// Daily implements UsageLedger.
func (l *RedisUsageLedger) Daily(ctx context.Context, day time.Time) ([]TokenUsage, error) {
	d := dayKey(day)
	names, err := l.client.SMembers(ctx, modelsKey(d)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list usage models: %w", err)
	}
	if len(names) == 0 {
		return []TokenUsage{}, nil
	}

	pipe := l.client.Pipeline()
	cmds := make([]*redis.SliceCmd, len(names))
	for i, name := range names {
		cmds[i] = pipe.HMGet(ctx, tokensKey(d, name), "requests", "prompt", "completion", "total")
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to read token usage: %w", err)
	}

	result := make([]TokenUsage, 0, len(names))
	for i, name := range names {
		var v struct {
			Requests   int64 `redis:"requests"`
			Prompt     int64 `redis:"prompt"`
			Completion int64 `redis:"completion"`
			Total      int64 `redis:"total"`
		}
		if err := cmds[i].Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to decode token usage for %s: %w", name, err)
		}
		result = append(result, TokenUsage{
			Model:            name,
			Requests:         v.Requests,
			PromptTokens:     v.Prompt,
			CompletionTokens: v.Completion,
			TotalTokens:      v.Total,
		})
	}
	sortUsage(result)
	return result, nil
}
