package budget

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a deployment-shared budget: every process instance draws from the
// same windowed counter. The window TTL starts on the first take.
type Redis struct {
	client *redis.Client
	key    string
	limit  int64
	window time.Duration
}

func NewRedis(client *redis.Client, key string, limit int64, window time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    key,
		limit:  limit,
		window: window,
	}
}

func (r *Redis) Take(ctx context.Context, n int64) error {
	used, err := r.client.IncrBy(ctx, r.key, n).Result()
	if err != nil {
		return fmt.Errorf("budget take: incr %q: %w", r.key, err)
	}

	if used == n {
		// First take of the window arms the expiry.
		if err := r.client.Expire(ctx, r.key, r.window).Err(); err != nil {
			return fmt.Errorf("budget take: expire %q: %w", r.key, err)
		}
	}

	if used > r.limit {
		// Over the line: give the calls back so a later retry within the same
		// window is not penalized twice.
		if err := r.client.DecrBy(ctx, r.key, n).Err(); err != nil {
			return fmt.Errorf("budget take: decr %q: %w", r.key, err)
		}

		wait, err := r.client.PTTL(ctx, r.key).Result()
		if err != nil || wait <= 0 {
			wait = r.window
		}
		return &ExhaustedError{SuggestedWait: wait}
	}

	return nil
}

func (r *Redis) Remaining(ctx context.Context) (int64, error) {
	used, err := r.client.Get(ctx, r.key).Int64()
	if err == redis.Nil {
		return r.limit, nil
	}
	if err != nil {
		return 0, fmt.Errorf("budget remaining: get %q: %w", r.key, err)
	}

	left := r.limit - used
	if left < 0 {
		left = 0
	}
	return left, nil
}
