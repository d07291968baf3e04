package lock

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrLockNotAcquired возвращается, когда календарь исполнителя уже заблокирован другим запросом
	ErrLockNotAcquired = errors.New("lock: contractor calendar lock not acquired")
)

// Options параметры блокировки
type Options struct {
	TTL        time.Duration
	Retries    int
	RetryDelay time.Duration
}

// RedisLocker распределенная блокировка календаря исполнителя (ключ на исполнителя)
type RedisLocker struct {
	client *redis.Client
	opts   Options
}

// NewRedisLocker создает блокировщик на основе SET NX
func NewRedisLocker(client *redis.Client, opts Options) *RedisLocker {
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 50 * time.Millisecond
	}
	return &RedisLocker{client: client, opts: opts}
}

// WithContractorLock выполняет fn, удерживая блокировку календаря исполнителя
func (l *RedisLocker) WithContractorLock(ctx context.Context, contractorID int64, fn func(ctx context.Context) error) error {
	key := lockKey(contractorID)
	token := uuid.NewString()

	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		// контекст fn мог истечь, освобождаем независимо от него
		_ = l.release(context.Background(), key, token)
	}()

	ctxWithTimeout, cancel := context.WithTimeout(ctx, l.opts.TTL)
	defer cancel()

	return fn(ctxWithTimeout)
}

// WithContractorsLock блокирует несколько календарей в порядке возрастания ID
func (l *RedisLocker) WithContractorsLock(ctx context.Context, contractorIDs []int64, fn func(ctx context.Context) error) error {
	ids := uniqueSorted(contractorIDs)

	var run func(ctx context.Context, i int) error
	run = func(ctx context.Context, i int) error {
		if i == len(ids) {
			return fn(ctx)
		}
		return l.WithContractorLock(ctx, ids[i], func(ctx context.Context) error {
			return run(ctx, i+1)
		})
	}
	return run(ctx, 0)
}

func (l *RedisLocker) acquire(ctx context.Context, key, token string) error {
	for attempt := 0; ; attempt++ {
		ok, err := l.client.SetNX(ctx, key, token, l.opts.TTL).Result()
		if err != nil {
			return fmt.Errorf("acquire contractor lock: %w", err)
		}
		if ok {
			return nil
		}
		if attempt >= l.opts.Retries {
			return fmt.Errorf("%w: key=%s", ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.opts.RetryDelay):
		}
	}
}

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

func (l *RedisLocker) release(ctx context.Context, key, token string) error {
	_, err := unlockScript.Run(ctx, l.client, []string{key}, token).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release contractor lock: %w", err)
	}
	return nil
}

func lockKey(contractorID int64) string {
	return fmt.Sprintf("lock:contractor:%d", contractorID)
}

func uniqueSorted(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
