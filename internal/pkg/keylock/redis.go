package keylock

import (
	"Applyhub/internal/pkg/redis"
	"context"
	"fmt"
	log "log/slog"
	"time"

	"github.com/google/uuid"
)

// RedisLocker 基于 SET NX 的分布式锁，多实例部署使用
type RedisLocker struct {
	prefix   string
	ttl      time.Duration
	timeout  time.Duration
	interval time.Duration
}

func NewRedisLocker(prefix string, ttl, timeout time.Duration) *RedisLocker {
	return &RedisLocker{
		prefix:   prefix,
		ttl:      ttl,
		timeout:  timeout,
		interval: 50 * time.Millisecond,
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := l.prefix + key
	token := uuid.NewString()

	waitCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	ok, err := redis.TryLock(waitCtx, lockKey, token, l.ttl, -1, l.interval)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if waitCtx.Err() != nil {
			return nil, ErrLockTimeout
		}
		return nil, fmt.Errorf("keylock: acquire %s: %w", lockKey, err)
	}
	if !ok {
		return nil, ErrLockTimeout
	}

	return func() {
		// 请求 ctx 可能已取消，释放锁不能依赖它
		unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		if err := redis.UnLock(unlockCtx, lockKey, token); err != nil {
			log.WarnContext(ctx, "release interaction lock failed", "key", lockKey, "err", err)
		}
	}, nil
}
