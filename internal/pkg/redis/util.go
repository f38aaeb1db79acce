package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotInitialized Redis 未初始化（本地或测试环境未配置 Redis）
var ErrNotInitialized = errors.New("redis client not initialized")

const unlockScript = "if redis.call('get', KEYS[1]) == ARGV[1] then return redis.call('del', KEYS[1]) else return 0 end"

func client() (*redis.Client, error) {
	if Rdb == nil {
		return nil, ErrNotInitialized
	}
	return Rdb, nil
}

// SetWithExpiration 设置键值对并设置过期时间
func SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	rdb, err := client()
	if err != nil {
		return err
	}
	return rdb.Set(ctx, key, value, expiration).Err()
}

// GetValue 获取字符串类型的值，键不存在时返回空串
func GetValue(ctx context.Context, key string) (string, error) {
	rdb, err := client()
	if err != nil {
		return "", err
	}
	value, err := rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// TryLock 尝试加锁，retryTimes 为 -1 时一直重试直到 ctx 结束
func TryLock(ctx context.Context, key string, value interface{}, expiration time.Duration, retryTimes int, interval time.Duration) (bool, error) {
	rdb, err := client()
	if err != nil {
		return false, err
	}
	for i := 0; i < retryTimes || retryTimes == -1; i++ {
		success, err := rdb.SetNX(ctx, key, value, expiration).Result()
		if err != nil {
			return false, err
		}
		if success {
			return true, nil
		}
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(interval):
		}
	}
	return false, nil
}

// UnLock 释放锁，只删除自己持有的锁
func UnLock(ctx context.Context, key string, value interface{}) error {
	rdb, err := client()
	if err != nil {
		return err
	}
	return rdb.Eval(ctx, unlockScript, []string{key}, value).Err()
}

// SAdd 向集合添加成员
func SAdd(ctx context.Context, key string, members ...interface{}) error {
	rdb, err := client()
	if err != nil {
		return err
	}
	return rdb.SAdd(ctx, key, members...).Err()
}

// GetSet 获取集合
func GetSet(ctx context.Context, key string) ([]string, error) {
	rdb, err := client()
	if err != nil {
		return nil, err
	}
	return rdb.SMembers(ctx, key).Result()
}

// Rename 重命名，旧键不存在时返回 false
func Rename(ctx context.Context, oldKey string, newKey string) (bool, error) {
	rdb, err := client()
	if err != nil {
		return false, err
	}
	if err = rdb.Rename(ctx, oldKey, newKey).Err(); err != nil {
		if err.Error() == "ERR no such key" {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// DeleteKey 删除一个或多个键
func DeleteKey(ctx context.Context, keys ...string) error {
	rdb, err := client()
	if err != nil {
		return err
	}
	return rdb.Del(ctx, keys...).Err()
}

// MergeSet 在事务中把 src 并入 dst 并删除 src
func MergeSet(ctx context.Context, dst string, src string) error {
	rdb, err := client()
	if err != nil {
		return err
	}
	_, err = rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SUnionStore(ctx, dst, dst, src)
		pipe.Del(ctx, src)
		return nil
	})
	return err
}
