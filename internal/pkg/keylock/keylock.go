package keylock

import (
	"context"
	"errors"
)

// ErrLockTimeout 等待锁超时
var ErrLockTimeout = errors.New("keylock: wait timeout")

// Locker 按 key 串行化，不同 key 互不影响。
// Lock 成功返回释放函数，释放函数只能调用一次。
type Locker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
