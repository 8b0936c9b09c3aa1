package lock

import (
	"context"
	"fmt"
	"time"

	"BotDesk/internal/modules/casebook/domain/repository"
	myredis "BotDesk/pkg/redis"
	"BotDesk/pkg/util"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const (
	redisLockPrefix = "botdesk:lock:"
	redisLockTTL    = 5 * time.Second
	redisLockPoll   = 25 * time.Millisecond
	redisLockWait   = 3 * time.Second
)

// RedisLocker 多实例部署时的去重锁，SET NX PX + 令牌释放
type RedisLocker struct {
	client *myredis.Client
}

func NewRedisLocker(client *myredis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

var _ repository.KeyLocker = (*RedisLocker)(nil)

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	full := redisLockPrefix + key
	token := util.GenerateUUID()

	waitCtx, cancel := context.WithTimeout(ctx, redisLockWait)
	defer cancel()

	for {
		ok, err := l.client.Lock(waitCtx, full, token, redisLockTTL)
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}
		select {
		case <-waitCtx.Done():
			return nil, fmt.Errorf("acquire lock %s: %w", key, waitCtx.Err())
		case <-time.After(redisLockPoll):
		}
	}

	return func() {
		// 释放不受请求 ctx 取消影响
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := l.client.Unlock(releaseCtx, full, token); err != nil {
			zlog.Warn("release redis lock failed", zap.String("key", key), zap.Error(err))
		}
	}, nil
}
