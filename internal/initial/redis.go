package initial

import (
	"context"
	"fmt"
	"strings"
	"time"

	"BotDesk/internal/config"
	myredis "BotDesk/pkg/redis"
	"BotDesk/pkg/zlog"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient 未配置 host 时返回 nil, nil，调用方退回单机实现
func NewRedisClient(ctx context.Context, conf config.RedisConfig) (*myredis.Client, error) {
	host := strings.TrimSpace(conf.Host)
	if host == "" {
		zlog.Info("redis not configured, using in-process lock and no rate limit")
		return nil, nil
	}
	port := conf.Port
	if port == 0 {
		port = 6379
	}

	addr := fmt.Sprintf("%s:%d", host, port)
	client := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     conf.Password,
		DB:           conf.DB,
		PoolSize:     conf.PoolSize,
		MinIdleConns: conf.MinIdleConns,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	zlog.Info("redis connected", zap.String("addr", addr))
	return myredis.New(client), nil
}
