package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client 对 go-redis 的薄封装，由 internal/initial 创建后显式注入
type Client struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Client {
	if rdb == nil {
		return nil
	}
	return &Client{rdb: rdb}
}

// Raw 获取原始 Redis 客户端（高级用法）
func (c *Client) Raw() *redis.Client {
	if c == nil {
		return nil
	}
	return c.rdb
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Client) check() error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis not connected")
	}
	return nil
}

// ==================== 分布式锁 ====================

// unlockScript 只删除自己持有的锁
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock 获取分布式锁，token 用于安全释放
func (c *Client) Lock(ctx context.Context, key, token string, expiration time.Duration) (bool, error) {
	if err := c.check(); err != nil {
		return false, err
	}
	return c.rdb.SetNX(ctx, key, token, expiration).Result()
}

// Unlock 释放分布式锁
func (c *Client) Unlock(ctx context.Context, key, token string) error {
	if err := c.check(); err != nil {
		return err
	}
	return unlockScript.Run(ctx, c.rdb, []string{key}, token).Err()
}

// ==================== 计数 ====================

// IncrWindow 固定窗口计数：首次自增时设置过期时间
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	if err := c.check(); err != nil {
		return 0, err
	}
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ==================== 发布订阅 ====================

func (c *Client) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := c.check(); err != nil {
		return err
	}
	return c.rdb.Publish(ctx, channel, payload).Err()
}

// Subscribe 阻塞消费频道消息直到 ctx 结束
func (c *Client) Subscribe(ctx context.Context, channel string, fn func(payload []byte)) error {
	if err := c.check(); err != nil {
		return err
	}
	sub := c.rdb.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn([]byte(msg.Payload))
		}
	}
}
