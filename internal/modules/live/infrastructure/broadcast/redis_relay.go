package broadcast

import (
	"context"
	"errors"

	myredis "BotDesk/pkg/redis"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const DefaultChannel = "botdesk:live"

type RedisRelay struct {
	client  *myredis.Client
	channel string
}

func NewRedisRelay(client *myredis.Client, channel string) *RedisRelay {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisRelay{client: client, channel: channel}
}

func (r *RedisRelay) Publish(ctx context.Context, payload []byte) error {
	return r.client.Publish(ctx, r.channel, payload)
}

// Run 订阅频道并交给 deliver，直到 ctx 结束
func (r *RedisRelay) Run(ctx context.Context, deliver func(payload []byte)) {
	zlog.Info("live relay subscribed", zap.String("channel", r.channel))
	if err := r.client.Subscribe(ctx, r.channel, deliver); err != nil && !errors.Is(err, context.Canceled) {
		zlog.Error("live relay stopped", zap.String("channel", r.channel), zap.Error(err))
	}
}
