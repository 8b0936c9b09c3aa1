package broadcast

import (
	"context"
	"encoding/json"

	"BotDesk/internal/modules/live/domain/event"
	"BotDesk/pkg/ws"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

// Relay 跨实例转发，配置了 Redis 时启用
type Relay interface {
	Publish(ctx context.Context, payload []byte) error
}

// Broadcaster 把事件投递给本实例的订阅者；有 relay 时统一经 relay 回流
type Broadcaster struct {
	hub   *ws.Hub
	relay Relay
}

func NewBroadcaster(hub *ws.Hub, relay Relay) *Broadcaster {
	return &Broadcaster{hub: hub, relay: relay}
}

func (b *Broadcaster) Publish(ctx context.Context, evt event.Event) {
	if evt.Tenant == "" {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		zlog.Warn("encode live event failed", zap.String("type", evt.Type), zap.Error(err))
		return
	}
	if b.relay != nil {
		err := b.relay.Publish(ctx, payload)
		if err == nil {
			return
		}
		zlog.Warn("live relay publish failed, delivering locally", zap.String("type", evt.Type), zap.Error(err))
	}
	b.hub.Send(evt.Tenant, payload)
}

// Deliver relay 收到消息后投递给本实例
func (b *Broadcaster) Deliver(payload []byte) {
	var head struct {
		Tenant string `json:"tenant"`
	}
	if err := json.Unmarshal(payload, &head); err != nil || head.Tenant == "" {
		zlog.Warn("drop malformed live event", zap.Error(err))
		return
	}
	b.hub.Send(head.Tenant, payload)
}
