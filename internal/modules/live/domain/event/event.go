package event

import (
	"context"
	"time"
)

const (
	TypeBotVerified = "bot:verified"
	TypeCaseNew     = "case:new"
)

// Event 推送给 Dashboard 的实时事件
type Event struct {
	Type   string      `json:"type"`
	Tenant string      `json:"tenant"`
	BotID  string      `json:"botId,omitempty"`
	CaseID string      `json:"caseId,omitempty"`
	At     time.Time   `json:"at"`
	Data   interface{} `json:"data,omitempty"`
}

// Publisher 事件广播出口；实现必须是非阻塞且不返回业务错误的
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// NopPublisher 未配置实时推送时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) {}
