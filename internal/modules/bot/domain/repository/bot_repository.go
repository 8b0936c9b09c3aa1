package repository

import (
	"context"

	"BotDesk/internal/modules/bot/domain/entity"
)

// BotRepository 机器人存储；查不到时返回 nil, nil
type BotRepository interface {
	List(ctx context.Context, tenant string) ([]entity.Bot, error)
	ListIDsByTenant(ctx context.Context, tenant string) ([]string, error)
	GetByID(ctx context.Context, id string) (*entity.Bot, error)
	GetByTenantAndName(ctx context.Context, tenant, name string) (*entity.Bot, error)
	// FindForPlatform 优先返回启用中的机器人，其次任意一个
	FindForPlatform(ctx context.Context, tenant, platform string) (*entity.Bot, error)
	Create(ctx context.Context, bot *entity.Bot) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) (bool, error)
}

// SecretPatch 仅非 nil 字段会被写入
type SecretPatch struct {
	ChannelSecret      *string
	ChannelAccessToken *string
	OpenaiAPIKey       *string
}

func (p SecretPatch) Empty() bool {
	return p.ChannelSecret == nil && p.ChannelAccessToken == nil && p.OpenaiAPIKey == nil
}

type SecretRepository interface {
	GetByBotID(ctx context.Context, botID string) (*entity.BotSecret, error)
	Upsert(ctx context.Context, botID string, patch SecretPatch) (*entity.BotSecret, error)
}

// ConfigPatch 仅非 nil 字段会被写入
type ConfigPatch struct {
	Model        *string
	SystemPrompt *string
	Temperature  *float64
	TopP         *float64
	MaxTokens    *int
}

type ConfigRepository interface {
	GetByBotID(ctx context.Context, botID string) (*entity.BotConfig, error)
	GetOrCreateDefault(ctx context.Context, botID string) (*entity.BotConfig, error)
	Upsert(ctx context.Context, botID string, patch ConfigPatch) (*entity.BotConfig, error)
}

type PresetRepository interface {
	List(ctx context.Context, tenant string) ([]entity.AIPreset, error)
	GetByID(ctx context.Context, id string) (*entity.AIPreset, error)
	GetByTenantAndName(ctx context.Context, tenant, name string) (*entity.AIPreset, error)
	Create(ctx context.Context, p *entity.AIPreset) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, id string) (bool, error)
}
