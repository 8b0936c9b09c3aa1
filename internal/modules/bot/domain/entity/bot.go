package entity

import "time"

const PlatformLine = "line"

// Bot 租户下的消息渠道身份
type Bot struct {
	Id         string     `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Tenant     string     `gorm:"column:tenant;type:varchar(64);not null;uniqueIndex:uniq_bot_tenant_name;index:idx_bot_tenant_platform" json:"tenant"`
	Name       string     `gorm:"column:name;type:varchar(100);not null;uniqueIndex:uniq_bot_tenant_name" json:"name"`
	Platform   string     `gorm:"column:platform;type:varchar(20);not null;default:line;index:idx_bot_tenant_platform" json:"platform"`
	Active     bool       `gorm:"column:active;not null;default:true" json:"active"`
	VerifiedAt *time.Time `gorm:"column:verified_at;type:datetime" json:"verifiedAt"`
	CreatedAt  time.Time  `gorm:"column:created_at;type:datetime;not null" json:"createdAt"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;type:datetime;not null" json:"updatedAt"`

	Secret *BotSecret `gorm:"foreignKey:BotId;constraint:OnDelete:CASCADE" json:"-"`
	Config *BotConfig `gorm:"foreignKey:BotId;constraint:OnDelete:CASCADE" json:"-"`
}

func (Bot) TableName() string { return "bot" }

// BotSecret 只写凭据，读取时只暴露是否存在
type BotSecret struct {
	Id                 int64     `gorm:"column:id;primaryKey;autoIncrement"`
	BotId              string    `gorm:"column:bot_id;type:char(36);not null;uniqueIndex:uniq_bot_secret_bot"`
	ChannelSecret      *string   `gorm:"column:channel_secret;type:varchar(255)"`
	ChannelAccessToken *string   `gorm:"column:channel_access_token;type:text"`
	OpenaiAPIKey       *string   `gorm:"column:openai_api_key;type:varchar(255)"`
	CreatedAt          time.Time `gorm:"column:created_at;type:datetime;not null"`
	UpdatedAt          time.Time `gorm:"column:updated_at;type:datetime;not null"`
}

func (BotSecret) TableName() string { return "bot_secret" }

func (s *BotSecret) GetChannelSecret() string {
	if s == nil {
		return ""
	}
	return strOrEmpty(s.ChannelSecret)
}

func (s *BotSecret) GetChannelAccessToken() string {
	if s == nil {
		return ""
	}
	return strOrEmpty(s.ChannelAccessToken)
}

func (s *BotSecret) GetOpenaiAPIKey() string {
	if s == nil {
		return ""
	}
	return strOrEmpty(s.OpenaiAPIKey)
}

// HasLineCredentials token 和 channel secret 都存在才算完成验证
func (s *BotSecret) HasLineCredentials() bool {
	return s.GetChannelSecret() != "" && s.GetChannelAccessToken() != ""
}

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// BotConfig 模型参数，首次读取时按默认值创建
type BotConfig struct {
	Id           int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BotId        string    `gorm:"column:bot_id;type:char(36);not null;uniqueIndex:uniq_bot_config_bot" json:"botId"`
	Model        string    `gorm:"column:model;type:varchar(64);not null" json:"model"`
	SystemPrompt string    `gorm:"column:system_prompt;type:text" json:"systemPrompt"`
	Temperature  float64   `gorm:"column:temperature;not null" json:"temperature"`
	TopP         float64   `gorm:"column:top_p;not null" json:"topP"`
	MaxTokens    int       `gorm:"column:max_tokens;not null" json:"maxTokens"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:datetime;not null" json:"updatedAt"`
}

func (BotConfig) TableName() string { return "bot_config" }

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.3
	DefaultTopP        = 1.0
	DefaultMaxTokens   = 800
)

// AllowedModels 配置接口允许选择的模型
var AllowedModels = []string{"gpt-4o-mini", "gpt-4o", "o4-mini", "gpt-3.5-turbo"}

func IsAllowedModel(m string) bool {
	for _, a := range AllowedModels {
		if a == m {
			return true
		}
	}
	return false
}

func NewDefaultConfig(botID string, now time.Time) *BotConfig {
	return &BotConfig{
		BotId:       botID,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		TopP:        DefaultTopP,
		MaxTokens:   DefaultMaxTokens,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
