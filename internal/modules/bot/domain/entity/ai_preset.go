package entity

import "time"

// AIPreset 租户级的提示词与采样参数模板
type AIPreset struct {
	Id           string    `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	Tenant       string    `gorm:"column:tenant;type:varchar(64);not null;uniqueIndex:uniq_preset_tenant_name" json:"tenant"`
	Name         string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex:uniq_preset_tenant_name" json:"name"`
	SystemPrompt string    `gorm:"column:system_prompt;type:text" json:"systemPrompt"`
	Model        string    `gorm:"column:model;type:varchar(64);not null" json:"model"`
	Temperature  float64   `gorm:"column:temperature;not null" json:"temperature"`
	TopP         float64   `gorm:"column:top_p;not null" json:"topP"`
	MaxTokens    int       `gorm:"column:max_tokens;not null" json:"maxTokens"`
	CreatedAt    time.Time `gorm:"column:created_at;type:datetime;not null" json:"createdAt"`
	UpdatedAt    time.Time `gorm:"column:updated_at;type:datetime;not null;index" json:"updatedAt"`
}

func (AIPreset) TableName() string { return "ai_preset" }
