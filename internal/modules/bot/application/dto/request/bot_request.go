package request

import (
	"bytes"
	"encoding/json"
	"time"
)

// OptionalTime 区分字段缺省与显式 null
type OptionalTime struct {
	Set   bool
	Value *time.Time
}

func (o *OptionalTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		o.Value = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Value = &t
	return nil
}

// UpdateBotRequest PATCH /api/bots/:id
type UpdateBotRequest struct {
	Name       *string      `json:"name" binding:"omitempty,min=1,max=100"`
	Active     *bool        `json:"active"`
	VerifiedAt OptionalTime `json:"verifiedAt"`
}

// SaveSecretsRequest 空串和掩码占位符会被忽略
type SaveSecretsRequest struct {
	OpenaiAPIKey      *string `json:"openaiApiKey"`
	LineAccessToken   *string `json:"lineAccessToken"`
	LineChannelSecret *string `json:"lineChannelSecret"`
}

// UpdateConfigRequest PUT /api/bots/:id/config
type UpdateConfigRequest struct {
	Model        *string  `json:"model" binding:"omitempty,oneof=gpt-4o-mini gpt-4o o4-mini gpt-3.5-turbo"`
	SystemPrompt *string  `json:"systemPrompt"`
	Temperature  *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	TopP         *float64 `json:"topP" binding:"omitempty,min=0,max=1"`
	MaxTokens    *int     `json:"maxTokens" binding:"omitempty,min=1,max=32000"`
}
