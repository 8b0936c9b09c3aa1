package respond

import "BotDesk/internal/modules/bot/domain/entity"

type BotListRespond struct {
	Items []entity.Bot `json:"items"`
}

type BotRespond struct {
	Bot *entity.Bot `json:"bot"`
}

// MaskedSecretsRespond 只返回是否已设置
type MaskedSecretsRespond struct {
	LineAccessToken   string `json:"lineAccessToken"`
	LineChannelSecret string `json:"lineChannelSecret"`
	OpenaiAPIKey      string `json:"openaiApiKey"`
}

type SaveSecretsRespond struct {
	BotID    string `json:"botId"`
	Verified bool   `json:"verified"`
}

type ConfigRespond struct {
	Config        *entity.BotConfig `json:"config"`
	AllowedModels []string          `json:"allowedModels"`
}

// BotSummaryRespond 机器人概要，密钥保留首尾用于人工核对
type BotSummaryRespond struct {
	Bot     BotBrief          `json:"bot"`
	Config  *entity.BotConfig `json:"config"`
	Secrets *SecretPreview    `json:"secrets"`
}

type BotBrief struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}

type SecretPreview struct {
	ChannelSecret      string `json:"channelSecret"`
	ChannelAccessToken string `json:"channelAccessToken"`
	OpenaiAPIKey       string `json:"openaiApiKey"`
}

type PresetListRespond struct {
	Items []entity.AIPreset `json:"items"`
}

type PresetRespond struct {
	Item    *entity.AIPreset `json:"item"`
	Existed bool             `json:"existed,omitempty"`
}
