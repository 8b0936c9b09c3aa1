package respond

import "BotDesk/internal/modules/knowledge/domain/repository"

type AskRespond struct {
	Answer  string           `json:"answer"`
	Context []repository.Hit `json:"context"`
}

type ModelUsage struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"topP"`
	MaxTokens   int     `json:"maxTokens"`
}

type AITestRespond struct {
	Echo  string     `json:"echo"`
	Using ModelUsage `json:"using"`
}
