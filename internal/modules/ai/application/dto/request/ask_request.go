package request

// AskRequest /ai/answer 请求体
type AskRequest struct {
	BotID   string `json:"botId" binding:"required"`
	Message string `json:"message" binding:"required"`
	Limit   int    `json:"limit"` // 知识片段数量，默认 5
}

// AITestRequest dev 接口，只回显配置
type AITestRequest struct {
	Q     string `json:"q"`
	BotID string `json:"botId"`
}
