package request

// CreatePresetRequest POST /api/ai/presets
type CreatePresetRequest struct {
	Name         string   `json:"name" binding:"required,min=1,max=100"`
	SystemPrompt string   `json:"systemPrompt"`
	Model        string   `json:"model" binding:"omitempty,max=64"`
	Temperature  *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	TopP         *float64 `json:"topP" binding:"omitempty,min=0,max=1"`
	MaxTokens    *int     `json:"maxTokens" binding:"omitempty,min=1,max=8192"`
}

// UpdatePresetRequest PATCH /api/ai/presets/:id
type UpdatePresetRequest struct {
	Name         *string  `json:"name" binding:"omitempty,min=1,max=100"`
	SystemPrompt *string  `json:"systemPrompt"`
	Model        *string  `json:"model" binding:"omitempty,min=1,max=64"`
	Temperature  *float64 `json:"temperature" binding:"omitempty,min=0,max=2"`
	TopP         *float64 `json:"topP" binding:"omitempty,min=0,max=1"`
	MaxTokens    *int     `json:"maxTokens" binding:"omitempty,min=1,max=8192"`
}
