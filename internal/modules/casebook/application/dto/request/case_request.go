package request

import (
	"encoding/json"
	"strings"
)

// CreateCaseRequest 同时兼容旧字段 bot_id/user_id/type/message
type CreateCaseRequest struct {
	BotID   string          `json:"botId"`
	UserID  string          `json:"userId"`
	Kind    string          `json:"kind"`
	Text    string          `json:"text"`
	Meta    json.RawMessage `json:"meta"`
	BotID0  string          `json:"bot_id"`
	UserID0 string          `json:"user_id"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
}

// Normalize 合并旧字段，kind 统一小写
func (r *CreateCaseRequest) Normalize() {
	r.BotID = firstNonEmpty(r.BotID, r.BotID0)
	r.UserID = firstNonEmpty(r.UserID, r.UserID0)
	r.Kind = strings.ToLower(firstNonEmpty(r.Kind, r.Type))
	r.Text = firstNonEmpty(r.Text, r.Message)
}

func (r *CreateCaseRequest) Valid() bool {
	return r.BotID != "" && r.UserID != "" && r.Kind != "" && r.Text != ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
