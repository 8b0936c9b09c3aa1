package service

const (
	ReasonNotTextMessage = "not_text_message"
	ErrPersistFailed     = "persist_failed"

	MsgBotNotConfigured = "line_bot_not_configured"
	MsgInvalidSignature = "invalid_signature"
	MsgInternalError    = "internal_error"
	MsgPayloadTooLarge  = "payload_too_large"
)

// Outcome 单个事件的处理结果，顺序与请求中的事件一致
type Outcome struct {
	OK                 *bool  `json:"ok,omitempty"`
	Skipped            bool   `json:"skipped,omitempty"`
	Reason             string `json:"reason,omitempty"`
	DuplicateWithin15m bool   `json:"duplicateWithin15m,omitempty"`
	CaseID             string `json:"caseId,omitempty"`
	Error              string `json:"error,omitempty"`
	Replied            *bool  `json:"replied,omitempty"`
}

// Response webhook 对 LINE 平台的响应体
type Response struct {
	OK       bool      `json:"ok"`
	Message  string    `json:"message,omitempty"`
	NoEvents bool      `json:"noEvents,omitempty"`
	Results  []Outcome `json:"results,omitempty"`
	Retry    *bool     `json:"retry,omitempty"`
}

func boolPtr(b bool) *bool { return &b }

func skippedOutcome() Outcome {
	return Outcome{Skipped: true, Reason: ReasonNotTextMessage}
}

func duplicateOutcome(caseID string) Outcome {
	return Outcome{OK: boolPtr(true), DuplicateWithin15m: true, CaseID: caseID, Replied: boolPtr(false)}
}

func failedOutcome() Outcome {
	return Outcome{OK: boolPtr(false), Error: ErrPersistFailed, Replied: boolPtr(false)}
}

func createdOutcome(caseID string, replied bool) Outcome {
	return Outcome{OK: boolPtr(true), CaseID: caseID, Replied: boolPtr(replied)}
}

func errorResponse(msg string) Response {
	return Response{OK: false, Message: msg}
}
