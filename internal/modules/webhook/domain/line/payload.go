package line

import "encoding/json"

const (
	EventTypeMessage  = "message"
	MessageTypeText   = "text"
	HeaderSignature   = "x-line-signature"
	HeaderRetryKey    = "x-line-retry-key"
	UnknownActorID    = "unknown"
	DefaultAPIBaseURL = "https://api.line.me"
)

// Payload LINE webhook 请求体，只解析用到的字段
type Payload struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

type Event struct {
	Type       string   `json:"type"`
	ReplyToken string   `json:"replyToken"`
	Timestamp  int64    `json:"timestamp"`
	Source     Source   `json:"source"`
	Message    *Message `json:"message,omitempty"`
}

type Source struct {
	Type    string `json:"type"`
	UserID  string `json:"userId,omitempty"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

type Message struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ParsePayload 非法 JSON 视为没有事件
func ParsePayload(raw []byte) Payload {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Payload{}
	}
	return p
}

// IsText 只有文本消息事件会进入分类与建单
func (e Event) IsText() bool {
	return e.Type == EventTypeMessage && e.Message != nil && e.Message.Type == MessageTypeText
}

// ActorID userId > groupId > roomId > "unknown"
func (s Source) ActorID() string {
	switch {
	case s.UserID != "":
		return s.UserID
	case s.GroupID != "":
		return s.GroupID
	case s.RoomID != "":
		return s.RoomID
	}
	return UnknownActorID
}
