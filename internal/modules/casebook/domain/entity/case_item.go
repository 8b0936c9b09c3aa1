package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/datatypes"
)

const (
	KindDeposit  = "deposit"
	KindWithdraw = "withdraw"
	KindKYC      = "kyc"
	KindRegister = "register"
	KindOther    = "other"
)

// CaseItem 一条用户求助记录
type CaseItem struct {
	Id        string         `gorm:"column:id;type:char(36);primaryKey" json:"id"`
	BotId     string         `gorm:"column:bot_id;type:char(36);not null;index:idx_case_dedupe,priority:1" json:"botId"`
	UserId    string         `gorm:"column:user_id;type:varchar(128);not null;index:idx_case_dedupe,priority:2" json:"userId"`
	Kind      string         `gorm:"column:kind;type:varchar(32);not null;index:idx_case_dedupe,priority:3" json:"kind"`
	Text      string         `gorm:"column:text;type:text;not null" json:"text"`
	Meta      datatypes.JSON `gorm:"column:meta" json:"meta,omitempty"`
	CreatedAt time.Time      `gorm:"column:created_at;type:datetime(3);not null;index:idx_case_dedupe,priority:4" json:"createdAt"`
}

func (CaseItem) TableName() string { return "case_item" }

// CaseMeta 附加信息，未知字段会被拒绝
type CaseMeta struct {
	UserID        string `json:"userId,omitempty" validate:"omitempty,max=128"`
	Phone         string `json:"phone,omitempty" validate:"omitempty,max=32"`
	Bank          string `json:"bank,omitempty" validate:"omitempty,max=64"`
	AccountNumber string `json:"accountNumber,omitempty" validate:"omitempty,max=64"`
	Time          string `json:"time,omitempty" validate:"omitempty,max=64"`
	SlipURL       string `json:"slipUrl,omitempty" validate:"omitempty,url"`
}

var (
	ErrInvalidMeta = errors.New("invalid case meta")
	metaValidate   = validator.New()
)

// ParseCaseMeta 解析并校验原始 JSON；空值与 null 返回 nil
func ParseCaseMeta(raw json.RawMessage) (*CaseMeta, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	var m CaseMeta
	if err := dec.Decode(&m); err != nil {
		return nil, errors.Join(ErrInvalidMeta, err)
	}
	if err := metaValidate.Struct(&m); err != nil {
		return nil, errors.Join(ErrInvalidMeta, err)
	}
	return &m, nil
}

func (m *CaseMeta) JSON() (datatypes.JSON, error) {
	if m == nil {
		return nil, nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b), nil
}

// GetMeta 读取已存储的附加信息
func (c *CaseItem) GetMeta() (*CaseMeta, error) {
	if len(c.Meta) == 0 {
		return nil, nil
	}
	var m CaseMeta
	if err := json.Unmarshal(c.Meta, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
