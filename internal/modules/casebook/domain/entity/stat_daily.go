package entity

// StatDaily 按 UTC 日期汇总的机器人事件计数，total = text + follow + unfollow
type StatDaily struct {
	Id       int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	BotId    string `gorm:"column:bot_id;type:char(36);not null;uniqueIndex:uniq_stat_bot_date" json:"botId"`
	DateKey  string `gorm:"column:date_key;type:char(10);not null;uniqueIndex:uniq_stat_bot_date" json:"dateKey"`
	Total    int64  `gorm:"column:total;not null;default:0" json:"total"`
	Text     int64  `gorm:"column:text;not null;default:0" json:"text"`
	Follow   int64  `gorm:"column:follow;not null;default:0" json:"follow"`
	Unfollow int64  `gorm:"column:unfollow;not null;default:0" json:"unfollow"`
}

func (StatDaily) TableName() string { return "stat_daily" }

// StatField 除 total 外可累加的计数列
type StatField string

const (
	StatFieldText     StatField = "text"
	StatFieldFollow   StatField = "follow"
	StatFieldUnfollow StatField = "unfollow"
)

func (f StatField) Valid() bool {
	switch f {
	case StatFieldText, StatFieldFollow, StatFieldUnfollow:
		return true
	}
	return false
}
