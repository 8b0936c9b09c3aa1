package respond

import "BotDesk/internal/modules/casebook/domain/entity"

type CaseRespond struct {
	Item *entity.CaseItem `json:"item"`
}

type CaseListRespond struct {
	Items []entity.CaseItem `json:"items"`
}

type StatDailyRespond struct {
	Stat *entity.StatDaily `json:"stat"`
}

type StatRangeRespond struct {
	From  string             `json:"from"`
	To    string             `json:"to"`
	Items []entity.StatDaily `json:"items"`
}
