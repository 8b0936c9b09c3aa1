package repository

import (
	"context"
	"time"

	"BotDesk/internal/modules/casebook/domain/entity"
)

type CaseRepository interface {
	// FindRecent 返回 since 之后同一 (bot, user, kind) 的最新一条，没有时返回 nil, nil
	FindRecent(ctx context.Context, botID, userID, kind string, since time.Time) (*entity.CaseItem, error)
	Create(ctx context.Context, item *entity.CaseItem) error
	ListRecentByBot(ctx context.Context, botID string, limit int) ([]entity.CaseItem, error)
	ListRecentByBots(ctx context.Context, botIDs []string, limit int) ([]entity.CaseItem, error)
}

type StatRepository interface {
	// Increment total 与 field 同时加一，是 StatDaily 唯一的写入口
	Increment(ctx context.Context, botID, dateKey string, field entity.StatField) error
	Get(ctx context.Context, botID, dateKey string) (*entity.StatDaily, error)
	ListRange(ctx context.Context, botID, fromKey, toKey string) ([]entity.StatDaily, error)
}

// CaseUnitOfWork case 与当日统计在同一事务内提交
type CaseUnitOfWork interface {
	Transaction(ctx context.Context, fn func(cases CaseRepository, stats StatRepository) error) error
}

// KeyLocker 短时互斥锁，返回的 unlock 必须调用
type KeyLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}
