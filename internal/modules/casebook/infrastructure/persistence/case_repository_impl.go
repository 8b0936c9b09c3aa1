package persistence

import (
	"context"
	"errors"
	"time"

	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/internal/modules/casebook/domain/repository"

	"gorm.io/gorm"
)

type caseRepositoryImpl struct {
	db *gorm.DB
}

func NewCaseRepository(db *gorm.DB) repository.CaseRepository {
	return &caseRepositoryImpl{db: db}
}

func (r *caseRepositoryImpl) FindRecent(ctx context.Context, botID, userID, kind string, since time.Time) (*entity.CaseItem, error) {
	var item entity.CaseItem
	err := r.db.WithContext(ctx).
		Where("bot_id = ? AND user_id = ? AND kind = ? AND created_at >= ?", botID, userID, kind, since).
		Order("created_at DESC").
		Take(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

func (r *caseRepositoryImpl) Create(ctx context.Context, item *entity.CaseItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// 列表接口不返回 meta
var caseListColumns = []string{"id", "bot_id", "user_id", "kind", "text", "created_at"}

func (r *caseRepositoryImpl) ListRecentByBot(ctx context.Context, botID string, limit int) ([]entity.CaseItem, error) {
	var items []entity.CaseItem
	err := r.db.WithContext(ctx).
		Select(caseListColumns).
		Where("bot_id = ?", botID).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *caseRepositoryImpl) ListRecentByBots(ctx context.Context, botIDs []string, limit int) ([]entity.CaseItem, error) {
	if len(botIDs) == 0 {
		return []entity.CaseItem{}, nil
	}
	var items []entity.CaseItem
	err := r.db.WithContext(ctx).
		Select(caseListColumns).
		Where("bot_id IN ?", botIDs).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error
	return items, err
}
