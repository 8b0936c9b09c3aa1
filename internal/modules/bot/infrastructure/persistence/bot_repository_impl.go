package persistence

import (
	"context"
	"errors"
	"time"

	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"

	"gorm.io/gorm"
)

type botRepositoryImpl struct {
	db *gorm.DB
}

func NewBotRepository(db *gorm.DB) repository.BotRepository {
	return &botRepositoryImpl{db: db}
}

func (r *botRepositoryImpl) List(ctx context.Context, tenant string) ([]entity.Bot, error) {
	var bots []entity.Bot
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if tenant != "" {
		q = q.Where("tenant = ?", tenant)
	}
	if err := q.Find(&bots).Error; err != nil {
		return nil, err
	}
	return bots, nil
}

func (r *botRepositoryImpl) ListIDsByTenant(ctx context.Context, tenant string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&entity.Bot{}).Where("tenant = ?", tenant).Pluck("id", &ids).Error
	return ids, err
}

func (r *botRepositoryImpl) GetByID(ctx context.Context, id string) (*entity.Bot, error) {
	var b entity.Bot
	return takeOne(r.db.WithContext(ctx).Where("id = ?", id), &b)
}

func (r *botRepositoryImpl) GetByTenantAndName(ctx context.Context, tenant, name string) (*entity.Bot, error) {
	var b entity.Bot
	return takeOne(r.db.WithContext(ctx).Where("tenant = ? AND name = ?", tenant, name), &b)
}

func (r *botRepositoryImpl) FindForPlatform(ctx context.Context, tenant, platform string) (*entity.Bot, error) {
	var b entity.Bot
	// active DESC 让启用中的机器人排在前面
	q := r.db.WithContext(ctx).
		Where("tenant = ? AND platform = ?", tenant, platform).
		Order("active DESC").Order("created_at ASC")
	return takeOne(q, &b)
}

func (r *botRepositoryImpl) Create(ctx context.Context, bot *entity.Bot) error {
	return r.db.WithContext(ctx).Create(bot).Error
}

func (r *botRepositoryImpl) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&entity.Bot{}).Where("id = ?", id).Updates(fields).Error
}

func (r *botRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// MySQL 外键会级联，这里显式删除保证在无外键的库上也成立
		if err := tx.Where("bot_id = ?", id).Delete(&entity.BotSecret{}).Error; err != nil {
			return err
		}
		if err := tx.Where("bot_id = ?", id).Delete(&entity.BotConfig{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&entity.Bot{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted > 0, err
}

func takeOne[T any](q *gorm.DB, dst *T) (*T, error) {
	err := q.Take(dst).Error
	if err == nil {
		return dst, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, err
}
