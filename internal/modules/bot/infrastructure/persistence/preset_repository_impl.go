package persistence

import (
	"context"
	"time"

	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"

	"gorm.io/gorm"
)

type presetRepositoryImpl struct {
	db *gorm.DB
}

func NewPresetRepository(db *gorm.DB) repository.PresetRepository {
	return &presetRepositoryImpl{db: db}
}

func (r *presetRepositoryImpl) List(ctx context.Context, tenant string) ([]entity.AIPreset, error) {
	var items []entity.AIPreset
	err := r.db.WithContext(ctx).Where("tenant = ?", tenant).Order("updated_at DESC").Find(&items).Error
	return items, err
}

func (r *presetRepositoryImpl) GetByID(ctx context.Context, id string) (*entity.AIPreset, error) {
	var p entity.AIPreset
	return takeOne(r.db.WithContext(ctx).Where("id = ?", id), &p)
}

func (r *presetRepositoryImpl) GetByTenantAndName(ctx context.Context, tenant, name string) (*entity.AIPreset, error) {
	var p entity.AIPreset
	return takeOne(r.db.WithContext(ctx).Where("tenant = ? AND name = ?", tenant, name), &p)
}

func (r *presetRepositoryImpl) Create(ctx context.Context, p *entity.AIPreset) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *presetRepositoryImpl) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	fields["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&entity.AIPreset{}).Where("id = ?", id).Updates(fields).Error
}

func (r *presetRepositoryImpl) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.AIPreset{})
	return res.RowsAffected > 0, res.Error
}
