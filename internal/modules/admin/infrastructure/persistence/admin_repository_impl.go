package persistence

import (
	"context"
	"errors"
	"time"

	"BotDesk/internal/modules/admin/domain/entity"
	"BotDesk/internal/modules/admin/domain/repository"

	"gorm.io/gorm"
)

type adminRepositoryImpl struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) repository.AdminRepository {
	return &adminRepositoryImpl{db: db}
}

func (r *adminRepositoryImpl) GetByEmail(ctx context.Context, email string) (*entity.AdminUser, error) {
	var user entity.AdminUser
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminRepositoryImpl) GetByID(ctx context.Context, id string) (*entity.AdminUser, error) {
	var user entity.AdminUser
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *adminRepositoryImpl) Create(ctx context.Context, user *entity.AdminUser) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *adminRepositoryImpl) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.db.WithContext(ctx).Model(&entity.AdminUser{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"password": hash, "updated_at": time.Now()}).Error
}
