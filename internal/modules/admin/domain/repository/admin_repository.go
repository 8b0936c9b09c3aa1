package repository

import (
	"context"

	"BotDesk/internal/modules/admin/domain/entity"
)

// AdminRepository 查不到时返回 nil, nil
type AdminRepository interface {
	GetByEmail(ctx context.Context, email string) (*entity.AdminUser, error)
	GetByID(ctx context.Context, id string) (*entity.AdminUser, error)
	Create(ctx context.Context, user *entity.AdminUser) error
	UpdatePassword(ctx context.Context, id, hash string) error
}
