package persistence

import (
	"context"
	"time"

	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type secretRepositoryImpl struct {
	db *gorm.DB
}

func NewSecretRepository(db *gorm.DB) repository.SecretRepository {
	return &secretRepositoryImpl{db: db}
}

func (r *secretRepositoryImpl) GetByBotID(ctx context.Context, botID string) (*entity.BotSecret, error) {
	var s entity.BotSecret
	return takeOne(r.db.WithContext(ctx).Where("bot_id = ?", botID), &s)
}

// Upsert 通过 uniq_bot_secret_bot 唯一索引插入或只更新传入的字段
func (r *secretRepositoryImpl) Upsert(ctx context.Context, botID string, patch repository.SecretPatch) (*entity.BotSecret, error) {
	now := time.Now()
	row := &entity.BotSecret{
		BotId:              botID,
		ChannelSecret:      patch.ChannelSecret,
		ChannelAccessToken: patch.ChannelAccessToken,
		OpenaiAPIKey:       patch.OpenaiAPIKey,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	cols := []string{"updated_at"}
	if patch.ChannelSecret != nil {
		cols = append(cols, "channel_secret")
	}
	if patch.ChannelAccessToken != nil {
		cols = append(cols, "channel_access_token")
	}
	if patch.OpenaiAPIKey != nil {
		cols = append(cols, "openai_api_key")
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "bot_id"}},
		DoUpdates: clause.AssignmentColumns(cols),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return r.GetByBotID(ctx, botID)
}
