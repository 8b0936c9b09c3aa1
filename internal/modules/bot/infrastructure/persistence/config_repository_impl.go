package persistence

import (
	"context"
	"time"

	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type configRepositoryImpl struct {
	db *gorm.DB
}

func NewConfigRepository(db *gorm.DB) repository.ConfigRepository {
	return &configRepositoryImpl{db: db}
}

func (r *configRepositoryImpl) GetByBotID(ctx context.Context, botID string) (*entity.BotConfig, error) {
	var c entity.BotConfig
	return takeOne(r.db.WithContext(ctx).Where("bot_id = ?", botID), &c)
}

// GetOrCreateDefault 并发首次读取时依赖唯一索引 + DO NOTHING 保证只有一行
func (r *configRepositoryImpl) GetOrCreateDefault(ctx context.Context, botID string) (*entity.BotConfig, error) {
	if cfg, err := r.GetByBotID(ctx, botID); err != nil || cfg != nil {
		return cfg, err
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(entity.NewDefaultConfig(botID, time.Now())).Error
	if err != nil {
		return nil, err
	}
	return r.GetByBotID(ctx, botID)
}

func (r *configRepositoryImpl) Upsert(ctx context.Context, botID string, patch repository.ConfigPatch) (*entity.BotConfig, error) {
	row := entity.NewDefaultConfig(botID, time.Now())
	cols := []string{"updated_at"}
	if patch.Model != nil {
		row.Model = *patch.Model
		cols = append(cols, "model")
	}
	if patch.SystemPrompt != nil {
		row.SystemPrompt = *patch.SystemPrompt
		cols = append(cols, "system_prompt")
	}
	if patch.Temperature != nil {
		row.Temperature = *patch.Temperature
		cols = append(cols, "temperature")
	}
	if patch.TopP != nil {
		row.TopP = *patch.TopP
		cols = append(cols, "top_p")
	}
	if patch.MaxTokens != nil {
		row.MaxTokens = *patch.MaxTokens
		cols = append(cols, "max_tokens")
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
