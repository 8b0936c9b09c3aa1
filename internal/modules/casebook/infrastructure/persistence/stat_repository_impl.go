package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/internal/modules/casebook/domain/repository"
	"BotDesk/pkg/zlog"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultStatAttempts = 3
	statBackoffBase     = 50 * time.Millisecond
)

type statRepositoryImpl struct {
	db       *gorm.DB
	attempts int
}

func NewStatRepository(db *gorm.DB, attempts int) repository.StatRepository {
	if attempts <= 0 {
		attempts = defaultStatAttempts
	}
	return &statRepositoryImpl{db: db, attempts: attempts}
}

// Increment 单条 INSERT ... ON DUPLICATE KEY UPDATE，不存在读后写
func (r *statRepositoryImpl) Increment(ctx context.Context, botID, dateKey string, field entity.StatField) error {
	if !field.Valid() {
		return fmt.Errorf("unknown stat field %q", field)
	}
	row := &entity.StatDaily{BotId: botID, DateKey: dateKey, Total: 1}
	switch field {
	case entity.StatFieldText:
		row.Text = 1
	case entity.StatFieldFollow:
		row.Follow = 1
	case entity.StatFieldUnfollow:
		row.Unfollow = 1
	}
	col := string(field)

	err := withRetry(ctx, r.attempts, statBackoffBase, func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "bot_id"}, {Name: "date_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total": gorm.Expr("total + 1"),
				col:     gorm.Expr(col + " + 1"),
			}),
		}).Create(row).Error
	})
	if err != nil {
		zlog.Error("increment stat failed",
			zap.String("bot_id", botID), zap.String("date_key", dateKey),
			zap.String("field", col), zap.Error(err))
		return fmt.Errorf("increment stat %s/%s: %w", botID, dateKey, err)
	}
	return nil
}

func (r *statRepositoryImpl) Get(ctx context.Context, botID, dateKey string) (*entity.StatDaily, error) {
	var s entity.StatDaily
	err := r.db.WithContext(ctx).Where("bot_id = ? AND date_key = ?", botID, dateKey).Take(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *statRepositoryImpl) ListRange(ctx context.Context, botID, fromKey, toKey string) ([]entity.StatDaily, error) {
	var rows []entity.StatDaily
	err := r.db.WithContext(ctx).
		Where("bot_id = ? AND date_key BETWEEN ? AND ?", botID, fromKey, toKey).
		Order("date_key ASC").
		Find(&rows).Error
	return rows, err
}

// withRetry 指数退避重试，ctx 结束时立即返回
func withRetry(ctx context.Context, attempts int, base time.Duration, fn func() error) error {
	return retry.Do(fn,
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(base),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			// 最后一次失败同样会回调，此时不再重试
			if int(n)+1 < attempts {
				zlog.Warn("retrying after error", zap.Uint("attempt", n+1), zap.Error(err))
			}
		}),
	)
}
