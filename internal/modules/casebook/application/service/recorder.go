package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/internal/modules/casebook/domain/repository"
	"BotDesk/pkg/util"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const DefaultDedupeWindow = 15 * time.Minute

type RecordInput struct {
	BotID  string
	UserID string
	Kind   string
	Text   string
	Meta   *entity.CaseMeta
}

// RecordResult Created 与 Duplicate 互斥
type RecordResult struct {
	Created        *entity.CaseItem
	Duplicate      bool
	ExistingCaseID string
}

// Recorder 在去重窗口内对同一 (bot, user, kind) 只落一条 case
type Recorder struct {
	cases  repository.CaseRepository
	uow    repository.CaseUnitOfWork
	locker repository.KeyLocker
	window time.Duration
	now    func() time.Time
}

func NewRecorder(cases repository.CaseRepository, uow repository.CaseUnitOfWork, locker repository.KeyLocker, window time.Duration) *Recorder {
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &Recorder{cases: cases, uow: uow, locker: locker, window: window, now: time.Now}
}

func (r *Recorder) RecordIfNew(ctx context.Context, in RecordInput) (RecordResult, error) {
	key := strings.Join([]string{in.BotID, in.UserID, in.Kind}, "|")
	unlock, err := r.locker.Lock(ctx, key)
	if err != nil {
		return RecordResult{}, fmt.Errorf("lock case key: %w", err)
	}
	defer unlock()

	now := r.now().UTC()
	existing, err := r.cases.FindRecent(ctx, in.BotID, in.UserID, in.Kind, now.Add(-r.window))
	if err != nil {
		return RecordResult{}, fmt.Errorf("find recent case: %w", err)
	}
	if existing != nil {
		zlog.Info("duplicate case suppressed",
			zap.String("bot_id", in.BotID), zap.String("user_id", in.UserID),
			zap.String("kind", in.Kind), zap.String("case_id", existing.Id))
		return RecordResult{Duplicate: true, ExistingCaseID: existing.Id}, nil
	}

	item := &entity.CaseItem{
		Id:        util.GenerateUUID(),
		BotId:     in.BotID,
		UserId:    in.UserID,
		Kind:      in.Kind,
		Text:      in.Text,
		CreatedAt: now,
	}
	if item.Meta, err = in.Meta.JSON(); err != nil {
		return RecordResult{}, fmt.Errorf("encode case meta: %w", err)
	}
	// case 与统计同一事务，统计失败时 case 一并回滚
	err = r.uow.Transaction(ctx, func(cases repository.CaseRepository, stats repository.StatRepository) error {
		if err := cases.Create(ctx, item); err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		if err := stats.Increment(ctx, in.BotID, util.DateKey(now), entity.StatFieldText); err != nil {
			return fmt.Errorf("increment stat: %w", err)
		}
		return nil
	})
	if err != nil {
		return RecordResult{}, err
	}
	return RecordResult{Created: item}, nil
}
