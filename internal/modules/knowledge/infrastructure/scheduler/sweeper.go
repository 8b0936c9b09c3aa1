package scheduler

import (
	"context"
	"fmt"
	"time"

	"BotDesk/internal/modules/knowledge/domain/entity"
	"BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/internal/modules/knowledge/infrastructure/queue"
	"BotDesk/pkg/zlog"

	"github.com/go-co-op/gocron/v2"
	"go.uber.org/zap"
)

const sweepBatch = 50

// Sweeper 重新派发长时间停留在 pending/indexing 的文档，
// 覆盖派发失败和进程在索引中途退出两种情况
type Sweeper struct {
	docs       repository.DocRepository
	dispatcher queue.Dispatcher
	staleAfter time.Duration
	now        func() time.Time
}

func NewSweeper(docs repository.DocRepository, dispatcher queue.Dispatcher, staleAfter time.Duration) *Sweeper {
	if staleAfter <= 0 {
		staleAfter = 10 * time.Minute
	}
	return &Sweeper{docs: docs, dispatcher: dispatcher, staleAfter: staleAfter, now: time.Now}
}

// Sweep 返回本轮重新派发的文档数
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	before := s.now().Add(-s.staleAfter)
	docs, err := s.docs.ListStale(ctx, []string{entity.DocStatusPending, entity.DocStatusIndexing}, before, sweepBatch)
	if err != nil {
		return 0, fmt.Errorf("list stale docs: %w", err)
	}
	n := 0
	for _, d := range docs {
		err := s.dispatcher.Dispatch(ctx, queue.IndexJob{DocID: d.Id, Tenant: d.Tenant, RequestedAt: s.now()})
		if err != nil {
			zlog.Warn("redispatch stale doc failed", zap.String("doc_id", d.Id), zap.Error(err))
			continue
		}
		n++
	}
	if n > 0 {
		zlog.Info("stale knowledge docs redispatched", zap.Int("count", n))
	}
	return n, nil
}

// Start 按 interval 周期执行 Sweep，返回的 Scheduler 由调用方 Shutdown
func (s *Sweeper) Start(ctx context.Context, interval time.Duration) (gocron.Scheduler, error) {
	sch, err := gocron.NewScheduler(
		gocron.WithLocation(time.UTC),
		gocron.WithLogger(zlog.NewGocronLogger()),
	)
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = sch.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			if _, err := s.Sweep(ctx); err != nil {
				zlog.Error("knowledge sweep failed", zap.Error(err))
			}
		}),
		gocron.WithName("knowledge-index-sweeper"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sch.Shutdown()
		return nil, fmt.Errorf("schedule knowledge sweeper: %w", err)
	}
	sch.Start()
	return sch, nil
}
