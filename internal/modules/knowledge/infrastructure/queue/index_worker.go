package queue

import (
	"context"
	"errors"
	"sync"

	"BotDesk/internal/modules/knowledge/infrastructure/mq"
	"BotDesk/internal/modules/knowledge/infrastructure/pipeline"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

// Indexer 执行单个文档的索引
type Indexer interface {
	Run(ctx context.Context, docID string) (*pipeline.IndexResult, error)
}

// IndexWorker 消费索引 topic
type IndexWorker struct {
	consumer mq.Consumer
	indexer  Indexer
}

func NewIndexWorker(consumer mq.Consumer, indexer Indexer) *IndexWorker {
	return &IndexWorker{consumer: consumer, indexer: indexer}
}

func (w *IndexWorker) Run(ctx context.Context) error {
	if w == nil || w.consumer == nil {
		return errors.New("consumer is nil")
	}
	return w.consumer.Run(ctx, w)
}

// Handle 失败已写回文档状态，这里总是确认消息避免毒消息反复重投
func (w *IndexWorker) Handle(ctx context.Context, msg mq.Message) error {
	if v := msg.JobVersion(); v != "" && v != IndexJobVersion {
		zlog.Warn("knowledge index job version unsupported",
			zap.String("version", v), zap.String("doc_id", msg.DocID()), zap.String("tenant", msg.Tenant()))
		return nil
	}
	job, err := DecodeIndexJob(msg.Value)
	if err != nil {
		zlog.Warn("knowledge index job invalid", zap.String("topic", msg.Topic),
			zap.String("doc_id", msg.DocID()), zap.String("tenant", msg.Tenant()), zap.Error(err))
		return nil
	}
	if job.Tenant == "" {
		job.Tenant = msg.Tenant()
	}
	if _, err := w.indexer.Run(ctx, job.DocID); err != nil {
		if errors.Is(err, pipeline.ErrDocNotFound) {
			zlog.Info("knowledge doc gone before indexing", zap.String("doc_id", job.DocID))
			return nil
		}
		if ctx.Err() != nil {
			// 进程退出中，不确认，交给下次重投
			return ctx.Err()
		}
		zlog.Warn("knowledge index job failed", zap.String("doc_id", job.DocID), zap.String("tenant", job.Tenant), zap.Error(err))
	}
	return nil
}

// LocalDispatcher 未配置 Kafka 时在进程内异步执行，并发受 slots 限制
type LocalDispatcher struct {
	base    context.Context
	indexer Indexer
	slots   chan struct{}
	wg      sync.WaitGroup
}

func NewLocalDispatcher(base context.Context, indexer Indexer, concurrency int) *LocalDispatcher {
	if concurrency <= 0 {
		concurrency = 2
	}
	return &LocalDispatcher{base: base, indexer: indexer, slots: make(chan struct{}, concurrency)}
}

func (d *LocalDispatcher) Dispatch(_ context.Context, job IndexJob) error {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		select {
		case d.slots <- struct{}{}:
		case <-d.base.Done():
			return
		}
		defer func() { <-d.slots }()
		if _, err := d.indexer.Run(d.base, job.DocID); err != nil {
			zlog.Warn("knowledge index failed", zap.String("doc_id", job.DocID), zap.Error(err))
		}
	}()
	return nil
}

// Wait 等待已派发的任务结束
func (d *LocalDispatcher) Wait() {
	d.wg.Wait()
}
