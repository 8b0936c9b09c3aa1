package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	httpServer "BotDesk/api/http"
	"BotDesk/internal/config"
	"BotDesk/internal/initial"
	"BotDesk/internal/middleware/ratelimit"
	adminService "BotDesk/internal/modules/admin/application/service"
	adminPersistence "BotDesk/internal/modules/admin/infrastructure/persistence"
	adminHandler "BotDesk/internal/modules/admin/interface/http"
	aiService "BotDesk/internal/modules/ai/application/service"
	"BotDesk/internal/modules/ai/infrastructure/llm"
	aiHandler "BotDesk/internal/modules/ai/interface/http"
	botService "BotDesk/internal/modules/bot/application/service"
	botPersistence "BotDesk/internal/modules/bot/infrastructure/persistence"
	botHandler "BotDesk/internal/modules/bot/interface/http"
	caseService "BotDesk/internal/modules/casebook/application/service"
	caseRepo "BotDesk/internal/modules/casebook/domain/repository"
	"BotDesk/internal/modules/casebook/infrastructure/lock"
	casePersistence "BotDesk/internal/modules/casebook/infrastructure/persistence"
	caseHandler "BotDesk/internal/modules/casebook/interface/http"
	knowledgeService "BotDesk/internal/modules/knowledge/application/service"
	knowledgeRepo "BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/internal/modules/knowledge/infrastructure/chunking"
	"BotDesk/internal/modules/knowledge/infrastructure/embedding"
	"BotDesk/internal/modules/knowledge/infrastructure/mq/kafka"
	knowledgePersistence "BotDesk/internal/modules/knowledge/infrastructure/persistence"
	"BotDesk/internal/modules/knowledge/infrastructure/pipeline"
	"BotDesk/internal/modules/knowledge/infrastructure/queue"
	"BotDesk/internal/modules/knowledge/infrastructure/retriever"
	"BotDesk/internal/modules/knowledge/infrastructure/scheduler"
	"BotDesk/internal/modules/knowledge/infrastructure/vectordb"
	knowledgeHandler "BotDesk/internal/modules/knowledge/interface/http"
	"BotDesk/internal/modules/live/infrastructure/broadcast"
	liveHandler "BotDesk/internal/modules/live/interface/http"
	webhookService "BotDesk/internal/modules/webhook/application/service"
	"BotDesk/internal/modules/webhook/domain/classifier"
	"BotDesk/internal/modules/webhook/infrastructure/lineapi"
	"BotDesk/internal/modules/webhook/infrastructure/signature"
	webhookHandler "BotDesk/internal/modules/webhook/interface/http"
	myredis "BotDesk/pkg/redis"
	"BotDesk/pkg/util/myjwt"
	"BotDesk/pkg/ws"
	"BotDesk/pkg/zlog"

	"github.com/go-co-op/gocron/v2"
	mclient "github.com/milvus-io/milvus-sdk-go/v2/client"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// app 进程内所有长生命周期组件
type app struct {
	conf   *config.Config
	db     *gorm.DB
	redis  *myredis.Client
	milvus mclient.Client

	server  *http.Server
	relay   *broadcast.RedisRelay
	bcast   *broadcast.Broadcaster
	worker  *queue.IndexWorker
	local   *queue.LocalDispatcher
	sweeper *scheduler.Sweeper
	closers []func() error
}

func newApp(ctx context.Context, conf *config.Config) (*app, error) {
	a := &app{conf: conf}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	db, err := initial.NewGormDB(conf.MysqlConfig)
	if err != nil {
		return nil, err
	}
	a.db = db
	if err := initial.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	if a.redis, err = initial.NewRedisClient(ctx, conf.RedisConfig); err != nil {
		return nil, err
	}
	if a.redis != nil {
		a.closers = append(a.closers, a.redis.Close)
	}

	// 仓储
	bots := botPersistence.NewBotRepository(db)
	secrets := botPersistence.NewSecretRepository(db)
	configs := botPersistence.NewConfigRepository(db)
	presets := botPersistence.NewPresetRepository(db)
	cases := casePersistence.NewCaseRepository(db)
	stats := casePersistence.NewStatRepository(db, conf.WebhookConfig.StatRetryAttempts)
	docs := knowledgePersistence.NewDocRepository(db)
	chunks := knowledgePersistence.NewChunkRepository(db)
	admins := adminPersistence.NewAdminRepository(db)

	// 实时推送
	hub := ws.NewHub()
	var relay broadcast.Relay
	if a.redis != nil {
		a.relay = broadcast.NewRedisRelay(a.redis, broadcast.DefaultChannel)
		relay = a.relay
	}
	a.bcast = broadcast.NewBroadcaster(hub, relay)

	// 知识库
	embedder, meta := embedding.NewEmbedderOrFallback(ctx, conf)
	zlog.Info("embedder ready", zap.String("provider", meta.Provider), zap.String("model", meta.Model),
		zap.Int("dim", meta.Dim), zap.Bool("degraded", meta.Degraded))

	var store knowledgeRepo.VectorStore
	var ret knowledgeRepo.Retriever
	if strings.EqualFold(conf.KnowledgeConfig.Backend, "milvus") {
		if a.milvus, err = initial.NewMilvusClient(ctx, conf.MilvusConfig); err != nil {
			return nil, err
		}
		if a.milvus == nil {
			return nil, errors.New("knowledge backend milvus requires milvusConfig.address")
		}
		a.closers = append(a.closers, a.milvus.Close)
		ms, err := vectordb.NewMilvusStore(a.milvus, conf.MilvusConfig.CollectionName, conf.MilvusConfig.VectorDim)
		if err != nil {
			return nil, err
		}
		store = ms
		ret = retriever.NewMilvusRetriever(embedder, ms)
	} else {
		ret = retriever.NewCosineRetriever(embedder, chunks, conf.KnowledgeConfig.CandidateLimit)
	}

	chunker := chunking.New(conf.KnowledgeConfig.Splitter, conf.KnowledgeConfig.ChunkSize, conf.KnowledgeConfig.ChunkOverlap)
	indexer := pipeline.NewIndexPipeline(docs, chunks, chunker, embedder, store)

	var dispatcher queue.Dispatcher
	if conf.KafkaConfig.Enabled() {
		dispatcher, err = a.initKafka(indexer)
		if err != nil {
			return nil, err
		}
	} else {
		a.local = queue.NewLocalDispatcher(ctx, indexer, 2)
		dispatcher = a.local
	}
	a.sweeper = scheduler.NewSweeper(docs, dispatcher, time.Duration(conf.KnowledgeConfig.StaleAfterMinutes)*time.Minute)

	// AI
	answerer := aiService.NewAnswerer(
		llm.NewChatModelFactory(conf.AIConfig.ChatModel),
		time.Duration(conf.AIConfig.AnswerTimeoutSeconds)*time.Second,
	)

	// 去重锁
	var locker caseRepo.KeyLocker = lock.NewLocalLocker()
	if a.redis != nil {
		locker = lock.NewRedisLocker(a.redis)
	}
	caseUow := casePersistence.NewCaseUnitOfWork(db, conf.WebhookConfig.StatRetryAttempts)
	recorder := caseService.NewRecorder(cases, caseUow, locker, time.Duration(conf.WebhookConfig.DedupeWindowMinutes)*time.Minute)

	line := lineapi.NewClient(conf.LineConfig.APIBaseURL, time.Duration(conf.LineConfig.ReplyTimeoutSeconds)*time.Second)

	jwtOpts := myjwt.Options{Key: conf.JwtConfig.Key, ExpireHours: conf.JwtConfig.ExpireHours, Issuer: conf.JwtConfig.Issuer}
	auth := adminService.NewAuthService(admins, jwtOpts)
	if err := auth.EnsureBootstrapAdmin(ctx, conf.AdminConfig.Email, conf.AdminConfig.Password); err != nil {
		return nil, fmt.Errorf("bootstrap admin: %w", err)
	}

	webhook := webhookService.NewLineWebhookService(webhookService.LineWebhookDeps{
		Bots:       bots,
		Secrets:    secrets,
		Configs:    configs,
		Verifier:   signature.NewVerifier(conf.LineConfig.DevSkipVerify),
		Classifier: classifier.NewKeywordClassifier(),
		Recorder:   recorder,
		Retriever:  ret,
		Answerer:   answerer,
		Line:       line,
		Events:     a.bcast,
	})

	handlers := httpServer.Handlers{
		Auth: adminHandler.NewAuthHandler(auth),
		Bot: botHandler.NewBotHandler(
			botService.NewBotService(bots, secrets, configs, a.bcast),
			botService.NewSecretService(bots, secrets, a.bcast),
			botService.NewConfigService(bots, configs),
		),
		Preset:    botHandler.NewPresetHandler(botService.NewPresetService(presets)),
		Case:      caseHandler.NewCaseHandler(caseService.NewCaseService(bots, cases), caseService.NewStatsService(stats)),
		Knowledge: knowledgeHandler.NewKnowledgeHandler(knowledgeService.NewDocService(docs, store, ret, dispatcher)),
		AI:        aiHandler.NewAIHandler(aiService.NewAskService(bots, secrets, configs, ret, answerer, conf.AIConfig.FallbackAPIKey)),
		Live:      liveHandler.NewLiveHandler(hub, conf.MainConfig.AllowedOrigins),
		Webhook:   webhookHandler.NewWebhookHandler(webhook, conf.LineConfig.MaxBodyBytes),
		Dev:       webhookHandler.NewDevHandler(webhookService.NewPingService(secrets, line)),
	}

	var limiter ratelimit.Counter
	if a.redis != nil {
		limiter = a.redis
	}
	a.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port),
		Handler:           httpServer.NewEngine(conf, handlers, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ok = true
	return a, nil
}

// initKafka 建 topic、生产者和消费组，返回 Kafka 派发器
func (a *app) initKafka(indexer queue.Indexer) (queue.Dispatcher, error) {
	kc := a.conf.KafkaConfig
	if err := kafka.EnsureTopic(kafka.TopicAdminConfig{Brokers: kc.Brokers, ClientID: kc.ClientID}, kc.IndexTopic, kc.Partitions, kc.Replication); err != nil {
		return nil, fmt.Errorf("ensure kafka topic: %w", err)
	}
	pub, err := kafka.NewPublisher(kafka.PublisherConfig{Brokers: kc.Brokers, ClientID: kc.ClientID})
	if err != nil {
		return nil, fmt.Errorf("kafka publisher: %w", err)
	}
	a.closers = append(a.closers, pub.Close)

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  kc.Brokers,
		GroupID:  kc.ConsumerGroupID,
		Topics:   []string{kc.IndexTopic},
		ClientID: kc.ClientID,
	})
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	a.closers = append(a.closers, consumer.Close)
	a.worker = queue.NewIndexWorker(consumer, indexer)
	return queue.NewKafkaDispatcher(pub, kc.IndexTopic), nil
}

// Run 阻塞到 ctx 结束或任一组件异常退出
func (a *app) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zlog.Info("http server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.server.Shutdown(shutdownCtx)
	})

	if a.relay != nil {
		g.Go(func() error {
			a.relay.Run(gCtx, a.bcast.Deliver)
			return nil
		})
	}

	if a.worker != nil {
		g.Go(func() error {
			zlog.Info("knowledge index worker started", zap.String("topic", a.conf.KafkaConfig.IndexTopic))
			if err := a.worker.Run(gCtx); err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("index worker: %w", err)
			}
			return nil
		})
	}

	interval := time.Duration(a.conf.KnowledgeConfig.SweepIntervalMinutes) * time.Minute
	sch, err := a.sweeper.Start(gCtx, interval)
	if err != nil {
		return err
	}
	g.Go(func() error {
		<-gCtx.Done()
		return stopScheduler(sch)
	})

	err = g.Wait()
	if a.local != nil {
		a.local.Wait()
	}
	return err
}

func stopScheduler(sch gocron.Scheduler) error {
	if err := sch.Shutdown(); err != nil {
		zlog.Warn("stop knowledge sweeper failed", zap.Error(err))
	}
	return nil
}

// Close 逆序释放外部连接
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			zlog.Warn("close resource failed", zap.Error(err))
		}
	}
	a.closers = nil
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		a.db = nil
	}
}
