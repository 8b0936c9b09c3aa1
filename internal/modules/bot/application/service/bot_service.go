package service

import (
	"context"
	"strings"
	"time"

	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/application/dto/respond"
	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"
	"BotDesk/internal/modules/live/domain/event"
	"BotDesk/pkg/util"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

// DefaultBotName /api/bots/init 创建的机器人名称
const DefaultBotName = "admin-bot-001"

type BotService interface {
	List(ctx context.Context, tenant string) (*respond.BotListRespond, error)
	Get(ctx context.Context, id string) (*entity.Bot, error)
	Update(ctx context.Context, id string, req request.UpdateBotRequest) (*entity.Bot, error)
	Delete(ctx context.Context, id string) error
	InitDefault(ctx context.Context, tenant string) (*entity.Bot, error)
	Summary(ctx context.Context, id string) (*respond.BotSummaryRespond, error)
}

type botServiceImpl struct {
	bots    repository.BotRepository
	secrets repository.SecretRepository
	configs repository.ConfigRepository
	events  event.Publisher
}

func NewBotService(bots repository.BotRepository, secrets repository.SecretRepository, configs repository.ConfigRepository, events event.Publisher) BotService {
	if events == nil {
		events = event.NopPublisher{}
	}
	return &botServiceImpl{bots: bots, secrets: secrets, configs: configs, events: events}
}

func (s *botServiceImpl) List(ctx context.Context, tenant string) (*respond.BotListRespond, error) {
	items, err := s.bots.List(ctx, tenant)
	if err != nil {
		zlog.Error("list bots failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if items == nil {
		items = []entity.Bot{}
	}
	return &respond.BotListRespond{Items: items}, nil
}

func (s *botServiceImpl) Get(ctx context.Context, id string) (*entity.Bot, error) {
	return mustBot(ctx, s.bots, id)
}

func (s *botServiceImpl) Update(ctx context.Context, id string, req request.UpdateBotRequest) (*entity.Bot, error) {
	before, err := mustBot(ctx, s.bots, id)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, xerr.ErrParam
		}
		fields["name"] = name
	}
	if req.Active != nil {
		fields["active"] = *req.Active
	}
	if req.VerifiedAt.Set {
		fields["verified_at"] = req.VerifiedAt.Value
	}
	if len(fields) == 0 {
		return nil, xerr.ErrNothingToUpdate
	}

	if err := s.bots.Update(ctx, id, fields); err != nil {
		zlog.Error("update bot failed", zap.String("bot_id", id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	after, err := mustBot(ctx, s.bots, id)
	if err != nil {
		return nil, err
	}

	if before.VerifiedAt == nil && after.VerifiedAt != nil {
		s.events.Publish(ctx, event.Event{Type: event.TypeBotVerified, Tenant: after.Tenant, BotID: after.Id, At: time.Now().UTC()})
	}
	return after, nil
}

func (s *botServiceImpl) Delete(ctx context.Context, id string) error {
	ok, err := s.bots.Delete(ctx, id)
	if err != nil {
		zlog.Error("delete bot failed", zap.String("bot_id", id), zap.Error(err))
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.ErrBotNotFound
	}
	return nil
}

// InitDefault 以 (tenant, name) 去重；并发创建撞唯一索引时回读已有记录
func (s *botServiceImpl) InitDefault(ctx context.Context, tenant string) (*entity.Bot, error) {
	existed, err := s.bots.GetByTenantAndName(ctx, tenant, DefaultBotName)
	if err != nil {
		return nil, xerr.ErrServerError
	}
	if existed != nil {
		return existed, nil
	}

	now := time.Now()
	bot := &entity.Bot{
		Id:        util.GenerateUUID(),
		Tenant:    tenant,
		Name:      DefaultBotName,
		Platform:  entity.PlatformLine,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.bots.Create(ctx, bot); err != nil {
		if again, getErr := s.bots.GetByTenantAndName(ctx, tenant, DefaultBotName); getErr == nil && again != nil {
			return again, nil
		}
		zlog.Error("init default bot failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return bot, nil
}

func (s *botServiceImpl) Summary(ctx context.Context, id string) (*respond.BotSummaryRespond, error) {
	bot, err := mustBot(ctx, s.bots, id)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.GetByBotID(ctx, id)
	if err != nil {
		return nil, xerr.ErrServerError
	}
	sec, err := s.secrets.GetByBotID(ctx, id)
	if err != nil {
		return nil, xerr.ErrServerError
	}

	out := &respond.BotSummaryRespond{
		Bot:    respond.BotBrief{ID: bot.Id, Name: bot.Name, Platform: bot.Platform},
		Config: cfg,
	}
	if sec != nil {
		out.Secrets = &respond.SecretPreview{
			ChannelSecret:      util.MaskSecret(sec.GetChannelSecret()),
			ChannelAccessToken: util.MaskSecret(sec.GetChannelAccessToken()),
			OpenaiAPIKey:       util.MaskSecret(sec.GetOpenaiAPIKey()),
		}
	}
	return out, nil
}

func mustBot(ctx context.Context, bots repository.BotRepository, id string) (*entity.Bot, error) {
	if strings.TrimSpace(id) == "" {
		return nil, xerr.ErrMissingBotID
	}
	bot, err := bots.GetByID(ctx, id)
	if err != nil {
		zlog.Error("get bot failed", zap.String("bot_id", id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if bot == nil {
		return nil, xerr.ErrBotNotFound
	}
	return bot, nil
}
