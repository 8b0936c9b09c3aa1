package service

import (
	"context"
	"strings"
	"time"

	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/application/dto/respond"
	"BotDesk/internal/modules/bot/domain/repository"
	"BotDesk/internal/modules/live/domain/event"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

// MaskPlaceholder 已设置密钥在读取时的统一展示值
const MaskPlaceholder = "********"

// SecretService 只写凭据仓库，读取只返回是否存在
type SecretService interface {
	GetMasked(ctx context.Context, botID string) (*respond.MaskedSecretsRespond, error)
	Save(ctx context.Context, botID string, req request.SaveSecretsRequest) (*respond.SaveSecretsRespond, error)
}

type secretServiceImpl struct {
	bots    repository.BotRepository
	secrets repository.SecretRepository
	events  event.Publisher
}

func NewSecretService(bots repository.BotRepository, secrets repository.SecretRepository, events event.Publisher) SecretService {
	if events == nil {
		events = event.NopPublisher{}
	}
	return &secretServiceImpl{bots: bots, secrets: secrets, events: events}
}

func (s *secretServiceImpl) GetMasked(ctx context.Context, botID string) (*respond.MaskedSecretsRespond, error) {
	if _, err := mustBot(ctx, s.bots, botID); err != nil {
		return nil, err
	}
	sec, err := s.secrets.GetByBotID(ctx, botID)
	if err != nil {
		zlog.Error("get bot secret failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.MaskedSecretsRespond{
		LineAccessToken:   mask(sec.GetChannelAccessToken()),
		LineChannelSecret: mask(sec.GetChannelSecret()),
		OpenaiAPIKey:      mask(sec.GetOpenaiAPIKey()),
	}, nil
}

func (s *secretServiceImpl) Save(ctx context.Context, botID string, req request.SaveSecretsRequest) (*respond.SaveSecretsRespond, error) {
	bot, err := mustBot(ctx, s.bots, botID)
	if err != nil {
		return nil, err
	}

	patch := repository.SecretPatch{
		ChannelSecret:      sanitize(req.LineChannelSecret),
		ChannelAccessToken: sanitize(req.LineAccessToken),
		OpenaiAPIKey:       sanitize(req.OpenaiAPIKey),
	}
	sec, err := s.secrets.Upsert(ctx, botID, patch)
	if err != nil {
		zlog.Error("upsert bot secret failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	out := &respond.SaveSecretsRespond{BotID: botID, Verified: bot.VerifiedAt != nil}
	if !sec.HasLineCredentials() || bot.VerifiedAt != nil {
		return out, nil
	}

	now := time.Now().UTC()
	if err := s.bots.Update(ctx, botID, map[string]interface{}{"verified_at": now}); err != nil {
		zlog.Error("mark bot verified failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	out.Verified = true
	zlog.Info("bot verified", zap.String("tenant", bot.Tenant), zap.String("bot_id", botID))
	s.events.Publish(ctx, event.Event{Type: event.TypeBotVerified, Tenant: bot.Tenant, BotID: botID, At: now})
	return out, nil
}

// sanitize 空值与掩码占位符视为未提交
func sanitize(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" || strings.Trim(t, "*") == "" {
		return nil
	}
	return &t
}

func mask(v string) string {
	if v == "" {
		return ""
	}
	return MaskPlaceholder
}
