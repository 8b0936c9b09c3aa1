package service

import (
	"context"
	"strings"

	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/application/dto/respond"
	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

type ConfigService interface {
	Get(ctx context.Context, botID string) (*respond.ConfigRespond, error)
	Update(ctx context.Context, botID string, req request.UpdateConfigRequest) (*respond.ConfigRespond, error)
}

type configServiceImpl struct {
	bots    repository.BotRepository
	configs repository.ConfigRepository
}

func NewConfigService(bots repository.BotRepository, configs repository.ConfigRepository) ConfigService {
	return &configServiceImpl{bots: bots, configs: configs}
}

// Get 首次读取时按默认值创建
func (s *configServiceImpl) Get(ctx context.Context, botID string) (*respond.ConfigRespond, error) {
	if _, err := mustBot(ctx, s.bots, botID); err != nil {
		return nil, err
	}
	cfg, err := s.configs.GetOrCreateDefault(ctx, botID)
	if err != nil {
		zlog.Error("get bot config failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.ConfigRespond{Config: cfg, AllowedModels: entity.AllowedModels}, nil
}

func (s *configServiceImpl) Update(ctx context.Context, botID string, req request.UpdateConfigRequest) (*respond.ConfigRespond, error) {
	if _, err := mustBot(ctx, s.bots, botID); err != nil {
		return nil, err
	}
	if err := validateConfig(req); err != nil {
		return nil, err
	}
	cfg, err := s.configs.Upsert(ctx, botID, repository.ConfigPatch{
		Model:        req.Model,
		SystemPrompt: req.SystemPrompt,
		Temperature:  req.Temperature,
		TopP:         req.TopP,
		MaxTokens:    req.MaxTokens,
	})
	if err != nil {
		zlog.Error("upsert bot config failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.ConfigRespond{Config: cfg, AllowedModels: entity.AllowedModels}, nil
}

func validateConfig(req request.UpdateConfigRequest) error {
	if req.Model != nil && !entity.IsAllowedModel(strings.TrimSpace(*req.Model)) {
		return xerr.New(xerr.BadRequest, "invalid_model")
	}
	if req.Temperature != nil && (*req.Temperature < 0 || *req.Temperature > 2) {
		return xerr.ErrParam
	}
	if req.TopP != nil && (*req.TopP < 0 || *req.TopP > 1) {
		return xerr.ErrParam
	}
	if req.MaxTokens != nil && (*req.MaxTokens < 1 || *req.MaxTokens > 32000) {
		return xerr.ErrParam
	}
	return nil
}
