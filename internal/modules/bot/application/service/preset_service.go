package service

import (
	"context"
	"strings"
	"time"

	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/application/dto/respond"
	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"
	"BotDesk/pkg/util"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

type PresetService interface {
	List(ctx context.Context, tenant string) (*respond.PresetListRespond, error)
	Create(ctx context.Context, tenant string, req request.CreatePresetRequest) (*respond.PresetRespond, error)
	Update(ctx context.Context, id string, req request.UpdatePresetRequest) (*respond.PresetRespond, error)
	Delete(ctx context.Context, id string) error
}

type presetServiceImpl struct {
	presets repository.PresetRepository
}

func NewPresetService(presets repository.PresetRepository) PresetService {
	return &presetServiceImpl{presets: presets}
}

func (s *presetServiceImpl) List(ctx context.Context, tenant string) (*respond.PresetListRespond, error) {
	items, err := s.presets.List(ctx, tenant)
	if err != nil {
		zlog.Error("list presets failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if items == nil {
		items = []entity.AIPreset{}
	}
	return &respond.PresetListRespond{Items: items}, nil
}

// Create 同租户下同名预设直接返回已有记录
func (s *presetServiceImpl) Create(ctx context.Context, tenant string, req request.CreatePresetRequest) (*respond.PresetRespond, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, xerr.ErrParam
	}
	existed, err := s.presets.GetByTenantAndName(ctx, tenant, name)
	if err != nil {
		return nil, xerr.ErrServerError
	}
	if existed != nil {
		return &respond.PresetRespond{Item: existed, Existed: true}, nil
	}

	now := time.Now()
	p := &entity.AIPreset{
		Id:           util.GenerateUUID(),
		Tenant:       tenant,
		Name:         name,
		SystemPrompt: req.SystemPrompt,
		Model:        entity.DefaultModel,
		Temperature:  entity.DefaultTemperature,
		TopP:         entity.DefaultTopP,
		MaxTokens:    entity.DefaultMaxTokens,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if m := strings.TrimSpace(req.Model); m != "" {
		p.Model = m
	}
	if req.Temperature != nil {
		p.Temperature = *req.Temperature
	}
	if req.TopP != nil {
		p.TopP = *req.TopP
	}
	if req.MaxTokens != nil {
		p.MaxTokens = *req.MaxTokens
	}
	if err := s.presets.Create(ctx, p); err != nil {
		zlog.Error("create preset failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.PresetRespond{Item: p}, nil
}

func (s *presetServiceImpl) Update(ctx context.Context, id string, req request.UpdatePresetRequest) (*respond.PresetRespond, error) {
	cur, err := s.presets.GetByID(ctx, id)
	if err != nil {
		return nil, xerr.ErrServerError
	}
	if cur == nil {
		return nil, xerr.ErrPresetNotFound
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = strings.TrimSpace(*req.Name)
	}
	if req.SystemPrompt != nil {
		fields["system_prompt"] = *req.SystemPrompt
	}
	if req.Model != nil {
		fields["model"] = strings.TrimSpace(*req.Model)
	}
	if req.Temperature != nil {
		fields["temperature"] = *req.Temperature
	}
	if req.TopP != nil {
		fields["top_p"] = *req.TopP
	}
	if req.MaxTokens != nil {
		fields["max_tokens"] = *req.MaxTokens
	}
	if err := s.presets.Update(ctx, id, fields); err != nil {
		zlog.Error("update preset failed", zap.String("preset_id", id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	updated, err := s.presets.GetByID(ctx, id)
	if err != nil || updated == nil {
		return nil, xerr.ErrServerError
	}
	return &respond.PresetRespond{Item: updated}, nil
}

func (s *presetServiceImpl) Delete(ctx context.Context, id string) error {
	ok, err := s.presets.Delete(ctx, id)
	if err != nil {
		zlog.Error("delete preset failed", zap.String("preset_id", id), zap.Error(err))
		return xerr.ErrServerError
	}
	if !ok {
		return xerr.ErrPresetNotFound
	}
	return nil
}
