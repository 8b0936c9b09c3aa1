package service

import (
	"context"
	"strings"
	"time"

	botrepo "BotDesk/internal/modules/bot/domain/repository"
	"BotDesk/internal/modules/casebook/application/dto/request"
	"BotDesk/internal/modules/casebook/application/dto/respond"
	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/internal/modules/casebook/domain/repository"
	"BotDesk/pkg/util"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const (
	DefaultRecentLimit = 20
	MaxRecentLimit     = 100
)

type CaseService interface {
	// Create 手工建档；tenant 非空时机器人必须属于该租户
	Create(ctx context.Context, tenant string, req request.CreateCaseRequest) (*respond.CaseRespond, error)
	Recent(ctx context.Context, botID string, limit int) (*respond.CaseListRespond, error)
	RecentByTenant(ctx context.Context, tenant string, limit int) (*respond.CaseListRespond, error)
}

type caseServiceImpl struct {
	bots  botrepo.BotRepository
	cases repository.CaseRepository
}

func NewCaseService(bots botrepo.BotRepository, cases repository.CaseRepository) CaseService {
	return &caseServiceImpl{bots: bots, cases: cases}
}

func (s *caseServiceImpl) Create(ctx context.Context, tenant string, req request.CreateCaseRequest) (*respond.CaseRespond, error) {
	req.Normalize()
	if !req.Valid() {
		return nil, xerr.ErrParam
	}
	meta, err := entity.ParseCaseMeta(req.Meta)
	if err != nil {
		zlog.Warn("invalid case meta", zap.Error(err))
		return nil, xerr.ErrParam
	}

	bot, err := s.bots.GetByID(ctx, req.BotID)
	if err != nil {
		zlog.Error("get bot failed", zap.String("bot_id", req.BotID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if bot == nil || (tenant != "" && bot.Tenant != tenant) {
		return nil, xerr.ErrBotNotFound
	}

	item := &entity.CaseItem{
		Id:        util.GenerateUUID(),
		BotId:     bot.Id,
		UserId:    req.UserID,
		Kind:      req.Kind,
		Text:      req.Text,
		CreatedAt: time.Now().UTC(),
	}
	if item.Meta, err = meta.JSON(); err != nil {
		return nil, xerr.ErrServerError
	}
	if err := s.cases.Create(ctx, item); err != nil {
		zlog.Error("create case failed", zap.String("bot_id", bot.Id), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return &respond.CaseRespond{Item: item}, nil
}

func (s *caseServiceImpl) Recent(ctx context.Context, botID string, limit int) (*respond.CaseListRespond, error) {
	botID = strings.TrimSpace(botID)
	if botID == "" {
		return nil, xerr.ErrMissingBotID
	}
	items, err := s.cases.ListRecentByBot(ctx, botID, util.ClampInt(limit, DefaultRecentLimit, 1, MaxRecentLimit))
	if err != nil {
		zlog.Error("list recent cases failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return listRespond(items), nil
}

func (s *caseServiceImpl) RecentByTenant(ctx context.Context, tenant string, limit int) (*respond.CaseListRespond, error) {
	tenant = strings.TrimSpace(tenant)
	if tenant == "" {
		return nil, xerr.ErrMissingTenant
	}
	ids, err := s.bots.ListIDsByTenant(ctx, tenant)
	if err != nil {
		zlog.Error("list tenant bots failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if len(ids) == 0 {
		return listRespond(nil), nil
	}
	items, err := s.cases.ListRecentByBots(ctx, ids, util.ClampInt(limit, DefaultRecentLimit, 1, MaxRecentLimit))
	if err != nil {
		zlog.Error("list tenant cases failed", zap.String("tenant", tenant), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	return listRespond(items), nil
}

func listRespond(items []entity.CaseItem) *respond.CaseListRespond {
	if items == nil {
		items = []entity.CaseItem{}
	}
	return &respond.CaseListRespond{Items: items}
}
