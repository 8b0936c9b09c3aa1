package service

import (
	"context"
	"strings"

	"BotDesk/internal/modules/ai/application/dto/request"
	"BotDesk/internal/modules/ai/application/dto/respond"
	botEntity "BotDesk/internal/modules/bot/domain/entity"
	botRepo "BotDesk/internal/modules/bot/domain/repository"
	knowledgeRepo "BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/pkg/util"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const devBotID = "dev-bot"

type AskService interface {
	// Ask 检索知识片段后用机器人配置生成回答
	Ask(ctx context.Context, tenant string, req request.AskRequest) (*respond.AskRespond, error)
	Preview(ctx context.Context, req request.AITestRequest) (*respond.AITestRespond, error)
}

type askServiceImpl struct {
	bots        botRepo.BotRepository
	secrets     botRepo.SecretRepository
	configs     botRepo.ConfigRepository
	retriever   knowledgeRepo.Retriever
	answerer    Answerer
	fallbackKey string
}

func NewAskService(bots botRepo.BotRepository, secrets botRepo.SecretRepository, configs botRepo.ConfigRepository,
	retriever knowledgeRepo.Retriever, answerer Answerer, fallbackKey string) AskService {
	return &askServiceImpl{
		bots:        bots,
		secrets:     secrets,
		configs:     configs,
		retriever:   retriever,
		answerer:    answerer,
		fallbackKey: strings.TrimSpace(fallbackKey),
	}
}

func (s *askServiceImpl) Ask(ctx context.Context, tenant string, req request.AskRequest) (*respond.AskRespond, error) {
	botID, message := strings.TrimSpace(req.BotID), strings.TrimSpace(req.Message)
	if botID == "" || message == "" {
		return nil, xerr.ErrParam
	}

	bot, err := s.bots.GetByID(ctx, botID)
	if err != nil {
		zlog.Error("get bot failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if bot == nil {
		return nil, xerr.ErrBotNotFound
	}

	cfg, err := s.configs.GetOrCreateDefault(ctx, botID)
	if err != nil {
		zlog.Error("get bot config failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	secret, err := s.secrets.GetByBotID(ctx, botID)
	if err != nil {
		zlog.Error("get bot secret failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	key := secret.GetOpenaiAPIKey()
	if key == "" {
		key = s.fallbackKey
	}
	if key == "" {
		return nil, xerr.ErrMissingOpenAIKey
	}

	hits, err := s.retriever.Search(ctx, tenant, message, util.ClampInt(req.Limit, 5, 1, 20))
	if err != nil {
		zlog.Warn("knowledge search failed, answering without context",
			zap.String("tenant", tenant), zap.String("bot_id", botID), zap.Error(err))
		hits = nil
	}
	if hits == nil {
		hits = []knowledgeRepo.Hit{}
	}

	answer := s.answerer.Answer(ctx, AnswerInput{
		Credential:   key,
		Model:        cfg.Model,
		SystemPrompt: cfg.SystemPrompt,
		UserText:     message,
		Snippets:     HitContents(hits),
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
		MaxTokens:    cfg.MaxTokens,
	})
	return &respond.AskRespond{Answer: answer, Context: hits}, nil
}

func (s *askServiceImpl) Preview(ctx context.Context, req request.AITestRequest) (*respond.AITestRespond, error) {
	q := strings.TrimSpace(req.Q)
	if q == "" {
		return nil, xerr.New(xerr.BadRequest, "missing_q")
	}
	botID := strings.TrimSpace(req.BotID)
	if botID == "" {
		botID = devBotID
	}

	usage := respond.ModelUsage{
		Model:       botEntity.DefaultModel,
		Temperature: botEntity.DefaultTemperature,
		TopP:        botEntity.DefaultTopP,
		MaxTokens:   botEntity.DefaultMaxTokens,
	}
	cfg, err := s.configs.GetByBotID(ctx, botID)
	if err != nil {
		zlog.Error("get bot config failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if cfg != nil {
		usage = respond.ModelUsage{Model: cfg.Model, Temperature: cfg.Temperature, TopP: cfg.TopP, MaxTokens: cfg.MaxTokens}
	}
	return &respond.AITestRespond{Echo: q, Using: usage}, nil
}

func HitContents(hits []knowledgeRepo.Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.Content)
	}
	return out
}
