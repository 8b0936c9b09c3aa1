package service

import (
	"context"
	"strings"

	botRepo "BotDesk/internal/modules/bot/domain/repository"
	"BotDesk/internal/modules/webhook/infrastructure/lineapi"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

var ErrLinePingFailed = xerr.New(xerr.InternalServerError, "line_ping_failed")

// PingService dev 工具：用机器人的 access token 调 LINE bot info
type PingService interface {
	Ping(ctx context.Context, botID string) (*lineapi.BotInfoResult, error)
}

type pingServiceImpl struct {
	secrets botRepo.SecretRepository
	line    lineapi.Client
}

func NewPingService(secrets botRepo.SecretRepository, line lineapi.Client) PingService {
	return &pingServiceImpl{secrets: secrets, line: line}
}

func (s *pingServiceImpl) Ping(ctx context.Context, botID string) (*lineapi.BotInfoResult, error) {
	botID = strings.TrimSpace(botID)
	if botID == "" {
		return nil, xerr.ErrMissingBotID
	}
	secret, err := s.secrets.GetByBotID(ctx, botID)
	if err != nil {
		zlog.Error("load bot secret failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	token := secret.GetChannelAccessToken()
	if token == "" {
		return nil, xerr.ErrMissingToken
	}
	info, err := s.line.BotInfo(ctx, token)
	if err != nil {
		zlog.Warn("line ping failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, ErrLinePingFailed
	}
	return info, nil
}
