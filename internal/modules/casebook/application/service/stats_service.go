package service

import (
	"context"
	"strings"
	"time"

	"BotDesk/internal/modules/casebook/application/dto/respond"
	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/internal/modules/casebook/domain/repository"
	"BotDesk/pkg/util"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const (
	defaultRangeDays = 7
	maxRangeDays     = 90
)

type StatsService interface {
	// Daily date 为空时取今天（UTC），不存在的行返回全零
	Daily(ctx context.Context, botID, date string) (*respond.StatDailyRespond, error)
	// Range 返回 [from, to] 的连续日期，缺失日期补零
	Range(ctx context.Context, botID, from, to string) (*respond.StatRangeRespond, error)
}

type statsServiceImpl struct {
	stats repository.StatRepository
	now   func() time.Time
}

func NewStatsService(stats repository.StatRepository) StatsService {
	return &statsServiceImpl{stats: stats, now: time.Now}
}

func (s *statsServiceImpl) Daily(ctx context.Context, botID, date string) (*respond.StatDailyRespond, error) {
	botID = strings.TrimSpace(botID)
	if botID == "" {
		return nil, xerr.ErrMissingBotID
	}
	day, err := s.parseDay(date, s.now())
	if err != nil {
		return nil, err
	}
	key := util.DateKey(day)
	row, err := s.stats.Get(ctx, botID, key)
	if err != nil {
		zlog.Error("get stat failed", zap.String("bot_id", botID), zap.String("date_key", key), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	if row == nil {
		row = &entity.StatDaily{BotId: botID, DateKey: key}
	}
	return &respond.StatDailyRespond{Stat: row}, nil
}

func (s *statsServiceImpl) Range(ctx context.Context, botID, from, to string) (*respond.StatRangeRespond, error) {
	botID = strings.TrimSpace(botID)
	if botID == "" {
		return nil, xerr.ErrMissingBotID
	}
	end, err := s.parseDay(to, s.now())
	if err != nil {
		return nil, err
	}
	start, err := s.parseDay(from, end.AddDate(0, 0, -(defaultRangeDays-1)))
	if err != nil {
		return nil, err
	}
	if start.After(end) || end.Sub(start) > time.Duration(maxRangeDays)*24*time.Hour {
		return nil, xerr.ErrParam
	}

	fromKey, toKey := util.DateKey(start), util.DateKey(end)
	rows, err := s.stats.ListRange(ctx, botID, fromKey, toKey)
	if err != nil {
		zlog.Error("list stat range failed", zap.String("bot_id", botID), zap.Error(err))
		return nil, xerr.ErrServerError
	}
	byKey := make(map[string]entity.StatDaily, len(rows))
	for _, r := range rows {
		byKey[r.DateKey] = r
	}

	items := make([]entity.StatDaily, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		k := util.DateKey(d)
		if r, ok := byKey[k]; ok {
			items = append(items, r)
			continue
		}
		items = append(items, entity.StatDaily{BotId: botID, DateKey: k})
	}
	return &respond.StatRangeRespond{From: fromKey, To: toKey, Items: items}, nil
}

func (s *statsServiceImpl) parseDay(v string, def time.Time) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		y, m, d := def.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, time.UTC)
	if err != nil {
		return time.Time{}, xerr.New(xerr.BadRequest, "invalid_date")
	}
	return t, nil
}
