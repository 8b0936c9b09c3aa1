package service

import (
	"context"
	"errors"
	"sync"
	"time"

	aiService "BotDesk/internal/modules/ai/application/service"
	botEntity "BotDesk/internal/modules/bot/domain/entity"
	botRepo "BotDesk/internal/modules/bot/domain/repository"
	caseEntity "BotDesk/internal/modules/casebook/domain/entity"
	caseRepo "BotDesk/internal/modules/casebook/domain/repository"
	knowledgeRepo "BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/internal/modules/live/domain/event"
	"BotDesk/internal/modules/webhook/infrastructure/lineapi"
)

type fakeBots struct {
	botRepo.BotRepository
	bot *botEntity.Bot
	err error
}

func (f *fakeBots) FindForPlatform(_ context.Context, tenant, platform string) (*botEntity.Bot, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.bot == nil || f.bot.Tenant != tenant || f.bot.Platform != platform {
		return nil, nil
	}
	return f.bot, nil
}

type fakeSecrets struct {
	botRepo.SecretRepository
	secret *botEntity.BotSecret
}

func (f *fakeSecrets) GetByBotID(context.Context, string) (*botEntity.BotSecret, error) {
	return f.secret, nil
}

type fakeConfigs struct {
	botRepo.ConfigRepository
	config *botEntity.BotConfig
}

func (f *fakeConfigs) GetByBotID(context.Context, string) (*botEntity.BotConfig, error) {
	return f.config, nil
}

type memCases struct {
	mu    sync.Mutex
	items []caseEntity.CaseItem
	fail  bool
}

func (m *memCases) FindRecent(_ context.Context, botID, userID, kind string, since time.Time) (*caseEntity.CaseItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.items) - 1; i >= 0; i-- {
		it := m.items[i]
		if it.BotId == botID && it.UserId == userID && it.Kind == kind && !it.CreatedAt.Before(since) {
			return &it, nil
		}
	}
	return nil, nil
}

func (m *memCases) Create(_ context.Context, item *caseEntity.CaseItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("db down")
	}
	m.items = append(m.items, *item)
	return nil
}

func (m *memCases) ListRecentByBot(context.Context, string, int) ([]caseEntity.CaseItem, error) {
	return nil, nil
}

func (m *memCases) ListRecentByBots(context.Context, []string, int) ([]caseEntity.CaseItem, error) {
	return nil, nil
}

// memUnitOfWork fn 失败时暂存的 case 不落库
type memUnitOfWork struct {
	cases *memCases
	stats *memStats
}

type stagedCases struct {
	caseRepo.CaseRepository
	cases *memCases
	items []caseEntity.CaseItem
}

func (s *stagedCases) Create(_ context.Context, item *caseEntity.CaseItem) error {
	s.cases.mu.Lock()
	fail := s.cases.fail
	s.cases.mu.Unlock()
	if fail {
		return errors.New("db down")
	}
	s.items = append(s.items, *item)
	return nil
}

func (u *memUnitOfWork) Transaction(ctx context.Context, fn func(cases caseRepo.CaseRepository, stats caseRepo.StatRepository) error) error {
	staged := &stagedCases{CaseRepository: u.cases, cases: u.cases}
	if err := fn(staged, u.stats); err != nil {
		return err
	}
	for i := range staged.items {
		if err := u.cases.Create(ctx, &staged.items[i]); err != nil {
			return err
		}
	}
	return nil
}

type memStats struct {
	mu   sync.Mutex
	rows map[string]*caseEntity.StatDaily
}

func (m *memStats) Increment(_ context.Context, botID, dateKey string, field caseEntity.StatField) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := botID + "|" + dateKey
	row, ok := m.rows[k]
	if !ok {
		row = &caseEntity.StatDaily{BotId: botID, DateKey: dateKey}
		m.rows[k] = row
	}
	row.Total++
	switch field {
	case caseEntity.StatFieldText:
		row.Text++
	case caseEntity.StatFieldFollow:
		row.Follow++
	case caseEntity.StatFieldUnfollow:
		row.Unfollow++
	}
	return nil
}

func (m *memStats) Get(_ context.Context, botID, dateKey string) (*caseEntity.StatDaily, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[botID+"|"+dateKey], nil
}

func (m *memStats) ListRange(context.Context, string, string, string) ([]caseEntity.StatDaily, error) {
	return nil, nil
}

type replyCall struct {
	token, accessToken, text string
}

type fakeLine struct {
	lineapi.Client
	mu      sync.Mutex
	calls   []replyCall
	ok      bool
	panicOn string
}

func (f *fakeLine) Reply(_ context.Context, replyToken, accessToken, text string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.panicOn != "" && replyToken == f.panicOn {
		panic("reply client exploded")
	}
	f.calls = append(f.calls, replyCall{replyToken, accessToken, text})
	return f.ok, nil
}

type fakeAnswerer struct {
	calls int
	got   aiService.AnswerInput
	reply string
}

func (f *fakeAnswerer) Answer(_ context.Context, in aiService.AnswerInput) string {
	f.calls++
	f.got = in
	return f.reply
}

type fakeRetriever struct {
	hits []knowledgeRepo.Hit
	err  error
}

func (f *fakeRetriever) Search(context.Context, string, string, int) ([]knowledgeRepo.Hit, error) {
	return f.hits, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) Publish(_ context.Context, evt event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

type panicVerifier struct{}

func (panicVerifier) Verify([]byte, string, string) bool { panic("boom") }

func strPtr(s string) *string { return &s }
