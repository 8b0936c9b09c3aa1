package service

import (
	"context"
	"sync"
	"time"

	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/bot/domain/repository"
	"BotDesk/internal/modules/live/domain/event"
)

type fakeBotRepo struct {
	mu   sync.Mutex
	bots map[string]*entity.Bot
}

func newFakeBotRepo(bots ...*entity.Bot) *fakeBotRepo {
	r := &fakeBotRepo{bots: map[string]*entity.Bot{}}
	for _, b := range bots {
		r.bots[b.Id] = b
	}
	return r
}

func (r *fakeBotRepo) List(_ context.Context, tenant string) ([]entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Bot
	for _, b := range r.bots {
		if b.Tenant == tenant {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBotRepo) ListIDsByTenant(ctx context.Context, tenant string) ([]string, error) {
	bots, _ := r.List(ctx, tenant)
	ids := make([]string, 0, len(bots))
	for _, b := range bots {
		ids = append(ids, b.Id)
	}
	return ids, nil
}

func (r *fakeBotRepo) GetByID(_ context.Context, id string) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bots[id]; ok {
		cp := *b
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeBotRepo) GetByTenantAndName(_ context.Context, tenant, name string) (*entity.Bot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bots {
		if b.Tenant == tenant && b.Name == name {
			cp := *b
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeBotRepo) FindForPlatform(_ context.Context, tenant, platform string) (*entity.Bot, error) {
	return nil, nil
}

func (r *fakeBotRepo) Create(_ context.Context, bot *entity.Bot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *bot
	r.bots[bot.Id] = &cp
	return nil
}

func (r *fakeBotRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := r.bots[id]
	for k, v := range fields {
		switch k {
		case "name":
			b.Name = v.(string)
		case "active":
			b.Active = v.(bool)
		case "verified_at":
			switch t := v.(type) {
			case time.Time:
				b.VerifiedAt = &t
			case *time.Time:
				b.VerifiedAt = t
			}
		}
	}
	return nil
}

func (r *fakeBotRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bots[id]; !ok {
		return false, nil
	}
	delete(r.bots, id)
	return true, nil
}

type fakeSecretRepo struct {
	rows map[string]*entity.BotSecret
}

func (r *fakeSecretRepo) GetByBotID(_ context.Context, botID string) (*entity.BotSecret, error) {
	return r.rows[botID], nil
}

func (r *fakeSecretRepo) Upsert(_ context.Context, botID string, p repository.SecretPatch) (*entity.BotSecret, error) {
	row, ok := r.rows[botID]
	if !ok {
		row = &entity.BotSecret{BotId: botID}
		r.rows[botID] = row
	}
	if p.ChannelSecret != nil {
		row.ChannelSecret = p.ChannelSecret
	}
	if p.ChannelAccessToken != nil {
		row.ChannelAccessToken = p.ChannelAccessToken
	}
	if p.OpenaiAPIKey != nil {
		row.OpenaiAPIKey = p.OpenaiAPIKey
	}
	return row, nil
}

type fakeConfigRepo struct {
	rows map[string]*entity.BotConfig
}

func (r *fakeConfigRepo) GetByBotID(_ context.Context, botID string) (*entity.BotConfig, error) {
	return r.rows[botID], nil
}

func (r *fakeConfigRepo) GetOrCreateDefault(_ context.Context, botID string) (*entity.BotConfig, error) {
	if c, ok := r.rows[botID]; ok {
		return c, nil
	}
	c := entity.NewDefaultConfig(botID, time.Now())
	r.rows[botID] = c
	return c, nil
}

func (r *fakeConfigRepo) Upsert(ctx context.Context, botID string, p repository.ConfigPatch) (*entity.BotConfig, error) {
	c, _ := r.GetOrCreateDefault(ctx, botID)
	if p.Model != nil {
		c.Model = *p.Model
	}
	if p.SystemPrompt != nil {
		c.SystemPrompt = *p.SystemPrompt
	}
	if p.Temperature != nil {
		c.Temperature = *p.Temperature
	}
	if p.TopP != nil {
		c.TopP = *p.TopP
	}
	if p.MaxTokens != nil {
		c.MaxTokens = *p.MaxTokens
	}
	return c, nil
}

type fakePresetRepo struct {
	rows map[string]*entity.AIPreset
}

func (r *fakePresetRepo) List(_ context.Context, tenant string) ([]entity.AIPreset, error) {
	var out []entity.AIPreset
	for _, p := range r.rows {
		if p.Tenant == tenant {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePresetRepo) GetByID(_ context.Context, id string) (*entity.AIPreset, error) {
	return r.rows[id], nil
}

func (r *fakePresetRepo) GetByTenantAndName(_ context.Context, tenant, name string) (*entity.AIPreset, error) {
	for _, p := range r.rows {
		if p.Tenant == tenant && p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (r *fakePresetRepo) Create(_ context.Context, p *entity.AIPreset) error {
	r.rows[p.Id] = p
	return nil
}

func (r *fakePresetRepo) Update(_ context.Context, id string, fields map[string]interface{}) error {
	p := r.rows[id]
	if v, ok := fields["name"]; ok {
		p.Name = v.(string)
	}
	if v, ok := fields["max_tokens"]; ok {
		p.MaxTokens = v.(int)
	}
	return nil
}

func (r *fakePresetRepo) Delete(_ context.Context, id string) (bool, error) {
	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
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

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}

func strPtr(s string) *string { return &s }
