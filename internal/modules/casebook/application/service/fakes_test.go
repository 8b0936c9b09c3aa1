package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	botentity "BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/internal/modules/casebook/domain/repository"
)

type fakeCaseRepo struct {
	mu    sync.Mutex
	items []entity.CaseItem
}

func (r *fakeCaseRepo) FindRecent(_ context.Context, botID, userID, kind string, since time.Time) (*entity.CaseItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var found *entity.CaseItem
	for i := range r.items {
		it := r.items[i]
		if it.BotId == botID && it.UserId == userID && it.Kind == kind && !it.CreatedAt.Before(since) {
			if found == nil || it.CreatedAt.After(found.CreatedAt) {
				found = &it
			}
		}
	}
	return found, nil
}

func (r *fakeCaseRepo) Create(_ context.Context, item *entity.CaseItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, *item)
	return nil
}

func (r *fakeCaseRepo) ListRecentByBot(ctx context.Context, botID string, limit int) ([]entity.CaseItem, error) {
	return r.ListRecentByBots(ctx, []string{botID}, limit)
}

func (r *fakeCaseRepo) ListRecentByBots(_ context.Context, botIDs []string, limit int) ([]entity.CaseItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	want := map[string]bool{}
	for _, id := range botIDs {
		want[id] = true
	}
	var out []entity.CaseItem
	for _, it := range r.items {
		if want[it.BotId] {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeCaseRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

// fakeStatRepo 与 ON DUPLICATE KEY UPDATE 一样在单个临界区内完成自增
type fakeStatRepo struct {
	mu   sync.Mutex
	rows map[string]*entity.StatDaily
	fail bool
}

func newFakeStatRepo() *fakeStatRepo {
	return &fakeStatRepo{rows: map[string]*entity.StatDaily{}}
}

func (r *fakeStatRepo) Increment(_ context.Context, botID, dateKey string, field entity.StatField) error {
	if r.fail {
		return errors.New("db down")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	k := botID + "|" + dateKey
	row, ok := r.rows[k]
	if !ok {
		row = &entity.StatDaily{BotId: botID, DateKey: dateKey}
		r.rows[k] = row
	}
	row.Total++
	switch field {
	case entity.StatFieldText:
		row.Text++
	case entity.StatFieldFollow:
		row.Follow++
	case entity.StatFieldUnfollow:
		row.Unfollow++
	}
	return nil
}

func (r *fakeStatRepo) Get(_ context.Context, botID, dateKey string) (*entity.StatDaily, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if row, ok := r.rows[botID+"|"+dateKey]; ok {
		cp := *row
		return &cp, nil
	}
	return nil, nil
}

func (r *fakeStatRepo) ListRange(_ context.Context, botID, fromKey, toKey string) ([]entity.StatDaily, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.StatDaily
	for _, row := range r.rows {
		if row.BotId == botID && row.DateKey >= fromKey && row.DateKey <= toKey {
			out = append(out, *row)
		}
	}
	return out, nil
}

// fakeUnitOfWork 事务内新建的 case 暂存，fn 成功后才写入 fakeCaseRepo
type fakeUnitOfWork struct {
	cases *fakeCaseRepo
	stats *fakeStatRepo
}

type stagedCases struct {
	repository.CaseRepository
	items []entity.CaseItem
}

func (s *stagedCases) Create(_ context.Context, item *entity.CaseItem) error {
	s.items = append(s.items, *item)
	return nil
}

func (u *fakeUnitOfWork) Transaction(ctx context.Context, fn func(cases repository.CaseRepository, stats repository.StatRepository) error) error {
	staged := &stagedCases{CaseRepository: u.cases}
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

type fakeBotRepo struct {
	bots []botentity.Bot
}

func (r *fakeBotRepo) List(context.Context, string) ([]botentity.Bot, error) { return r.bots, nil }

func (r *fakeBotRepo) ListIDsByTenant(_ context.Context, tenant string) ([]string, error) {
	var ids []string
	for _, b := range r.bots {
		if b.Tenant == tenant {
			ids = append(ids, b.Id)
		}
	}
	return ids, nil
}

func (r *fakeBotRepo) GetByID(_ context.Context, id string) (*botentity.Bot, error) {
	for i := range r.bots {
		if r.bots[i].Id == id {
			b := r.bots[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (r *fakeBotRepo) GetByTenantAndName(context.Context, string, string) (*botentity.Bot, error) {
	return nil, nil
}

func (r *fakeBotRepo) FindForPlatform(context.Context, string, string) (*botentity.Bot, error) {
	return nil, nil
}

func (r *fakeBotRepo) Create(context.Context, *botentity.Bot) error { return nil }

func (r *fakeBotRepo) Update(context.Context, string, map[string]interface{}) error { return nil }

func (r *fakeBotRepo) Delete(context.Context, string) (bool, error) { return false, nil }
