package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/internal/modules/casebook/infrastructure/lock"
	"BotDesk/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecorder(cases *fakeCaseRepo, stats *fakeStatRepo, now *time.Time) *Recorder {
	r := NewRecorder(cases, &fakeUnitOfWork{cases: cases, stats: stats}, lock.NewLocalLocker(), 0)
	r.now = func() time.Time { return *now }
	return r
}

func TestRecorder_DuplicateWithinWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	cases, stats := &fakeCaseRepo{}, newFakeStatRepo()
	r := newTestRecorder(cases, stats, &now)
	in := RecordInput{BotID: "b1", UserID: "U1", Kind: entity.KindDeposit, Text: "ฝากไม่เข้า"}

	first, err := r.RecordIfNew(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, first.Created)

	now = now.Add(14 * time.Minute)
	second, err := r.RecordIfNew(context.Background(), in)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Equal(t, first.Created.Id, second.ExistingCaseID)
	assert.Nil(t, second.Created)

	now = now.Add(2 * time.Minute)
	third, err := r.RecordIfNew(context.Background(), in)
	require.NoError(t, err)
	require.NotNil(t, third.Created)
	assert.NotEqual(t, first.Created.Id, third.Created.Id)

	assert.Equal(t, 2, cases.count())
	row, _ := stats.Get(context.Background(), "b1", util.DateKey(now))
	require.NotNil(t, row)
	assert.Equal(t, int64(2), row.Total)
	assert.Equal(t, int64(2), row.Text)
}

func TestRecorder_DifferentKindIsNotDuplicate(t *testing.T) {
	now := time.Now().UTC()
	cases := &fakeCaseRepo{}
	r := newTestRecorder(cases, newFakeStatRepo(), &now)

	_, err := r.RecordIfNew(context.Background(), RecordInput{BotID: "b1", UserID: "U1", Kind: entity.KindDeposit, Text: "a"})
	require.NoError(t, err)
	res, err := r.RecordIfNew(context.Background(), RecordInput{BotID: "b1", UserID: "U1", Kind: entity.KindWithdraw, Text: "b"})
	require.NoError(t, err)
	assert.NotNil(t, res.Created)
	assert.Equal(t, 2, cases.count())
}

func TestRecorder_ConcurrentSameKeyCreatesOnce(t *testing.T) {
	now := time.Now().UTC()
	cases, stats := &fakeCaseRepo{}, newFakeStatRepo()
	r := newTestRecorder(cases, stats, &now)

	const n = 16
	var wg sync.WaitGroup
	results := make([]RecordResult, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := r.RecordIfNew(context.Background(), RecordInput{BotID: "b1", UserID: "U1", Kind: entity.KindKYC, Text: "kyc"})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	created := 0
	for _, res := range results {
		if res.Created != nil {
			created++
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, 1, cases.count())
	row, _ := stats.Get(context.Background(), "b1", util.DateKey(now))
	assert.Equal(t, int64(1), row.Total)
}

func TestRecorder_ConcurrentDistinctUsersCountEveryCase(t *testing.T) {
	now := time.Now().UTC()
	stats := newFakeStatRepo()
	r := newTestRecorder(&fakeCaseRepo{}, stats, &now)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := r.RecordIfNew(context.Background(), RecordInput{BotID: "b1", UserID: fmt.Sprintf("U%d", i), Kind: entity.KindOther, Text: "hi"})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	row, _ := stats.Get(context.Background(), "b1", util.DateKey(now))
	require.NotNil(t, row)
	assert.Equal(t, int64(n), row.Total)
	assert.Equal(t, row.Total, row.Text+row.Follow+row.Unfollow)
}

func TestRecorder_StatFailureRollsBackCase(t *testing.T) {
	now := time.Now().UTC()
	cases, stats := &fakeCaseRepo{}, newFakeStatRepo()
	stats.fail = true
	r := newTestRecorder(cases, stats, &now)
	in := RecordInput{BotID: "b1", UserID: "U1", Kind: entity.KindOther, Text: "hi"}

	_, err := r.RecordIfNew(context.Background(), in)
	assert.Error(t, err)
	assert.Zero(t, cases.count())

	stats.fail = false
	res, err := r.RecordIfNew(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res.Duplicate)
	require.NotNil(t, res.Created)
	assert.Equal(t, 1, cases.count())
	row, _ := stats.Get(context.Background(), "b1", util.DateKey(now))
	require.NotNil(t, row)
	assert.Equal(t, int64(1), row.Total)
	assert.Equal(t, int64(1), row.Text)
}
