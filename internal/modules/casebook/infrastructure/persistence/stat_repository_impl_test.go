package persistence

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"BotDesk/internal/modules/casebook/domain/entity"
	"BotDesk/pkg/zlog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// dryRunDB 只生成 SQL 不连库，captured 收集每条 INSERT
func dryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "botdesk:botdesk@tcp(127.0.0.1:3306)/botdesk?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		DryRun:                 true,
		DisableAutomaticPing:   true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Discard,
	})
	require.NoError(t, err)

	var captured []string
	err = db.Callback().Create().After("gorm:create").Register("test:capture", func(tx *gorm.DB) {
		sql := tx.Dialector.Explain(tx.Statement.SQL.String(), tx.Statement.Vars...)
		captured = append(captured, strings.ReplaceAll(sql, "`", ""))
	})
	require.NoError(t, err)
	return db, &captured
}

func TestIncrement_SingleAtomicUpsert(t *testing.T) {
	db, captured := dryRunDB(t)
	repo := NewStatRepository(db, 3)

	require.NoError(t, repo.Increment(context.Background(), "b1", "2026-10-19", entity.StatFieldText))
	require.Len(t, *captured, 1)
	sql := (*captured)[0]
	assert.True(t, strings.HasPrefix(sql, "INSERT INTO stat_daily"))
	assert.Contains(t, sql, "'b1','2026-10-19',1,1,0,0")
	assert.Contains(t, sql, "ON DUPLICATE KEY UPDATE text=text + 1,total=total + 1")
	assert.NotContains(t, sql, "SELECT")
}

func TestIncrement_FollowColumn(t *testing.T) {
	db, captured := dryRunDB(t)
	repo := NewStatRepository(db, 1)

	require.NoError(t, repo.Increment(context.Background(), "b1", "2026-10-19", entity.StatFieldFollow))
	require.Len(t, *captured, 1)
	assert.Contains(t, (*captured)[0], "ON DUPLICATE KEY UPDATE follow=follow + 1,total=total + 1")
}

func TestIncrement_RejectsUnknownField(t *testing.T) {
	db, captured := dryRunDB(t)
	repo := NewStatRepository(db, 3)

	err := repo.Increment(context.Background(), "b1", "2026-10-19", entity.StatField("total; DROP TABLE stat_daily"))
	assert.Error(t, err)
	assert.Empty(t, *captured)
}

func TestWithRetry_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("deadlock")
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	err := withRetry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_WarnsOnlyBeforeAnotherAttempt(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	defer zlog.Replace(zap.New(core))()

	_ = withRetry(context.Background(), 1, time.Millisecond, func() error { return errors.New("boom") })
	assert.Zero(t, logs.FilterMessage("retrying after error").Len())

	_ = withRetry(context.Background(), 3, time.Millisecond, func() error { return errors.New("boom") })
	assert.Equal(t, 2, logs.FilterMessage("retrying after error").Len())
}

func TestWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := withRetry(ctx, 3, time.Second, func() error {
		calls++
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, calls, 1)
}
