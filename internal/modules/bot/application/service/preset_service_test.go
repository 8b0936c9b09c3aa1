package service

import (
	"context"
	"testing"

	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetService_CreateDuplicateReturnsExisting(t *testing.T) {
	svc := NewPresetService(&fakePresetRepo{rows: map[string]*entity.AIPreset{}})
	ctx := context.Background()

	first, err := svc.Create(ctx, "bn9", request.CreatePresetRequest{Name: "friendly", SystemPrompt: "be kind"})
	require.NoError(t, err)
	assert.False(t, first.Existed)
	assert.Equal(t, entity.DefaultModel, first.Item.Model)
	assert.Equal(t, entity.DefaultMaxTokens, first.Item.MaxTokens)

	second, err := svc.Create(ctx, "bn9", request.CreatePresetRequest{Name: " friendly "})
	require.NoError(t, err)
	assert.True(t, second.Existed)
	assert.Equal(t, first.Item.Id, second.Item.Id)

	// 不同租户互不影响
	other, err := svc.Create(ctx, "acme", request.CreatePresetRequest{Name: "friendly"})
	require.NoError(t, err)
	assert.False(t, other.Existed)
}

func TestPresetService_UpdateAndDelete(t *testing.T) {
	repo := &fakePresetRepo{rows: map[string]*entity.AIPreset{}}
	svc := NewPresetService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "bn9", request.CreatePresetRequest{Name: "p"})
	require.NoError(t, err)

	n := 4096
	out, err := svc.Update(ctx, created.Item.Id, request.UpdatePresetRequest{MaxTokens: &n})
	require.NoError(t, err)
	assert.Equal(t, 4096, out.Item.MaxTokens)

	_, err = svc.Update(ctx, "missing", request.UpdatePresetRequest{})
	assert.ErrorIs(t, err, xerr.ErrPresetNotFound)

	require.NoError(t, svc.Delete(ctx, created.Item.Id))
	assert.ErrorIs(t, svc.Delete(ctx, created.Item.Id), xerr.ErrPresetNotFound)
}
