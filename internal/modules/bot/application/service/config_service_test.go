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

func TestConfigService_GetCreatesDefaults(t *testing.T) {
	svc := NewConfigService(newFakeBotRepo(newBot("b1", "bn9")), &fakeConfigRepo{rows: map[string]*entity.BotConfig{}})

	out, err := svc.Get(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, entity.DefaultModel, out.Config.Model)
	assert.Equal(t, entity.DefaultTemperature, out.Config.Temperature)
	assert.Equal(t, entity.DefaultTopP, out.Config.TopP)
	assert.Equal(t, entity.DefaultMaxTokens, out.Config.MaxTokens)
	assert.Contains(t, out.AllowedModels, "gpt-4o")
}

func TestConfigService_UpdateValidates(t *testing.T) {
	svc := NewConfigService(newFakeBotRepo(newBot("b1", "bn9")), &fakeConfigRepo{rows: map[string]*entity.BotConfig{}})
	ctx := context.Background()

	temp := 2.5
	_, err := svc.Update(ctx, "b1", request.UpdateConfigRequest{Temperature: &temp})
	assert.ErrorIs(t, err, xerr.ErrParam)

	_, err = svc.Update(ctx, "b1", request.UpdateConfigRequest{Model: strPtr("claude")})
	ce, ok := xerr.As(err)
	require.True(t, ok)
	assert.Equal(t, xerr.BadRequest, ce.Code)

	maxTokens := 1200
	out, err := svc.Update(ctx, "b1", request.UpdateConfigRequest{Model: strPtr("gpt-4o"), MaxTokens: &maxTokens})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", out.Config.Model)
	assert.Equal(t, 1200, out.Config.MaxTokens)
	assert.Equal(t, entity.DefaultTopP, out.Config.TopP)
}
