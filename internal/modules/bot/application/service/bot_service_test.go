package service

import (
	"context"
	"testing"
	"time"

	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/live/domain/event"
	"BotDesk/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBot(id, tenant string) *entity.Bot {
	return &entity.Bot{Id: id, Tenant: tenant, Name: "bot-" + id, Platform: entity.PlatformLine, Active: true}
}

func TestBotService_InitDefaultIsIdempotent(t *testing.T) {
	bots := newFakeBotRepo()
	svc := NewBotService(bots, &fakeSecretRepo{rows: map[string]*entity.BotSecret{}}, &fakeConfigRepo{rows: map[string]*entity.BotConfig{}}, nil)

	first, err := svc.InitDefault(context.Background(), "bn9")
	require.NoError(t, err)
	second, err := svc.InitDefault(context.Background(), "bn9")
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, DefaultBotName, first.Name)
	assert.Equal(t, entity.PlatformLine, first.Platform)
	assert.True(t, first.Active)
	assert.Len(t, bots.bots, 1)
}

func TestBotService_UpdateBroadcastsOnFirstVerification(t *testing.T) {
	pub := &recordingPublisher{}
	svc := NewBotService(newFakeBotRepo(newBot("b1", "bn9")), &fakeSecretRepo{rows: map[string]*entity.BotSecret{}}, &fakeConfigRepo{rows: map[string]*entity.BotConfig{}}, pub)

	now := time.Now()
	got, err := svc.Update(context.Background(), "b1", request.UpdateBotRequest{VerifiedAt: request.OptionalTime{Set: true, Value: &now}})
	require.NoError(t, err)
	require.NotNil(t, got.VerifiedAt)
	require.Equal(t, 1, pub.count())
	assert.Equal(t, event.TypeBotVerified, pub.events[0].Type)
	assert.Equal(t, "bn9", pub.events[0].Tenant)

	// 已验证状态下再次设置不重复广播
	_, err = svc.Update(context.Background(), "b1", request.UpdateBotRequest{VerifiedAt: request.OptionalTime{Set: true, Value: &now}})
	require.NoError(t, err)
	assert.Equal(t, 1, pub.count())
}

func TestBotService_UpdateErrors(t *testing.T) {
	svc := NewBotService(newFakeBotRepo(newBot("b1", "bn9")), &fakeSecretRepo{rows: map[string]*entity.BotSecret{}}, &fakeConfigRepo{rows: map[string]*entity.BotConfig{}}, nil)

	_, err := svc.Update(context.Background(), "b1", request.UpdateBotRequest{})
	assert.ErrorIs(t, err, xerr.ErrNothingToUpdate)

	_, err = svc.Update(context.Background(), "missing", request.UpdateBotRequest{Name: strPtr("x")})
	assert.ErrorIs(t, err, xerr.ErrBotNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), "missing"), xerr.ErrBotNotFound)
}

func TestBotService_SummaryMasksSecrets(t *testing.T) {
	secrets := &fakeSecretRepo{rows: map[string]*entity.BotSecret{
		"b1": {BotId: "b1", ChannelSecret: strPtr("abcdefghij"), ChannelAccessToken: strPtr("short")},
	}}
	svc := NewBotService(newFakeBotRepo(newBot("b1", "bn9")), secrets, &fakeConfigRepo{rows: map[string]*entity.BotConfig{}}, nil)

	out, err := svc.Summary(context.Background(), "b1")
	require.NoError(t, err)
	require.NotNil(t, out.Secrets)
	assert.Equal(t, "abc***hij", out.Secrets.ChannelSecret)
	assert.Equal(t, "*****", out.Secrets.ChannelAccessToken)
	assert.Equal(t, "", out.Secrets.OpenaiAPIKey)
	assert.Nil(t, out.Config)
}
