package service

import (
	"context"
	"testing"

	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/domain/entity"
	"BotDesk/internal/modules/live/domain/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretService_GetMasked(t *testing.T) {
	secrets := &fakeSecretRepo{rows: map[string]*entity.BotSecret{
		"b1": {BotId: "b1", OpenaiAPIKey: strPtr("sk-live")},
	}}
	svc := NewSecretService(newFakeBotRepo(newBot("b1", "bn9")), secrets, nil)

	out, err := svc.GetMasked(context.Background(), "b1")
	require.NoError(t, err)
	assert.Equal(t, MaskPlaceholder, out.OpenaiAPIKey)
	assert.Equal(t, "", out.LineAccessToken)
	assert.Equal(t, "", out.LineChannelSecret)
}

func TestSecretService_SaveIgnoresBlankAndMask(t *testing.T) {
	secrets := &fakeSecretRepo{rows: map[string]*entity.BotSecret{
		"b1": {BotId: "b1", OpenaiAPIKey: strPtr("sk-keep")},
	}}
	svc := NewSecretService(newFakeBotRepo(newBot("b1", "bn9")), secrets, nil)

	out, err := svc.Save(context.Background(), "b1", request.SaveSecretsRequest{
		OpenaiAPIKey:    strPtr("********"),
		LineAccessToken: strPtr("   "),
	})
	require.NoError(t, err)
	assert.False(t, out.Verified)
	assert.Equal(t, "sk-keep", secrets.rows["b1"].GetOpenaiAPIKey())
	assert.Equal(t, "", secrets.rows["b1"].GetChannelAccessToken())
}

func TestSecretService_SaveVerifiesOnceWithBothLineCredentials(t *testing.T) {
	bots := newFakeBotRepo(newBot("b1", "bn9"))
	pub := &recordingPublisher{}
	svc := NewSecretService(bots, &fakeSecretRepo{rows: map[string]*entity.BotSecret{}}, pub)

	out, err := svc.Save(context.Background(), "b1", request.SaveSecretsRequest{LineAccessToken: strPtr("tok")})
	require.NoError(t, err)
	assert.False(t, out.Verified)
	assert.Equal(t, 0, pub.count())

	out, err = svc.Save(context.Background(), "b1", request.SaveSecretsRequest{LineChannelSecret: strPtr("sec")})
	require.NoError(t, err)
	assert.True(t, out.Verified)
	require.Equal(t, 1, pub.count())
	assert.Equal(t, event.TypeBotVerified, pub.events[0].Type)
	assert.Equal(t, "b1", pub.events[0].BotID)
	assert.NotNil(t, bots.bots["b1"].VerifiedAt)

	out, err = svc.Save(context.Background(), "b1", request.SaveSecretsRequest{LineAccessToken: strPtr("tok2")})
	require.NoError(t, err)
	assert.True(t, out.Verified)
	assert.Equal(t, 1, pub.count())
}
