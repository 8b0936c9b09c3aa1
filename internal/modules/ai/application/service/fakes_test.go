package service

import (
	"context"
	"errors"
	"sync"

	"BotDesk/internal/modules/bot/domain/entity"
	botRepo "BotDesk/internal/modules/bot/domain/repository"
	knowledgeRepo "BotDesk/internal/modules/knowledge/domain/repository"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// fakeChatModel 记录最后一次调用
type fakeChatModel struct {
	mu      sync.Mutex
	reply   string
	err     error
	block   bool
	calls   int
	input   []*schema.Message
	options *model.Options
}

func (m *fakeChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.mu.Lock()
	m.calls++
	m.input = input
	m.options = model.GetCommonOptions(nil, opts...)
	m.mu.Unlock()

	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if m.err != nil {
		return nil, m.err
	}
	return schema.AssistantMessage(m.reply, nil), nil
}

func (m *fakeChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not supported")
}

type fakeFactory struct {
	cm         *fakeChatModel
	err        error
	credential string
	modelName  string
}

func (f *fakeFactory) New(_ context.Context, credential, modelName string) (model.BaseChatModel, error) {
	f.credential, f.modelName = credential, modelName
	if f.err != nil {
		return nil, f.err
	}
	return f.cm, nil
}

type fakeBots struct {
	botRepo.BotRepository
	bots map[string]*entity.Bot
}

func (f *fakeBots) GetByID(_ context.Context, id string) (*entity.Bot, error) {
	return f.bots[id], nil
}

type fakeSecrets struct {
	botRepo.SecretRepository
	secrets map[string]*entity.BotSecret
}

func (f *fakeSecrets) GetByBotID(_ context.Context, id string) (*entity.BotSecret, error) {
	return f.secrets[id], nil
}

type fakeConfigs struct {
	botRepo.ConfigRepository
	configs map[string]*entity.BotConfig
}

func (f *fakeConfigs) GetByBotID(_ context.Context, id string) (*entity.BotConfig, error) {
	return f.configs[id], nil
}

func (f *fakeConfigs) GetOrCreateDefault(_ context.Context, id string) (*entity.BotConfig, error) {
	if c, ok := f.configs[id]; ok {
		return c, nil
	}
	c := &entity.BotConfig{BotId: id, Model: entity.DefaultModel, Temperature: entity.DefaultTemperature,
		TopP: entity.DefaultTopP, MaxTokens: entity.DefaultMaxTokens}
	f.configs[id] = c
	return c, nil
}

type fakeRetriever struct {
	hits []knowledgeRepo.Hit
	err  error
}

func (f *fakeRetriever) Search(context.Context, string, string, int) ([]knowledgeRepo.Hit, error) {
	return f.hits, f.err
}

type recordingAnswerer struct {
	got   AnswerInput
	reply string
}

func (r *recordingAnswerer) Answer(_ context.Context, in AnswerInput) string {
	r.got = in
	return r.reply
}

func strPtr(s string) *string { return &s }
