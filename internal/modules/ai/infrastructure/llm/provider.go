package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"BotDesk/internal/config"

	arkModel "github.com/cloudwego/eino-ext/components/model/ark"
	openaiModel "github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// ChatModelFactory 按机器人自己的凭据构建对话模型
type ChatModelFactory interface {
	New(ctx context.Context, credential, modelName string) (model.BaseChatModel, error)
}

type providerFactory struct {
	conf config.AIChatModelConfig

	mu    sync.Mutex
	cache map[string]model.BaseChatModel
}

// NewChatModelFactory provider 为空时按 openai 处理
func NewChatModelFactory(conf config.AIChatModelConfig) ChatModelFactory {
	return &providerFactory{conf: conf, cache: make(map[string]model.BaseChatModel)}
}

func (f *providerFactory) New(ctx context.Context, credential, modelName string) (model.BaseChatModel, error) {
	credential = strings.TrimSpace(credential)
	modelName = strings.TrimSpace(modelName)
	if credential == "" {
		return nil, fmt.Errorf("chat model missing credential")
	}
	if modelName == "" {
		return nil, fmt.Errorf("chat model missing model")
	}

	provider := strings.ToLower(strings.TrimSpace(f.conf.Provider))
	key := provider + "|" + modelName + "|" + credential

	f.mu.Lock()
	defer f.mu.Unlock()
	if cm, ok := f.cache[key]; ok {
		return cm, nil
	}

	cm, err := f.build(ctx, provider, credential, modelName)
	if err != nil {
		return nil, err
	}
	f.cache[key] = cm
	return cm, nil
}

func (f *providerFactory) build(ctx context.Context, provider, credential, modelName string) (model.BaseChatModel, error) {
	timeout := 2 * time.Minute
	if f.conf.TimeoutSeconds > 0 {
		timeout = time.Duration(f.conf.TimeoutSeconds) * time.Second
	}

	switch provider {
	case "", "openai":
		return openaiModel.NewChatModel(ctx, &openaiModel.ChatModelConfig{
			APIKey:     credential,
			Model:      modelName,
			BaseURL:    strings.TrimSpace(f.conf.BaseURL),
			ByAzure:    f.conf.ByAzure,
			APIVersion: strings.TrimSpace(f.conf.AzureAPIVersion),
			Timeout:    timeout,
		})

	case "ark":
		retryTimes := 2
		if f.conf.RetryTimes > 0 {
			retryTimes = f.conf.RetryTimes
		}
		return arkModel.NewChatModel(ctx, &arkModel.ChatModelConfig{
			APIKey:     credential,
			Model:      modelName,
			BaseURL:    strings.TrimSpace(f.conf.BaseURL),
			Region:     strings.TrimSpace(f.conf.Region),
			Timeout:    &timeout,
			RetryTimes: &retryTimes,
		})

	default:
		return nil, fmt.Errorf("unknown chat model provider: %s", provider)
	}
}
