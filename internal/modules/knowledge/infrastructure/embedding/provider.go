package embedding

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"BotDesk/internal/config"
	"BotDesk/pkg/zlog"

	arkEmbed "github.com/cloudwego/eino-ext/components/embedding/ark"
	dashscopeEmbed "github.com/cloudwego/eino-ext/components/embedding/dashscope"
	openaiEmbed "github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
	"go.uber.org/zap"
)

type EmbedderMeta struct {
	Provider string
	Model    string
	Dim      int
	Degraded bool
}

// NewEmbedderOrFallback 配置的供应商不可用时退回本地哈希向量
func NewEmbedderOrFallback(ctx context.Context, conf *config.Config) (embedding.Embedder, EmbedderMeta) {
	em, meta, err := NewEmbedderFromConfig(ctx, conf)
	if err == nil {
		return em, meta
	}
	dim := 0
	if conf != nil {
		dim = conf.AIConfig.Embedding.Dimensions
	}
	hash := NewHashEmbedder(dim)
	zlog.Warn("embedder unavailable, falling back to hash embedder", zap.Int("dim", hash.Dim), zap.Error(err))
	return hash, EmbedderMeta{Provider: "mock", Model: "hash", Dim: hash.Dim, Degraded: true}
}

// NewEmbedderFromConfig 按 aiConfig.embedding 构建向量化组件，密钥缺省时读环境变量
func NewEmbedderFromConfig(ctx context.Context, conf *config.Config) (embedding.Embedder, EmbedderMeta, error) {
	if conf == nil {
		return nil, EmbedderMeta{}, fmt.Errorf("nil config")
	}
	ec := conf.AIConfig.Embedding
	dim := ec.Dimensions
	provider := strings.ToLower(strings.TrimSpace(ec.Provider))
	model := strings.TrimSpace(ec.Model)
	apiKey := strings.TrimSpace(ec.APIKey)
	baseURL := strings.TrimSpace(ec.BaseURL)

	timeout := 30 * time.Second
	if ec.TimeoutSeconds > 0 {
		timeout = time.Duration(ec.TimeoutSeconds) * time.Second
	}

	switch provider {
	case "", "mock":
		return NewHashEmbedder(dim), EmbedderMeta{Provider: "mock", Model: "hash", Dim: dim}, nil
	case "openai":
		apiKey = firstNonEmpty(apiKey, os.Getenv("OPENAI_API_KEY"))
		model = firstNonEmpty(model, os.Getenv("OPENAI_EMBED_MODEL"), "text-embedding-3-small")
		baseURL = firstNonEmpty(baseURL, os.Getenv("OPENAI_BASE_URL"))
		if apiKey == "" {
			return nil, EmbedderMeta{}, fmt.Errorf("openai embedding missing apiKey")
		}
		localDim := dim
		em, err := openaiEmbed.NewEmbedder(ctx, &openaiEmbed.EmbeddingConfig{
			APIKey:     apiKey,
			Model:      model,
			BaseURL:    baseURL,
			Timeout:    timeout,
			Dimensions: &localDim,
		})
		if err != nil {
			return nil, EmbedderMeta{}, err
		}
		return em, EmbedderMeta{Provider: "openai", Model: model, Dim: dim}, nil
	case "ark":
		apiKey = firstNonEmpty(apiKey, os.Getenv("ARK_API_KEY"))
		model = firstNonEmpty(model, os.Getenv("ARK_EMBED_MODEL"))
		baseURL = firstNonEmpty(baseURL, os.Getenv("ARK_BASE_URL"))
		if apiKey == "" || model == "" {
			return nil, EmbedderMeta{}, fmt.Errorf("ark embedding missing apiKey/model")
		}
		em, err := arkEmbed.NewEmbedder(ctx, &arkEmbed.EmbeddingConfig{
			APIKey:  apiKey,
			Model:   model,
			BaseURL: baseURL,
		})
		if err != nil {
			return nil, EmbedderMeta{}, err
		}
		return em, EmbedderMeta{Provider: "ark", Model: model, Dim: dim}, nil
	case "dashscope":
		apiKey = firstNonEmpty(apiKey, os.Getenv("DASHSCOPE_API_KEY"))
		model = firstNonEmpty(model, os.Getenv("DASHSCOPE_EMBED_MODEL"))
		if apiKey == "" || model == "" {
			return nil, EmbedderMeta{}, fmt.Errorf("dashscope embedding missing apiKey/model")
		}
		localDim := dim
		em, err := dashscopeEmbed.NewEmbedder(ctx, &dashscopeEmbed.EmbeddingConfig{
			Model:      model,
			APIKey:     apiKey,
			Dimensions: &localDim,
		})
		if err != nil {
			return nil, EmbedderMeta{}, err
		}
		return em, EmbedderMeta{Provider: "dashscope", Model: model, Dim: dim}, nil
	default:
		return nil, EmbedderMeta{}, fmt.Errorf("unknown embedding provider: %s", provider)
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if t := strings.TrimSpace(v); t != "" {
			return t
		}
	}
	return ""
}
