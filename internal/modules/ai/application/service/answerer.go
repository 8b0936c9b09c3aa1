package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"BotDesk/internal/modules/ai/infrastructure/llm"
	"BotDesk/pkg/zlog"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultSystemPrompt = "คุณคือผู้ช่วยที่สุภาพและกระชับ"

	NotConfiguredReply = "ตอนนี้ยังไม่ได้ตั้งค่า OpenAI API Key ค่ะ แอดมินลองเช็คหน้า Bots → Secrets นะคะ 💛"
	UnavailableReply   = "ขอโทษค่ะ ระบบ AI มีปัญหาชั่วคราว ลองใหม่อีกครั้งนะคะ 🙏"
	EmptyReply         = "ขอโทษค่ะ ยังไม่ได้ข้อความตอบกลับจาก AI ค่ะ"

	DefaultAnswerTimeout = 15 * time.Second

	// 同一密钥连续失败 breakerFailures 次后熔断 breakerCooldown
	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

type AnswerInput struct {
	Credential   string
	Model        string
	SystemPrompt string
	UserText     string
	Snippets     []string
	Temperature  float64
	TopP         float64
	MaxTokens    int
}

// Answerer 不向调用方返回错误，失败时给出兜底文案
type Answerer interface {
	Answer(ctx context.Context, in AnswerInput) string
}

type answererImpl struct {
	factory llm.ChatModelFactory
	timeout time.Duration

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewAnswerer(factory llm.ChatModelFactory, timeout time.Duration) Answerer {
	if timeout <= 0 {
		timeout = DefaultAnswerTimeout
	}
	return &answererImpl{factory: factory, timeout: timeout, breakers: map[string]*gobreaker.CircuitBreaker{}}
}

// breaker 按密钥隔离熔断，一个租户的坏密钥不影响其他租户
func (a *answererImpl) breaker(credential string) *gobreaker.CircuitBreaker {
	sum := sha256.Sum256([]byte(credential))
	key := hex.EncodeToString(sum[:6])

	a.mu.Lock()
	defer a.mu.Unlock()
	if cb, ok := a.breakers[key]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "chat-" + key,
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= breakerFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			zlog.Warn("chat model breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	a.breakers[key] = cb
	return cb
}

func (a *answererImpl) Answer(ctx context.Context, in AnswerInput) string {
	if strings.TrimSpace(in.Credential) == "" {
		return NotConfiguredReply
	}

	cm, err := a.factory.New(ctx, in.Credential, in.Model)
	if err != nil {
		zlog.Error("build chat model failed", zap.String("model", in.Model), zap.Error(err))
		return UnavailableReply
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	out, err := a.breaker(in.Credential).Execute(func() (interface{}, error) {
		return cm.Generate(ctx, BuildMessages(in.SystemPrompt, in.UserText, in.Snippets), generateOptions(in)...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		zlog.Warn("chat model breaker open, skipping completion", zap.String("model", in.Model))
		return UnavailableReply
	}
	if err != nil {
		zlog.Error("chat completion failed",
			zap.String("model", in.Model),
			zap.Bool("timeout", ctx.Err() != nil),
			zap.Error(err))
		return UnavailableReply
	}
	msg, _ := out.(*schema.Message)
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return EmptyReply
	}
	return strings.TrimSpace(msg.Content)
}

// BuildMessages 系统提示、知识片段（可选）、用户消息
func BuildMessages(systemPrompt, userText string, snippets []string) []*schema.Message {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	msgs := []*schema.Message{schema.SystemMessage(systemPrompt)}

	var sb strings.Builder
	n := 0
	for _, s := range snippets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		n++
		fmt.Fprintf(&sb, "[%d] %s\n", n, s)
	}
	if n > 0 {
		msgs = append(msgs, schema.SystemMessage("ข้อมูลอ้างอิง:\n"+strings.TrimRight(sb.String(), "\n")))
	}
	return append(msgs, schema.UserMessage(userText))
}

func generateOptions(in AnswerInput) []model.Option {
	opts := []model.Option{
		model.WithModel(in.Model),
		model.WithTemperature(float32(in.Temperature)),
		model.WithTopP(float32(in.TopP)),
	}
	if in.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(in.MaxTokens))
	}
	return opts
}
