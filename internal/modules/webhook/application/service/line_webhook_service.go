package service

import (
	"context"
	"net/http"
	"time"

	aiService "BotDesk/internal/modules/ai/application/service"
	botEntity "BotDesk/internal/modules/bot/domain/entity"
	botRepo "BotDesk/internal/modules/bot/domain/repository"
	caseService "BotDesk/internal/modules/casebook/application/service"
	caseEntity "BotDesk/internal/modules/casebook/domain/entity"
	knowledgeRepo "BotDesk/internal/modules/knowledge/domain/repository"
	"BotDesk/internal/modules/live/domain/event"
	"BotDesk/internal/modules/webhook/domain/classifier"
	"BotDesk/internal/modules/webhook/domain/line"
	"BotDesk/internal/modules/webhook/infrastructure/lineapi"
	"BotDesk/pkg/zlog"

	"go.uber.org/zap"
)

const snippetLimit = 5

var cannedReplies = map[string]string{
	caseEntity.KindDeposit:  "รับเรื่องฝากไม่เข้าแล้วครับ กำลังตรวจสอบให้นะครับ 🙏",
	caseEntity.KindWithdraw: "รับเรื่องถอนแล้วครับ กำลังตรวจสอบให้นะครับ 🙏",
	caseEntity.KindKYC:      "รับเรื่องยืนยันตัวตนแล้วครับ กำลังตรวจสอบให้นะครับ 🙏",
}

const defaultCannedReply = "รับข้อความแล้วครับ แอดมินกำลังตรวจสอบให้นะครับ 🙏"

// CannedReply 未配置模型凭据时按分类回复
func CannedReply(kind string) string {
	if r, ok := cannedReplies[kind]; ok {
		return r
	}
	return defaultCannedReply
}

// Delivery 一次 webhook 投递
type Delivery struct {
	Tenant    string
	Signature string
	RetryKey  string
	Body      []byte
}

type SignatureVerifier interface {
	Verify(raw []byte, signature, secret string) bool
}

type CaseRecorder interface {
	RecordIfNew(ctx context.Context, in caseService.RecordInput) (caseService.RecordResult, error)
}

type LineWebhookService interface {
	Handle(ctx context.Context, d Delivery) (int, Response)
}

type LineWebhookDeps struct {
	Bots       botRepo.BotRepository
	Secrets    botRepo.SecretRepository
	Configs    botRepo.ConfigRepository
	Verifier   SignatureVerifier
	Classifier classifier.Classifier
	Recorder   CaseRecorder
	Retriever  knowledgeRepo.Retriever
	Answerer   aiService.Answerer
	Line       lineapi.Client
	Events     event.Publisher
}

type lineWebhookServiceImpl struct {
	LineWebhookDeps
}

func NewLineWebhookService(deps LineWebhookDeps) LineWebhookService {
	if deps.Events == nil {
		deps.Events = event.NopPublisher{}
	}
	if deps.Classifier == nil {
		deps.Classifier = classifier.NewKeywordClassifier()
	}
	return &lineWebhookServiceImpl{LineWebhookDeps: deps}
}

// botContext 一次投递内共享的机器人配置
type botContext struct {
	tenant      string
	botID       string
	accessToken string
	credential  string
	config      *botEntity.BotConfig
}

func (s *lineWebhookServiceImpl) Handle(ctx context.Context, d Delivery) (status int, resp Response) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error("line webhook panic", zap.String("tenant", d.Tenant), zap.Any("panic", r), zap.Stack("stack"))
			status, resp = http.StatusInternalServerError, errorResponse(MsgInternalError)
		}
	}()

	bot, err := s.Bots.FindForPlatform(ctx, d.Tenant, botEntity.PlatformLine)
	if err != nil {
		zlog.Error("find line bot failed", zap.String("tenant", d.Tenant), zap.Error(err))
		return http.StatusInternalServerError, errorResponse(MsgInternalError)
	}
	if bot == nil {
		zlog.Warn("line webhook for tenant without bot", zap.String("tenant", d.Tenant))
		return http.StatusBadRequest, errorResponse(MsgBotNotConfigured)
	}
	secret, err := s.Secrets.GetByBotID(ctx, bot.Id)
	if err != nil {
		zlog.Error("load bot secret failed", zap.String("tenant", d.Tenant), zap.String("bot_id", bot.Id), zap.Error(err))
		return http.StatusInternalServerError, errorResponse(MsgInternalError)
	}

	if !s.Verifier.Verify(d.Body, d.Signature, secret.GetChannelSecret()) {
		zlog.Warn("invalid line signature", zap.String("tenant", d.Tenant), zap.String("bot_id", bot.Id))
		return http.StatusUnauthorized, errorResponse(MsgInvalidSignature)
	}

	payload := line.ParsePayload(d.Body)
	if len(payload.Events) == 0 {
		return http.StatusOK, Response{OK: true, NoEvents: true}
	}

	bc := botContext{
		tenant:      d.Tenant,
		botID:       bot.Id,
		accessToken: secret.GetChannelAccessToken(),
		credential:  secret.GetOpenaiAPIKey(),
	}
	if bc.credential != "" {
		if bc.config, err = s.Configs.GetByBotID(ctx, bot.Id); err != nil {
			zlog.Warn("load bot config failed, using defaults", zap.String("bot_id", bot.Id), zap.Error(err))
		}
	}

	isRetry := d.RetryKey != ""
	results := make([]Outcome, 0, len(payload.Events))
	for i, ev := range payload.Events {
		results = append(results, s.handleEvent(ctx, bc, i, ev, isRetry))
	}
	return http.StatusOK, Response{OK: true, Results: results, Retry: boolPtr(isRetry)}
}

// handleEvent 单个事件的 panic 只影响它自己的结果
func (s *lineWebhookServiceImpl) handleEvent(ctx context.Context, bc botContext, idx int, ev line.Event, isRetry bool) (out Outcome) {
	if !ev.IsText() {
		return skippedOutcome()
	}

	userID := ev.Source.ActorID()
	fields := []zap.Field{
		zap.String("tenant", bc.tenant),
		zap.String("bot_id", bc.botID),
		zap.Int("event_index", idx),
		zap.String("user_id", userID),
	}
	defer func() {
		if r := recover(); r != nil {
			zlog.Error("line event panic", append(fields, zap.Any("panic", r), zap.Stack("stack"))...)
			out = failedOutcome()
		}
	}()

	text := ev.Message.Text
	kind := s.Classifier.Classify(text)

	res, err := s.Recorder.RecordIfNew(ctx, caseService.RecordInput{
		BotID:  bc.botID,
		UserID: userID,
		Kind:   kind,
		Text:   text,
		Meta:   &caseEntity.CaseMeta{UserID: userID},
	})
	if err != nil {
		zlog.Error("record case failed", append(fields, zap.Error(err))...)
		return failedOutcome()
	}
	if res.Duplicate {
		zlog.Info("duplicate case within window", append(fields, zap.String("case_id", res.ExistingCaseID))...)
		return duplicateOutcome(res.ExistingCaseID)
	}

	created := res.Created
	fields = append(fields, zap.String("case_id", created.Id))
	s.Events.Publish(ctx, event.Event{
		Type:   event.TypeCaseNew,
		Tenant: bc.tenant,
		BotID:  bc.botID,
		CaseID: created.Id,
		At:     time.Now().UTC(),
		Data:   map[string]string{"kind": kind, "userId": userID, "text": text},
	})

	replied := false
	if !isRetry && ev.ReplyToken != "" && bc.accessToken != "" {
		answer := s.replyText(ctx, bc, kind, text, fields)
		ok, err := s.Line.Reply(ctx, ev.ReplyToken, bc.accessToken, answer)
		if err != nil {
			zlog.Warn("line reply failed", append(fields, zap.Error(err))...)
		}
		replied = ok
	}
	return createdOutcome(created.Id, replied)
}

func (s *lineWebhookServiceImpl) replyText(ctx context.Context, bc botContext, kind, text string, fields []zap.Field) string {
	if bc.credential == "" {
		return CannedReply(kind)
	}

	var snippets []string
	if s.Retriever != nil {
		hits, err := s.Retriever.Search(ctx, bc.tenant, text, snippetLimit)
		if err != nil {
			zlog.Warn("knowledge search failed, answering without snippets", append(fields, zap.Error(err))...)
		} else {
			snippets = aiService.HitContents(hits)
		}
	}

	in := aiService.AnswerInput{
		Credential:  bc.credential,
		Model:       botEntity.DefaultModel,
		UserText:    text,
		Snippets:    snippets,
		Temperature: botEntity.DefaultTemperature,
		TopP:        botEntity.DefaultTopP,
		MaxTokens:   botEntity.DefaultMaxTokens,
	}
	if c := bc.config; c != nil {
		in.Model, in.SystemPrompt = c.Model, c.SystemPrompt
		in.Temperature, in.TopP, in.MaxTokens = c.Temperature, c.TopP, c.MaxTokens
	}
	return s.Answerer.Answer(ctx, in)
}
