package handler

import (
	"errors"
	"net/http"

	"BotDesk/internal/middleware/tenant"
	"BotDesk/internal/modules/webhook/application/service"
	"BotDesk/internal/modules/webhook/domain/line"
	"BotDesk/pkg/back"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type WebhookHandler struct {
	svc     service.LineWebhookService
	maxBody int64
}

func NewWebhookHandler(svc service.LineWebhookService, maxBody int64) *WebhookHandler {
	return &WebhookHandler{svc: svc, maxBody: maxBody}
}

// Line POST /api/webhooks/line，签名校验依赖原始字节，必须先于任何 JSON 解析读取
func (h *WebhookHandler) Line(c *gin.Context) {
	if h.maxBody > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBody)
	}
	raw, err := c.GetRawData()
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		zlog.Warn("line webhook body too large", zap.String("tenant", tenant.From(c)), zap.Int64("limit", tooLarge.Limit))
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "message": service.MsgPayloadTooLarge})
		return
	}
	if err != nil {
		zlog.Error("read line webhook body failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": service.MsgInternalError})
		return
	}
	status, resp := h.svc.Handle(c.Request.Context(), service.Delivery{
		Tenant:    tenant.From(c),
		Signature: c.GetHeader(line.HeaderSignature),
		RetryKey:  c.GetHeader(line.HeaderRetryKey),
		Body:      raw,
	})
	c.JSON(status, resp)
}

type DevHandler struct {
	ping service.PingService
}

func NewDevHandler(ping service.PingService) *DevHandler {
	return &DevHandler{ping: ping}
}

// LinePing GET /dev/line-ping/:botId
func (h *DevHandler) LinePing(c *gin.Context) {
	data, err := h.ping.Ping(c.Request.Context(), c.Param("botId"))
	back.Result(c, data, err)
}
