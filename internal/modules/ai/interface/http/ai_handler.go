package handler

import (
	"BotDesk/internal/middleware/tenant"
	"BotDesk/internal/modules/ai/application/dto/request"
	"BotDesk/internal/modules/ai/application/service"
	"BotDesk/pkg/back"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AIHandler struct {
	svc service.AskService
}

func NewAIHandler(svc service.AskService) *AIHandler {
	return &AIHandler{svc: svc}
}

// Answer POST /api/ai/answer
func (h *AIHandler) Answer(c *gin.Context) {
	var req request.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind ask request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Ask(c.Request.Context(), tenant.From(c), req)
	back.Result(c, data, err)
}

// Test POST /dev/ai-test
func (h *AIHandler) Test(c *gin.Context) {
	var req request.AITestRequest
	_ = c.ShouldBindJSON(&req)
	data, err := h.svc.Preview(c.Request.Context(), req)
	back.Result(c, data, err)
}
