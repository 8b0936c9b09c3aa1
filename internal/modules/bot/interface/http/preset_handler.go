package handler

import (
	"BotDesk/internal/middleware/tenant"
	"BotDesk/internal/modules/bot/application/dto/request"
	"BotDesk/internal/modules/bot/application/service"
	"BotDesk/pkg/back"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PresetHandler struct {
	svc service.PresetService
}

func NewPresetHandler(svc service.PresetService) *PresetHandler {
	return &PresetHandler{svc: svc}
}

func (h *PresetHandler) List(c *gin.Context) {
	data, err := h.svc.List(c.Request.Context(), tenant.From(c))
	back.Result(c, data, err)
}

func (h *PresetHandler) Create(c *gin.Context) {
	var req request.CreatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind create preset request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Create(c.Request.Context(), tenant.From(c), req)
	back.Result(c, data, err)
}

func (h *PresetHandler) Update(c *gin.Context) {
	var req request.UpdatePresetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind update preset request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Update(c.Request.Context(), c.Param("id"), req)
	back.Result(c, data, err)
}

func (h *PresetHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), c.Param("id"))
	back.Result(c, gin.H{"ok": err == nil}, err)
}
