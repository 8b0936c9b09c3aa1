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

type BotHandler struct {
	bots    service.BotService
	secrets service.SecretService
	configs service.ConfigService
}

func NewBotHandler(bots service.BotService, secrets service.SecretService, configs service.ConfigService) *BotHandler {
	return &BotHandler{bots: bots, secrets: secrets, configs: configs}
}

func (h *BotHandler) List(c *gin.Context) {
	data, err := h.bots.List(c.Request.Context(), tenant.From(c))
	back.Result(c, data, err)
}

func (h *BotHandler) Init(c *gin.Context) {
	data, err := h.bots.InitDefault(c.Request.Context(), tenant.From(c))
	back.Result(c, data, err)
}

func (h *BotHandler) Get(c *gin.Context) {
	data, err := h.bots.Get(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *BotHandler) Update(c *gin.Context) {
	var req request.UpdateBotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind update bot request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.bots.Update(c.Request.Context(), c.Param("id"), req)
	back.Result(c, data, err)
}

func (h *BotHandler) Delete(c *gin.Context) {
	err := h.bots.Delete(c.Request.Context(), c.Param("id"))
	back.Result(c, gin.H{"ok": err == nil}, err)
}

func (h *BotHandler) Summary(c *gin.Context) {
	data, err := h.bots.Summary(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *BotHandler) GetSecrets(c *gin.Context) {
	data, err := h.secrets.GetMasked(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *BotHandler) SaveSecrets(c *gin.Context) {
	var req request.SaveSecretsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind save secrets request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.secrets.Save(c.Request.Context(), c.Param("id"), req)
	back.Result(c, data, err)
}

func (h *BotHandler) GetConfig(c *gin.Context) {
	data, err := h.configs.Get(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *BotHandler) UpdateConfig(c *gin.Context) {
	var req request.UpdateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind update config request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.configs.Update(c.Request.Context(), c.Param("id"), req)
	back.Result(c, data, err)
}
