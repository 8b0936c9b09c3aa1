package handler

import (
	"BotDesk/internal/middleware/jwt"
	"BotDesk/internal/modules/admin/application/dto/request"
	"BotDesk/internal/modules/admin/application/service"
	"BotDesk/pkg/back"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(svc service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind login request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Login(c.Request.Context(), req)
	back.Result(c, data, err)
}

func (h *AuthHandler) Me(c *gin.Context) {
	data, err := h.svc.Me(c.Request.Context(), c.GetString(jwt.CtxAdminID))
	back.Result(c, data, err)
}
