package handler

import (
	"strconv"

	"BotDesk/internal/middleware/tenant"
	"BotDesk/internal/modules/knowledge/application/dto/request"
	"BotDesk/internal/modules/knowledge/application/service"
	"BotDesk/pkg/back"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type KnowledgeHandler struct {
	svc service.DocService
}

func NewKnowledgeHandler(svc service.DocService) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc}
}

func (h *KnowledgeHandler) List(c *gin.Context) {
	data, err := h.svc.List(c.Request.Context(), tenant.From(c))
	back.Result(c, data, err)
}

func (h *KnowledgeHandler) Create(c *gin.Context) {
	var req request.CreateDocRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind create doc request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Create(c.Request.Context(), tenant.From(c), req)
	back.Result(c, data, err)
}

func (h *KnowledgeHandler) Get(c *gin.Context) {
	data, err := h.svc.Get(c.Request.Context(), tenant.From(c), c.Param("id"))
	back.Result(c, data, err)
}

func (h *KnowledgeHandler) Delete(c *gin.Context) {
	err := h.svc.Delete(c.Request.Context(), tenant.From(c), c.Param("id"))
	back.Result(c, gin.H{"ok": err == nil}, err)
}

func (h *KnowledgeHandler) Reindex(c *gin.Context) {
	data, err := h.svc.Reindex(c.Request.Context(), tenant.From(c), c.Param("id"))
	back.Result(c, data, err)
}

func (h *KnowledgeHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	data, err := h.svc.Search(c.Request.Context(), tenant.From(c), c.Query("q"), limit)
	back.Result(c, data, err)
}
