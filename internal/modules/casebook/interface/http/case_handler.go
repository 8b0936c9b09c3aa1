package handler

import (
	"strconv"

	"BotDesk/internal/middleware/tenant"
	"BotDesk/internal/modules/casebook/application/dto/request"
	"BotDesk/internal/modules/casebook/application/service"
	"BotDesk/pkg/back"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CaseHandler struct {
	cases service.CaseService
	stats service.StatsService
}

func NewCaseHandler(cases service.CaseService, stats service.StatsService) *CaseHandler {
	return &CaseHandler{cases: cases, stats: stats}
}

func (h *CaseHandler) Create(c *gin.Context) {
	var req request.CreateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zlog.Warn("bind create case request failed", zap.Error(err))
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	// 只有显式携带 x-tenant 时才按租户过滤
	t, _ := tenant.Explicit(c)
	data, err := h.cases.Create(c.Request.Context(), t, req)
	back.Result(c, data, err)
}

func (h *CaseHandler) Recent(c *gin.Context) {
	data, err := h.cases.Recent(c.Request.Context(), c.Query("botId"), queryInt(c, "limit"))
	back.Result(c, data, err)
}

func (h *CaseHandler) RecentByTenant(c *gin.Context) {
	data, err := h.cases.RecentByTenant(c.Request.Context(), c.Param("tenant"), queryInt(c, "limit"))
	back.Result(c, data, err)
}

func (h *CaseHandler) Daily(c *gin.Context) {
	data, err := h.stats.Daily(c.Request.Context(), c.Param("botId"), c.Query("date"))
	back.Result(c, data, err)
}

func (h *CaseHandler) Range(c *gin.Context) {
	data, err := h.stats.Range(c.Request.Context(), c.Param("botId"), c.Query("from"), c.Query("to"))
	back.Result(c, data, err)
}

// queryInt 非数字按 0 处理，由 service 套用默认值
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
