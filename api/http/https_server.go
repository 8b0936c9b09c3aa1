package http

import (
	"net/http"
	"time"

	"BotDesk/internal/config"
	jwtMiddleware "BotDesk/internal/middleware/jwt"
	"BotDesk/internal/middleware/ratelimit"
	"BotDesk/internal/middleware/tenant"
	adminHandler "BotDesk/internal/modules/admin/interface/http"
	aiHandler "BotDesk/internal/modules/ai/interface/http"
	botHandler "BotDesk/internal/modules/bot/interface/http"
	caseHandler "BotDesk/internal/modules/casebook/interface/http"
	knowledgeHandler "BotDesk/internal/modules/knowledge/interface/http"
	liveHandler "BotDesk/internal/modules/live/interface/http"
	webhookHandler "BotDesk/internal/modules/webhook/interface/http"
	"BotDesk/pkg/ssl"
	"BotDesk/pkg/util/myjwt"
	"BotDesk/pkg/zlog"

	cors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const webhookPrefix = "/api/webhooks/"

// Handlers 由 main 组装好的各模块 handler
type Handlers struct {
	Auth      *adminHandler.AuthHandler
	Bot       *botHandler.BotHandler
	Preset    *botHandler.PresetHandler
	Case      *caseHandler.CaseHandler
	Knowledge *knowledgeHandler.KnowledgeHandler
	AI        *aiHandler.AIHandler
	Live      *liveHandler.LiveHandler
	Webhook   *webhookHandler.WebhookHandler
	Dev       *webhookHandler.DevHandler
}

// NewEngine 注册全部路由；limiter 为 nil 时不限流
func NewEngine(conf *config.Config, h Handlers, limiter ratelimit.Counter) *gin.Engine {
	ge := gin.New()
	ge.Use(zlog.GinRecovery(), zlog.GinLogger())

	corsConfig := cors.DefaultConfig()
	if len(conf.MainConfig.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = conf.MainConfig.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", tenant.Header}
	ge.Use(cors.New(corsConfig))
	ge.Use(ssl.SecureHandler(conf.MainConfig.ForceHTTPS, !conf.MainConfig.IsProduction()))
	ge.Use(tenant.Resolve(conf.LineConfig.DefaultTenant))

	ge.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "time": time.Now().UTC().Format(time.RFC3339)})
	})
	// webhook 只靠 LINE 签名鉴权，不走 JWT 和限流
	ge.POST(webhookPrefix+"line", h.Webhook.Line)

	if conf.MainConfig.EnableAdminAPI {
		api := ge.Group("/api")
		if limiter != nil && conf.RateLimitConfig.Enabled {
			api.Use(ratelimit.Limit(limiter, ratelimit.Options{
				Window:       time.Duration(conf.RateLimitConfig.WindowSeconds) * time.Second,
				Max:          conf.RateLimitConfig.Max,
				SkipPrefixes: []string{webhookPrefix},
			}))
		}
		jwtOpts := myjwt.Options{
			Key:         conf.JwtConfig.Key,
			ExpireHours: conf.JwtConfig.ExpireHours,
			Issuer:      conf.JwtConfig.Issuer,
		}
		api.POST("/auth/login", h.Auth.Login)

		authed := api.Group("")
		authed.Use(jwtMiddleware.Auth(jwtOpts))
		authed.GET("/auth/me", h.Auth.Me)

		authed.GET("/bots", h.Bot.List)
		authed.POST("/bots/init", h.Bot.Init)
		authed.GET("/bots/:id", h.Bot.Get)
		authed.PATCH("/bots/:id", h.Bot.Update)
		authed.DELETE("/bots/:id", h.Bot.Delete)
		authed.GET("/bots/:id/summary", h.Bot.Summary)
		authed.GET("/bots/:id/secrets", h.Bot.GetSecrets)
		authed.POST("/bots/:id/secrets", h.Bot.SaveSecrets)
		authed.GET("/bots/:id/config", h.Bot.GetConfig)
		authed.PUT("/bots/:id/config", h.Bot.UpdateConfig)

		authed.GET("/ai/presets", h.Preset.List)
		authed.POST("/ai/presets", h.Preset.Create)
		authed.PATCH("/ai/presets/:id", h.Preset.Update)
		authed.DELETE("/ai/presets/:id", h.Preset.Delete)
		authed.POST("/ai/answer", h.AI.Answer)

		authed.POST("/cases", h.Case.Create)
		authed.GET("/cases/recent", h.Case.Recent)
		authed.GET("/cases/:tenant/recent", h.Case.RecentByTenant)
		authed.GET("/stats/:botId/daily", h.Case.Daily)
		authed.GET("/stats/:botId", h.Case.Range)

		authed.GET("/knowledge/docs", h.Knowledge.List)
		authed.POST("/knowledge/docs", h.Knowledge.Create)
		authed.GET("/knowledge/docs/:id", h.Knowledge.Get)
		authed.DELETE("/knowledge/docs/:id", h.Knowledge.Delete)
		authed.POST("/knowledge/docs/:id/reindex", h.Knowledge.Reindex)
		authed.GET("/knowledge/search", h.Knowledge.Search)

		authed.GET("/live/:tenant", h.Live.Stream)
		authed.GET("/live/:tenant/ws", h.Live.Socket)
	}

	if !conf.MainConfig.IsProduction() {
		dev := ge.Group("/dev")
		dev.GET("/line-ping/:botId", h.Dev.LinePing)
		dev.POST("/ai-test", h.AI.Test)
	}

	ge.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "not_found"})
	})
	return ge
}
