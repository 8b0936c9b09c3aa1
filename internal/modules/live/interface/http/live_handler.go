package handler

import (
	"io"
	"net/http"
	"strings"
	"time"

	"BotDesk/pkg/back"
	"BotDesk/pkg/ws"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const heartbeatInterval = 25 * time.Second

type LiveHandler struct {
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

// NewLiveHandler allowedOrigins 为空时不限制 websocket 来源
func NewLiveHandler(hub *ws.Hub, allowedOrigins []string) *LiveHandler {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &LiveHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(allowed) == 0 || origin == "" {
					return true
				}
				_, ok := allowed[strings.TrimRight(origin, "/")]
				return ok
			},
		},
	}
}

// Stream GET /api/live/:tenant，SSE
func (h *LiveHandler) Stream(c *gin.Context) {
	tenant := strings.TrimSpace(c.Param("tenant"))
	if tenant == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrMissingTenant.Message)
		return
	}

	client := ws.NewClient(tenant, nil)
	h.hub.Register(client)
	defer h.hub.Unregister(client)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Render(-1, sse.Event{Event: "ready", Data: `{"ok":true}`})
	c.Writer.Flush()

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	zlog.Info("live sse connected", zap.String("tenant", tenant), zap.Int("subscribers", h.hub.Count(tenant)))
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case msg, ok := <-client.Messages():
			if !ok {
				return false
			}
			c.Render(-1, sse.Event{Data: string(msg)})
			return true
		case <-ticker.C:
			_, _ = io.WriteString(w, ": ping\n\n")
			return true
		}
	})
}

// Socket GET /api/live/:tenant/ws
func (h *LiveHandler) Socket(c *gin.Context) {
	tenant := strings.TrimSpace(c.Param("tenant"))
	if tenant == "" {
		back.Error(c, xerr.BadRequest, xerr.ErrMissingTenant.Message)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zlog.Warn("live ws upgrade failed", zap.String("tenant", tenant), zap.Error(err))
		return
	}

	client := ws.NewClient(tenant, conn)
	h.hub.Register(client)
	zlog.Info("live ws connected", zap.String("tenant", tenant), zap.Int("subscribers", h.hub.Count(tenant)))

	go client.WritePump()
	client.ReadPump(func() { h.hub.Unregister(client) })
}
