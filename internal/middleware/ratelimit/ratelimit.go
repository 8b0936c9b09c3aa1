package ratelimit

import (
	"context"
	"strconv"
	"strings"
	"time"

	"BotDesk/pkg/back"
	"BotDesk/pkg/xerr"
	"BotDesk/pkg/zlog"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const keyPrefix = "botdesk:rl:"

// Counter 固定窗口计数，pkg/redis.Client 实现了它
type Counter interface {
	IncrWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

type Options struct {
	Window time.Duration
	Max    int
	// SkipPrefixes 命中的路径不计数，webhook 必须在其中
	SkipPrefixes []string
}

// Limit 按客户端 IP 的固定窗口限流；计数失败时放行
func Limit(counter Counter, opts Options) gin.HandlerFunc {
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, p := range opts.SkipPrefixes {
			if strings.HasPrefix(path, p) {
				c.Next()
				return
			}
		}

		n, err := counter.IncrWindow(c.Request.Context(), keyPrefix+c.ClientIP(), opts.Window)
		if err != nil {
			zlog.Warn("rate limit counter failed, allowing", zap.Error(err))
			c.Next()
			return
		}

		remaining := int64(opts.Max) - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(opts.Max))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if n > int64(opts.Max) {
			c.Header("Retry-After", strconv.Itoa(int(opts.Window/time.Second)))
			back.Error(c, xerr.ErrRateLimited.Code, xerr.ErrRateLimited.Message)
			c.Abort()
			return
		}
		c.Next()
	}
}
