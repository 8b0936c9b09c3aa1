package ssl

import (
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
)

// SecureHandler 安全响应头；forceHTTPS 时把 http 请求重定向到 https
func SecureHandler(forceHTTPS bool, isDevelopment bool) gin.HandlerFunc {
	secureMiddleware := secure.New(secure.Options{
		SSLRedirect:           forceHTTPS,
		SSLProxyHeaders:       map[string]string{"X-Forwarded-Proto": "https"},
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		IsDevelopment:         isDevelopment,
	})
	return func(c *gin.Context) {
		// Process 已经写入重定向响应时直接中止
		if err := secureMiddleware.Process(c.Writer, c.Request); err != nil {
			c.Abort()
			return
		}
		c.Next()
	}
}
