package tenant

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	Header = "x-tenant"
	CtxKey = "tenant"
)

// Resolve 从 x-tenant 读取租户，缺省时使用默认租户
func Resolve(defaultTenant string) gin.HandlerFunc {
	return func(c *gin.Context) {
		t := strings.TrimSpace(c.GetHeader(Header))
		if t == "" {
			t = defaultTenant
		}
		c.Set(CtxKey, t)
		c.Next()
	}
}

// From 取出 Resolve 写入的租户
func From(c *gin.Context) string {
	return c.GetString(CtxKey)
}

// Explicit 请求是否显式携带了 x-tenant
func Explicit(c *gin.Context) (string, bool) {
	t := strings.TrimSpace(c.GetHeader(Header))
	return t, t != ""
}
