package jwt

import (
	"strings"

	"BotDesk/pkg/back"
	"BotDesk/pkg/util/myjwt"
	"BotDesk/pkg/xerr"

	"github.com/gin-gonic/gin"
)

const (
	CtxAdminID = "adminId"
	CtxEmail   = "email"
)

// Auth 校验 Bearer token；SSE/WebSocket 无法带头部时允许 query 参数 token
func Auth(opts myjwt.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else if q := c.Query("token"); q != "" {
			tokenString = q
		}
		if tokenString == "" {
			back.Error(c, xerr.Unauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}

		claims, err := myjwt.ParseToken(opts, tokenString)
		if err != nil {
			back.Error(c, xerr.Unauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set(CtxAdminID, claims.AdminID)
		c.Set(CtxEmail, claims.Email)
		c.Next()
	}
}
