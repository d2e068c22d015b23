package middleware

import (
	"net/http"

	"kyte_chat_server/internal/infrastructure/ratelimit"
	"kyte_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// RateLimit 限流中间件
// 按客户端 IP 做固定窗口限流，超限返回 429
func RateLimit(limiter *ratelimit.Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := limiter.Allow(c.Request.Context(), scope, c.ClientIP()); err != nil {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"code": errorx.CodeRateLimited,
				"msg":  "请求过于频繁，请稍后重试",
			})
			return
		}
		c.Next()
	}
}
