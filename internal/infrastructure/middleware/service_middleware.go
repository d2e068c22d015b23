package middleware

import (
	"crypto/subtle"
	"net/http"

	"kyte_chat_server/internal/config"
	"kyte_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ServiceKeyAuth 服务间调用认证中间件
// 校验 X-Service-Api-Key 请求头，供 AI Agent 等内部服务注入消息
// 常量时间比较，避免密钥被逐字节试探
func ServiceKeyAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		expected := config.GetConfig().ServiceConfig.APIKey
		got := c.GetHeader("X-Service-Api-Key")
		if expected == "" || got == "" ||
			subtle.ConstantTimeCompare([]byte(expected), []byte(got)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"code": errorx.CodeUnauthorized,
				"msg":  "服务密钥无效",
			})
			return
		}
		c.Next()
	}
}
