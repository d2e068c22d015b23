// Package router 提供 HTTP 路由注册
// 本文件定义服务间调用的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/infrastructure/middleware"
)

// RegisterServiceRoutes 注册服务间调用路由
// 通过 X-Service-Api-Key 请求头做服务密钥鉴权，不走用户 JWT
func (rt *Router) RegisterServiceRoutes(r *gin.Engine) {
	serviceGroup := r.Group("/service")
	serviceGroup.Use(middleware.ServiceKeyAuth())
	{
		serviceGroup.POST("/message/inject", rt.handlers.Service.InjectMessage) // 注入消息
	}
}
