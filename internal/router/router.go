// Package router 提供 HTTP 路由注册
// 本文件是路由注册的入口，聚合所有子模块的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/handler"
	"kyte_chat_server/internal/infrastructure/ratelimit"
)

// Router 路由注册器
// 持有 Handler 聚合和限流器，各子模块的注册方法挂在它上面
type Router struct {
	handlers    *handler.Handlers
	authLimiter *ratelimit.Limiter
	smsLimiter  *ratelimit.Limiter
}

// NewRouter 创建路由注册器
// authLimiter 管登录注册接口，smsLimiter 管短信发送接口
func NewRouter(handlers *handler.Handlers, authLimiter, smsLimiter *ratelimit.Limiter) *Router {
	return &Router{
		handlers:    handlers,
		authLimiter: authLimiter,
		smsLimiter:  smsLimiter,
	}
}

// RegisterRoutes 注册所有路由
// 在 https_server.Init() 中调用
func (rt *Router) RegisterRoutes(r *gin.Engine) {
	rt.RegisterAuthRoutes(r)      // 认证路由（公开，带限流）
	rt.RegisterUserRoutes(r)      // 用户路由
	rt.RegisterChatRoutes(r)      // 会话路由
	rt.RegisterMessageRoutes(r)   // 消息路由
	rt.RegisterAssistantRoutes(r) // AI 助手路由
	rt.RegisterAdminRoutes(r)     // 管理端路由
	rt.RegisterServiceRoutes(r)   // 服务间调用路由
	rt.RegisterWebSocketRoutes(r) // WebSocket 路由
}
