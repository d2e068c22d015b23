// Package router 提供 HTTP 路由注册
// 本文件定义 AI 助手相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/infrastructure/middleware"
)

// RegisterAssistantRoutes 注册 AI 助手相关路由（需要认证）
func (rt *Router) RegisterAssistantRoutes(r *gin.Engine) {
	assistantGroup := r.Group("/assistant")
	assistantGroup.Use(middleware.JWTAuth())
	{
		assistantGroup.POST("/ask", rt.handlers.Assistant.Ask) // 向助手提问
	}
}
