// Package router 提供 HTTP 路由注册
// 本文件定义管理端相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/infrastructure/middleware"
)

// RegisterAdminRoutes 注册管理端路由
// 先过 JWT 认证，再校验管理员标志
func (rt *Router) RegisterAdminRoutes(r *gin.Engine) {
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuth(), middleware.AdminAuth())
	{
		// ===== 用户管理 =====
		userAdminGroup := adminGroup.Group("/user")
		{
			userAdminGroup.GET("/list", rt.handlers.Admin.ListUsers)          // 分页获取用户列表
			userAdminGroup.POST("/setStatus", rt.handlers.Admin.SetUserStatus) // 批量启用/禁用用户
			userAdminGroup.POST("/delete", rt.handlers.Admin.DeleteUsers)     // 批量删除用户
		}

		// ===== 会话管理 =====
		chatAdminGroup := adminGroup.Group("/chat")
		{
			chatAdminGroup.GET("/list", rt.handlers.Admin.ListChats)              // 分页获取会话列表
			chatAdminGroup.POST("/:chatId/delete", rt.handlers.Admin.DeleteChat) // 删除会话
		}

		// ===== 消息管理 =====
		messageAdminGroup := adminGroup.Group("/message")
		{
			messageAdminGroup.GET("/list", rt.handlers.Admin.ListMessages)                 // 分页获取消息列表
			messageAdminGroup.POST("/:messageId/delete", rt.handlers.Admin.DeleteMessage) // 删除单条消息
		}
	}
}
