// Package router 提供 HTTP 路由注册
// 本文件定义会话相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/infrastructure/middleware"
)

// RegisterChatRoutes 注册会话相关路由（需要认证）
func (rt *Router) RegisterChatRoutes(r *gin.Engine) {
	chatGroup := r.Group("/chat")
	chatGroup.Use(middleware.JWTAuth())
	{
		chatGroup.POST("/create", rt.handlers.Chat.CreateChat)              // 创建会话
		chatGroup.POST("/join", rt.handlers.Chat.JoinChat)                  // 邀请码加入群聊
		chatGroup.GET("/list", rt.handlers.Chat.GetChats)                   // 会话列表
		chatGroup.GET("/:chatId", rt.handlers.Chat.GetChat)                 // 会话详情
		chatGroup.POST("/markRead", rt.handlers.Chat.MarkRead)              // 推进已读游标
		chatGroup.GET("/:chatId/unread", rt.handlers.Chat.UnreadCount)      // 未读数
		chatGroup.GET("/:chatId/engagement", rt.handlers.Chat.Engagement)   // 参与度统计
		chatGroup.POST("/:chatId/leave", rt.handlers.Chat.LeaveChat)        // 退出会话
	}
}
