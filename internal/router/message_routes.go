// Package router 提供 HTTP 路由注册
// 本文件定义消息相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/infrastructure/middleware"
)

// RegisterMessageRoutes 注册消息相关路由（需要认证）
func (rt *Router) RegisterMessageRoutes(r *gin.Engine) {
	messageGroup := r.Group("/message")
	messageGroup.Use(middleware.JWTAuth())
	{
		messageGroup.POST("/send", rt.handlers.Message.SendMessage)           // 发送消息
		messageGroup.GET("/getMessageList", rt.handlers.Message.GetMessageList) // 游标分页聊天记录
		messageGroup.POST("/toggleLike", rt.handlers.Message.ToggleLike)      // 切换点赞
		messageGroup.POST("/uploadFile", rt.handlers.Message.UploadFile)      // 上传聊天附件
	}
}
