// Package router 提供 HTTP 路由注册
// 本文件定义用户相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/infrastructure/middleware"
)

// RegisterUserRoutes 注册用户相关路由（需要认证）
func (rt *Router) RegisterUserRoutes(r *gin.Engine) {
	userGroup := r.Group("/user")
	userGroup.Use(middleware.JWTAuth())
	{
		userGroup.GET("/me", rt.handlers.User.GetMe)          // 获取当前用户信息
		userGroup.GET("/:uuid", rt.handlers.User.GetUserInfo) // 获取指定用户信息
		userGroup.POST("/update", rt.handlers.User.UpdateUser) // 更新当前用户资料
	}
}
