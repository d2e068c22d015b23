// Package router 提供 HTTP 路由注册
// 本文件定义认证相关的路由
package router

import (
	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/infrastructure/middleware"
)

// RegisterAuthRoutes 注册认证相关路由（公开接口）
// 登录注册按 IP 限流，短信发送单独用更紧的额度
func (rt *Router) RegisterAuthRoutes(r *gin.Engine) {
	authGroup := r.Group("/auth")
	authGroup.Use(middleware.RateLimit(rt.authLimiter, "auth"))
	{
		authGroup.POST("/register", rt.handlers.User.Register)         // 用户注册
		authGroup.POST("/login", rt.handlers.User.Login)               // 密码登录
		authGroup.POST("/smsLogin", rt.handlers.User.SmsLogin)         // 短信验证码登录
		authGroup.POST("/refreshToken", rt.handlers.User.RefreshToken) // 刷新访问令牌
	}

	// 短信发送接口额度更紧
	r.POST("/auth/sendSmsCode",
		middleware.RateLimit(rt.smsLimiter, "sms"),
		rt.handlers.User.SendSmsCode)
}
