// Package handler 提供 HTTP 请求处理器
// 本文件处理 WebSocket 连接升级
package handler

import (
	"net/http"

	"kyte_chat_server/internal/service/hub"
	"kyte_chat_server/pkg/errorx"
	myjwt "kyte_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WsHandler WebSocket 请求处理器
type WsHandler struct {
	server *hub.ChatServer
}

func NewWsHandler(server *hub.ChatServer) *WsHandler {
	return &WsHandler{server: server}
}

// Connect 升级为 WebSocket 连接
// GET /ws?token=xxx
// 浏览器 WebSocket 无法自定义请求头，令牌通过查询参数传递
// 升级成功后客户端通过 join_chat / leave_chat / message 命令交互
func (h *WsHandler) Connect(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "缺少令牌",
		})
		return
	}
	claims, err := myjwt.ParseToken(token)
	if err != nil || claims.Subject != "access_token" {
		zap.L().Warn("WebSocket 令牌校验失败", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{
			"code": errorx.CodeUnauthorized,
			"msg":  "令牌无效",
		})
		return
	}
	hub.NewClientInit(c, claims.UserID, h.server)
}
