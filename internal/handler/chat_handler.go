// Package handler 提供 HTTP 请求处理器
// 本文件处理会话相关的 API 请求
package handler

import (
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/service"
	"kyte_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// ChatHandler 会话请求处理器
type ChatHandler struct {
	chatSvc service.ChatService
}

func NewChatHandler(chatSvc service.ChatService) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc}
}

// CreateChat 创建会话
// POST /chat/create
// 请求体: request.CreateChatRequest
// 响应: respond.ChatRespond
func (h *ChatHandler) CreateChat(c *gin.Context) {
	var req request.CreateChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.CreateChat(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// JoinChat 通过邀请码加入群聊
// POST /chat/join
// 请求体: request.JoinChatRequest
// 响应: respond.ChatRespond
func (h *ChatHandler) JoinChat(c *gin.Context) {
	var req request.JoinChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.JoinByInviteCode(c.GetString("user_id"), req.InviteCode)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetChats 获取当前用户的会话列表
// GET /chat/list
// 响应: []respond.ChatRespond，按最后消息时间倒序，带未读数
func (h *ChatHandler) GetChats(c *gin.Context) {
	data, err := h.chatSvc.GetChats(c.GetString("user_id"))
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetChat 获取单个会话详情
// GET /chat/:chatId
func (h *ChatHandler) GetChat(c *gin.Context) {
	chatId := c.Param("chatId")
	if chatId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.chatSvc.GetChat(c.GetString("user_id"), chatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// MarkRead 推进已读游标
// POST /chat/markRead
// 请求体: request.MarkReadRequest
func (h *ChatHandler) MarkRead(c *gin.Context) {
	var req request.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.chatSvc.MarkRead(c.GetString("user_id"), req); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// UnreadCount 获取会话未读数
// GET /chat/:chatId/unread
// 响应: { "unread_count": n }
func (h *ChatHandler) UnreadCount(c *gin.Context) {
	chatId := c.Param("chatId")
	if chatId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	count, err := h.chatSvc.UnreadCount(c.GetString("user_id"), chatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"unread_count": count})
}

// Engagement 获取会话参与度统计
// GET /chat/:chatId/engagement
// 响应: respond.EngagementRespond
func (h *ChatHandler) Engagement(c *gin.Context) {
	chatId := c.Param("chatId")
	if chatId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	data, err := h.chatSvc.Engagement(c.GetString("user_id"), chatId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// LeaveChat 退出会话
// POST /chat/:chatId/leave
func (h *ChatHandler) LeaveChat(c *gin.Context) {
	chatId := c.Param("chatId")
	if chatId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	if err := h.chatSvc.LeaveChat(c.GetString("user_id"), chatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
