// Package handler 提供 HTTP 请求处理器
// 本文件处理管理端的 API 请求，路由层已做管理员鉴权
package handler

import (
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/service"
	"kyte_chat_server/pkg/errorx"

	"github.com/gin-gonic/gin"
)

// AdminHandler 管理端请求处理器
type AdminHandler struct {
	userSvc    service.UserService
	chatSvc    service.ChatService
	messageSvc service.MessageService
}

func NewAdminHandler(userSvc service.UserService, chatSvc service.ChatService, messageSvc service.MessageService) *AdminHandler {
	return &AdminHandler{userSvc: userSvc, chatSvc: chatSvc, messageSvc: messageSvc}
}

// ListUsers 分页获取用户列表
// GET /admin/user/list?page=1&page_size=20
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req request.AdminPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.userSvc.AdminListUsers(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// SetUserStatus 批量启用/禁用用户
// POST /admin/user/setStatus
// 请求体: request.AdminSetUserStatusRequest
func (h *AdminHandler) SetUserStatus(c *gin.Context) {
	var req request.AdminSetUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.userSvc.AdminSetUserStatus(req.Uuids, req.Status); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// DeleteUsers 批量删除用户
// POST /admin/user/delete
// 请求体: request.AdminDeleteUsersRequest
func (h *AdminHandler) DeleteUsers(c *gin.Context) {
	var req request.AdminDeleteUsersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	if err := h.userSvc.AdminDeleteUsers(req.Uuids); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListChats 分页获取会话列表
// GET /admin/chat/list?page=1&page_size=20
func (h *AdminHandler) ListChats(c *gin.Context) {
	var req request.AdminPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.chatSvc.AdminListChats(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteChat 删除会话（级联清理消息、点赞、附件、成员、游标）
// POST /admin/chat/:chatId/delete
func (h *AdminHandler) DeleteChat(c *gin.Context) {
	chatId := c.Param("chatId")
	if chatId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	if err := h.chatSvc.AdminDeleteChat(chatId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}

// ListMessages 分页获取消息列表
// GET /admin/message/list?page=1&page_size=20
func (h *AdminHandler) ListMessages(c *gin.Context) {
	var req request.AdminPageRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.AdminListMessages(req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// DeleteMessage 删除单条消息
// POST /admin/message/:messageId/delete
func (h *AdminHandler) DeleteMessage(c *gin.Context) {
	messageId := c.Param("messageId")
	if messageId == "" {
		HandleError(c, errorx.ErrInvalidParam)
		return
	}
	if err := h.messageSvc.AdminDeleteMessage(messageId); err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, nil)
}
