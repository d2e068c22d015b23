// Package handler 提供 HTTP 请求处理器
// 本文件处理消息相关的 API 请求
package handler

import (
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// MessageHandler 消息请求处理器
type MessageHandler struct {
	messageSvc service.MessageService
}

func NewMessageHandler(messageSvc service.MessageService) *MessageHandler {
	return &MessageHandler{messageSvc: messageSvc}
}

// SendMessage 发送消息
// POST /message/send
// 请求体: request.SendMessageRequest
// 响应: respond.MessageRespond
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req request.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.Send(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// GetMessageList 游标分页获取聊天记录
// GET /message/getMessageList?chat_id=xxx&cursor=xxx&limit=100
// 响应: respond.MessageListRespond (消息按时间正序)
func (h *MessageHandler) GetMessageList(c *gin.Context) {
	var req request.GetMessageListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.List(c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// ToggleLike 切换消息点赞状态
// POST /message/toggleLike
// 请求体: request.ToggleLikeRequest
// 响应: respond.ToggleLikeRespond
func (h *MessageHandler) ToggleLike(c *gin.Context) {
	var req request.ToggleLikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.ToggleLike(c.GetString("user_id"), req.MessageId)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}

// UploadFile 上传聊天附件文件
// POST /message/uploadFile
// 表单字段: files (可多个)
// 响应: { "urls": [...] }
func (h *MessageHandler) UploadFile(c *gin.Context) {
	urls, err := h.messageSvc.UploadFile(c)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, gin.H{"urls": urls})
}
