// Package handler 提供 HTTP 请求处理器
// 本文件处理 AI 助手相关的 API 请求
package handler

import (
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// AssistantHandler AI 助手请求处理器
type AssistantHandler struct {
	assistantSvc service.AssistantService
}

func NewAssistantHandler(assistantSvc service.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistantSvc: assistantSvc}
}

// Ask 向助手会话提问
// POST /assistant/ask
// 请求体: request.AskAssistantRequest
// 响应: respond.MessageRespond (AI 回复消息)
func (h *AssistantHandler) Ask(c *gin.Context) {
	var req request.AskAssistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.assistantSvc.Ask(c.Request.Context(), c.GetString("user_id"), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
