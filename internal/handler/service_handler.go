// Package handler 提供 HTTP 请求处理器
// 本文件处理服务间调用的 API 请求，路由层已做服务密钥鉴权
package handler

import (
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/service"

	"github.com/gin-gonic/gin"
)

// ServiceHandler 服务间调用处理器
// 供内部协作服务（如会议服务）注入系统消息
type ServiceHandler struct {
	messageSvc service.MessageService
}

func NewServiceHandler(messageSvc service.MessageService) *ServiceHandler {
	return &ServiceHandler{messageSvc: messageSvc}
}

// InjectMessage 注入消息
// POST /service/message/inject
// 请求体: request.InjectMessageRequest
// 响应: respond.MessageRespond
// 发送者不要求是会话成员，消息照常广播和推送
func (h *ServiceHandler) InjectMessage(c *gin.Context) {
	var req request.InjectMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleParamError(c, err)
		return
	}
	data, err := h.messageSvc.Inject(c.Request.Context(), req)
	if err != nil {
		HandleError(c, err)
		return
	}
	HandleSuccess(c, data)
}
