// Package handler 提供 HTTP 请求处理器
// 本文件定义 Handler 聚合结构和构造函数
package handler

import (
	"kyte_chat_server/internal/service"
	"kyte_chat_server/internal/service/hub"
)

// Handlers 聚合所有 Handler 实例
// Router 层通过此结构访问各个 Handler
type Handlers struct {
	User      *UserHandler
	Chat      *ChatHandler
	Message   *MessageHandler
	Assistant *AssistantHandler
	Admin     *AdminHandler
	Service   *ServiceHandler
	Ws        *WsHandler
}

// NewHandlers 创建并注入所有 Handler 实例
func NewHandlers(svc *service.Services, chatServer *hub.ChatServer) *Handlers {
	return &Handlers{
		User:      NewUserHandler(svc.User),
		Chat:      NewChatHandler(svc.Chat),
		Message:   NewMessageHandler(svc.Message),
		Assistant: NewAssistantHandler(svc.Assistant),
		Admin:     NewAdminHandler(svc.User, svc.Chat, svc.Message),
		Service:   NewServiceHandler(svc.Message),
		Ws:        NewWsHandler(chatServer),
	}
}
