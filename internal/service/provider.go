// 本文件负责 Service 层的依赖注入和组装
package service

import (
	"kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/internal/infrastructure/ai"
	"kyte_chat_server/internal/infrastructure/push"
	"kyte_chat_server/internal/infrastructure/sms"
	"kyte_chat_server/internal/service/assistant"
	"kyte_chat_server/internal/service/chat"
	"kyte_chat_server/internal/service/hub"
	"kyte_chat_server/internal/service/message"
	"kyte_chat_server/internal/service/user"
)

// Services 业务服务集合
// 供 Handler 层使用，通过 NewServices 统一组装
type Services struct {
	User      UserService
	Chat      ChatService
	Message   MessageService
	Assistant AssistantService
}

// Svc 全局服务集合，main 里初始化一次
var Svc *Services

// NewServices 组装所有业务服务
// 消息服务与 ChatServer 互相依赖：消息服务通过 ChatServer 广播，
// ChatServer 把 WebSocket 的 message 命令委派给消息服务，
// 后者通过 SetSender 注入打破循环
func NewServices(
	repos *mysql.Repositories,
	cache myredis.AsyncCacheService,
	smsService sms.SmsService,
	notifier push.Notifier,
	completer ai.Completer,
	chatServer *hub.ChatServer,
) *Services {
	messageSvc := message.NewMessageService(repos, cache, chatServer, notifier)
	chatServer.SetSender(messageSvc)

	return &Services{
		User:      user.NewUserService(repos, cache, smsService),
		Chat:      chat.NewChatService(repos, cache),
		Message:   messageSvc,
		Assistant: assistant.NewAssistantService(repos, completer, messageSvc),
	}
}

// InitServices 初始化全局服务集合
func InitServices(
	repos *mysql.Repositories,
	cache myredis.AsyncCacheService,
	smsService sms.SmsService,
	notifier push.Notifier,
	completer ai.Completer,
	chatServer *hub.ChatServer,
) {
	Svc = NewServices(repos, cache, smsService, notifier, completer, chatServer)
}
