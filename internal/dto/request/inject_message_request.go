package request

// InjectMessageRequest 服务间消息注入请求
// 供持有服务密钥的内部服务（如 AI Agent）代发消息，不走用户会话
// 使用位置:
//   - internal/handler/service_handler.go: InjectMessage
//   - internal/service/message_service.go: Inject
type InjectMessageRequest struct {
	ChatId     string         `json:"chat_id" binding:"required"`
	SenderId   string         `json:"sender_id" binding:"required"`
	SenderName string         `json:"sender_name" binding:"required,max=30"`
	Content    string         `json:"content" binding:"required,max=4000"`
	Kind       string         `json:"kind" binding:"omitempty,oneof=text ai system"`
	Metadata   map[string]any `json:"metadata"`
}
