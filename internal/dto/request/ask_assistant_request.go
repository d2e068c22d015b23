package request

// AskAssistantRequest 向 AI 助手提问请求
// chat_id 必须是当前用户的助手会话
// 使用位置:
//   - internal/handler/assistant_handler.go: Ask
//   - internal/service/assistant_service.go: Ask
type AskAssistantRequest struct {
	ChatId  string `json:"chat_id" binding:"required"`
	Content string `json:"content" binding:"required,max=4000"`
}
