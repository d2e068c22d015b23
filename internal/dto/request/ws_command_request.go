package request

// WsCommandRequest WebSocket 客户端命令
// action 可选值：join_chat, leave_chat, message
// join_chat 会校验成员身份，非成员静默忽略；leave_chat 无条件退订
// 使用位置:
//   - internal/service/hub/conn.go: Read
//   - internal/service/hub/server.go: 命令分发
type WsCommandRequest struct {
	Action      string              `json:"action" binding:"required"`
	ChatId      string              `json:"chat_id"`
	Content     string              `json:"content"`
	Kind        string              `json:"kind"`
	Attachments []AttachmentPayload `json:"attachments"`
	Metadata    map[string]any      `json:"metadata"`
}
