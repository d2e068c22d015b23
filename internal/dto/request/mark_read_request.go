package request

// MarkReadRequest 标记已读请求
// 把会话的已读游标推进到指定消息
// 使用位置:
//   - internal/handler/chat_handler.go: MarkRead
//   - internal/service/chat_service.go: MarkRead
type MarkReadRequest struct {
	ChatId    string `json:"chat_id" binding:"required"`
	MessageId string `json:"message_id" binding:"required"`
}
