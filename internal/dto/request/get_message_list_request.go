package request

// GetMessageListRequest 获取聊天记录请求（游标分页）
// cursor 为上一页返回的 next_cursor，首页传空
// 使用位置:
//   - internal/handler/message_handler.go: GetMessageList
//   - internal/service/message_service.go: List
type GetMessageListRequest struct {
	ChatId string `json:"chat_id" form:"chat_id" binding:"required"`
	Cursor string `json:"cursor" form:"cursor"`
	Limit  int    `json:"limit" form:"limit" binding:"omitempty,min=1,max=200"`
}
