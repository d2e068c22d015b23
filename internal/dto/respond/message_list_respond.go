package respond

// MessageListRespond 聊天记录响应（游标分页）
// messages 按时间正序排列，next_cursor 传回下一页请求即可继续向前翻
// 使用位置:
//   - internal/service/message_service.go: List
type MessageListRespond struct {
	Messages   []MessageRespond `json:"messages"`
	NextCursor string           `json:"next_cursor"`
	HasMore    bool             `json:"has_more"`
}
