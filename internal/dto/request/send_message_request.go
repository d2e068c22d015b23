package request

// AttachmentPayload 消息附件载荷
// 文件本体已通过静态资源接口上传，这里只带链接和元信息
type AttachmentPayload struct {
	Url      string `json:"url" binding:"required"`
	FileType string `json:"type"`
	FileName string `json:"name"`
	FileSize int64  `json:"size"`
}

// SendMessageRequest 发送消息请求
// content 和 attachments 至少要有一个非空，由 service 层校验
// 使用位置:
//   - internal/handler/message_handler.go: SendMessage
//   - internal/service/message_service.go: Send
type SendMessageRequest struct {
	ChatId      string              `json:"chat_id" binding:"required"`
	Content     string              `json:"content" binding:"max=4000"`
	Kind        string              `json:"kind" binding:"omitempty,oneof=text ai system"`
	Attachments []AttachmentPayload `json:"attachments" binding:"omitempty,dive"`
	Metadata    map[string]any      `json:"metadata"`
}
