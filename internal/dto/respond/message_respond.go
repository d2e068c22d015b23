package respond

// AttachmentRespond 消息附件响应
type AttachmentRespond struct {
	Url      string `json:"url"`
	FileType string `json:"type"`
	FileName string `json:"name"`
	FileSize int64  `json:"size"`
}

// MessageRespond 消息响应
// 字段名与客户端约定的线上格式保持一致，驼峰命名
// id 为雪花 ID 的十进制字符串，createdAt 为 ISO-8601 格式
// metadata 无内容时输出 null 而不是空对象
// 使用位置:
//   - internal/service/message_service.go: 组装
//   - internal/service/hub: 实时广播的 message 事件载荷
type MessageRespond struct {
	Id          string              `json:"id"`
	ChatId      string              `json:"chatId"`
	UserId      string              `json:"userId"`
	UserName    string              `json:"userName"`
	Content     string              `json:"content"`
	Kind        string              `json:"type"`
	Likes       []string            `json:"likes"`
	LikesCount  int                 `json:"likesCount"`
	Attachments []AttachmentRespond `json:"attachments"`
	CreatedAt   string              `json:"createdAt"`
	Metadata    map[string]any      `json:"metadata"`
}
