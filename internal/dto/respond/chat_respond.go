package respond

// ChatRespond 会话响应
// 含冗余的最后消息摘要和当前用户视角的未读数
// 使用位置:
//   - internal/service/chat_service.go: GetChats, CreateChat, JoinByInviteCode
type ChatRespond struct {
	Uuid               string   `json:"uuid"`
	Name               string   `json:"name"`
	Kind               string   `json:"kind"`
	Avatar             string   `json:"avatar"`
	OwnerId            string   `json:"owner_id"`
	InviteCode         string   `json:"invite_code,omitempty"`
	Participants       []string `json:"participants"`
	LastMessagePreview string   `json:"last_message_preview"`
	LastSenderName     string   `json:"last_sender_name"`
	LastMessageAt      string   `json:"last_message_at"`
	UnreadCount        int64    `json:"unread_count"`
	CreatedAt          string   `json:"created_at"`
}
