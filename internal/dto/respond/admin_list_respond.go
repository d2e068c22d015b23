package respond

// AdminChatListRespond 管理端会话分页响应
// 使用位置:
//   - internal/service/chat_service.go: AdminListChats
type AdminChatListRespond struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Chats    []ChatRespond `json:"chats"`
}

// AdminUserListRespond 管理端用户分页响应
// 使用位置:
//   - internal/service/user_service.go: AdminListUsers
type AdminUserListRespond struct {
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Users    []UserRespond `json:"users"`
}

// AdminMessageListRespond 管理端消息分页响应
// 使用位置:
//   - internal/service/message_service.go: AdminListMessages
type AdminMessageListRespond struct {
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
	Messages []MessageRespond `json:"messages"`
}
