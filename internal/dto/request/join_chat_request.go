package request

// JoinChatRequest 通过邀请码加入群聊请求
// 使用位置:
//   - internal/handler/chat_handler.go: JoinChat
//   - internal/service/chat_service.go: JoinByInviteCode
type JoinChatRequest struct {
	InviteCode string `json:"invite_code" binding:"required,len=6"`
}
