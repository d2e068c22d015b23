package request

// CreateChatRequest 创建会话请求
// direct 类型必填 peer_id，group 类型必填 name，assistant 类型两者都不需要
// 使用位置:
//   - internal/handler/chat_handler.go: CreateChat
//   - internal/service/chat_service.go: CreateChat
type CreateChatRequest struct {
	Kind   string `json:"kind" binding:"required,oneof=direct group assistant"`
	Name   string `json:"name" binding:"omitempty,max=50"`
	PeerId string `json:"peer_id"`
	Avatar string `json:"avatar"`
}
