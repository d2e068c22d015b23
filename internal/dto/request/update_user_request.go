package request

// UpdateUserRequest 更新用户资料请求
// 使用位置:
//   - internal/handler/user_handler.go: UpdateUser
//   - internal/service/user_service.go: UpdateUser
type UpdateUserRequest struct {
	Nickname  string `json:"nickname" binding:"omitempty,max=30"`
	Avatar    string `json:"avatar"`
	Email     string `json:"email" binding:"omitempty,email"`
	PushToken string `json:"push_token"`
}
