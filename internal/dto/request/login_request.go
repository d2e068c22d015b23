package request

// LoginRequest 用户密码登录请求
// 手机号和邮箱二选一作为登录账号
// 使用位置:
//   - internal/handler/user_handler.go: Login
//   - internal/service/user_service.go: Login
type LoginRequest struct {
	Telephone string `json:"telephone" binding:"omitempty,len=11"`
	Email     string `json:"email" binding:"omitempty,email,max=50"`
	Password  string `json:"password" binding:"required,min=6"`
}
