package request

// RegisterRequest 用户注册请求
// 使用位置:
//   - internal/handler/user_handler.go: Register
//   - internal/service/user_service.go: Register
type RegisterRequest struct {
	Telephone string `json:"telephone" binding:"required,len=11"`
	Password  string `json:"password" binding:"required,min=6"`
	Nickname  string `json:"nickname" binding:"required,max=30"`
	SmsCode   string `json:"sms_code" binding:"required,len=6"`
	Email     string `json:"email" binding:"omitempty,email,max=50"`
	Avatar    string `json:"avatar"`
}
