package request

// SendSmsCodeRequest 发送短信验证码请求
// 使用位置:
//   - internal/handler/user_handler.go: SendSmsCode
//   - internal/service/user_service.go: SendSmsCode
type SendSmsCodeRequest struct {
	Telephone string `json:"telephone" binding:"required,len=11"`
}
