package respond

// RegisterRespond 用户注册响应
// 注册成功后直接发放令牌，免去二次登录
// 使用位置:
//   - internal/service/user_service.go: Register
type RegisterRespond struct {
	Uuid         string `json:"uuid"`
	Nickname     string `json:"nickname"`
	Telephone    string `json:"telephone"`
	Email        string `json:"email,omitempty"`
	Avatar       string `json:"avatar"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
