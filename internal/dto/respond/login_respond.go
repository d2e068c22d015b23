package respond

// LoginRespond 用户登录响应
// 使用位置:
//   - internal/service/user_service.go: Login, SmsLogin
type LoginRespond struct {
	Uuid         string `json:"uuid"`
	Nickname     string `json:"nickname"`
	Telephone    string `json:"telephone"`
	Avatar       string `json:"avatar"`
	Email        string `json:"email"`
	IsAdmin      int8   `json:"is_admin"`
	Status       int8   `json:"status"`
	CreatedAt    string `json:"created_at"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}
