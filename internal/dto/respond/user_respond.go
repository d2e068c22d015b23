package respond

// UserRespond 用户信息响应
// 使用位置:
//   - internal/service/user_service.go: GetUserInfo
//   - internal/service/user_service.go: AdminListUsers
type UserRespond struct {
	Uuid          string `json:"uuid"`
	Nickname      string `json:"nickname"`
	Telephone     string `json:"telephone"`
	Email         string `json:"email"`
	Avatar        string `json:"avatar"`
	IsAdmin       int8   `json:"is_admin"`
	Status        int8   `json:"status"`
	LastOnlineAt  string `json:"last_online_at"`
	LastOfflineAt string `json:"last_offline_at"`
	CreatedAt     string `json:"created_at"`
}
