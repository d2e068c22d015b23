package request

// RefreshTokenRequest 刷新令牌请求
// 使用位置:
//   - internal/handler/user_handler.go: RefreshToken
//   - internal/service/user_service.go: RefreshToken
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}
