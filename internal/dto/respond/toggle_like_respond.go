package respond

// ToggleLikeRespond 切换点赞响应
// liked 表示本次操作后当前用户是否处于已赞状态
// 使用位置:
//   - internal/service/message_service.go: ToggleLike
type ToggleLikeRespond struct {
	Message MessageRespond `json:"message"`
	Liked   bool           `json:"liked"`
}
