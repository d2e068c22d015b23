package request

// ToggleLikeRequest 切换消息点赞请求
// 已赞则取消，未赞则点上
// 使用位置:
//   - internal/handler/message_handler.go: ToggleLike
//   - internal/service/message_service.go: ToggleLike
type ToggleLikeRequest struct {
	MessageId string `json:"message_id" binding:"required"`
}
