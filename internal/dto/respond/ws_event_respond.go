package respond

// WsEventRespond WebSocket 服务端事件信封
// event 可选值：message, message_liked
// 使用位置:
//   - internal/service/hub/hub.go: Publish
//   - internal/service/message_service.go: 广播组装
type WsEventRespond struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}
