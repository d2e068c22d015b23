package respond

// EngagementRespond 会话参与度统计响应
// 使用位置: 获取会话参与度统计接口
type EngagementRespond struct {
	MessageCount int64 `json:"message_count"` // 消息总数
	LikesTotal   int64 `json:"likes_total"`   // 点赞总数
	MeetingCount int64 `json:"meeting_count"` // 发起过会议的消息数
}
