// Package service 定义业务层接口
// 本文件定义所有 Service 接口，供 Handler 层调用
// 接口设计遵循依赖倒置原则，便于测试和解耦
package service

import (
	"context"

	"github.com/gin-gonic/gin"

	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/dto/respond"
)

// UserService 用户业务接口
// 处理用户注册、登录、信息管理等功能
type UserService interface {
	// Register 用户注册，需要先通过短信验证
	Register(req request.RegisterRequest) (*respond.RegisterRespond, error)
	// Login 密码登录
	Login(req request.LoginRequest) (*respond.LoginRespond, error)
	// SmsLogin 短信验证码登录
	SmsLogin(req request.SmsLoginRequest) (*respond.LoginRespond, error)
	// SendSmsCode 发送短信验证码
	SendSmsCode(telephone string) error
	// RefreshToken 用 Refresh Token 换新的 Access Token
	RefreshToken(refreshToken string) (string, error)
	// GetUserInfo 获取单个用户信息
	GetUserInfo(uuid string) (*respond.UserRespond, error)
	// UpdateUser 更新用户资料
	UpdateUser(uuid string, req request.UpdateUserRequest) error
	// AdminListUsers 分页获取用户列表（管理端）
	AdminListUsers(req request.AdminPageRequest) (*respond.AdminUserListRespond, error)
	// AdminSetUserStatus 批量启用/禁用用户（管理端）
	AdminSetUserStatus(uuids []string, status int8) error
	// AdminDeleteUsers 批量删除用户（管理端，软删除）
	AdminDeleteUsers(uuids []string) error
}

// ChatService 会话业务接口
// 处理会话创建、成员管理、已读游标和参与度统计
type ChatService interface {
	// CreateChat 创建会话（direct/group/assistant）
	CreateChat(userId string, req request.CreateChatRequest) (*respond.ChatRespond, error)
	// JoinByInviteCode 通过邀请码加入群聊，已是成员返回 CodeConflict
	JoinByInviteCode(userId string, code string) (*respond.ChatRespond, error)
	// GetChats 获取用户的会话列表，按最后消息时间倒序，带未读数
	GetChats(userId string) ([]respond.ChatRespond, error)
	// GetChat 获取单个会话详情，非成员返回 CodeForbidden
	GetChat(userId, chatId string) (*respond.ChatRespond, error)
	// MarkRead 推进已读游标，游标只前进不后退
	MarkRead(userId string, req request.MarkReadRequest) error
	// UnreadCount 当前用户在会话里的未读数，无游标时为全量消息数
	UnreadCount(userId, chatId string) (int64, error)
	// Engagement 会话参与度统计（消息数、点赞总数、会议次数）
	Engagement(userId, chatId string) (*respond.EngagementRespond, error)
	// LeaveChat 退出群聊
	LeaveChat(userId, chatId string) error
	// AdminListChats 分页获取会话列表（管理端）
	AdminListChats(req request.AdminPageRequest) (*respond.AdminChatListRespond, error)
	// AdminDeleteChat 删除会话并级联清理消息、点赞、附件、成员、游标（管理端）
	AdminDeleteChat(chatId string) error
}

// MessageService 消息业务接口
// 处理消息发送、历史查询、点赞和附件
type MessageService interface {
	// Send 发送消息：校验成员身份、持久化、更新会话摘要、广播、离线推送
	Send(ctx context.Context, userId string, req request.SendMessageRequest) (*respond.MessageRespond, error)
	// Inject 服务间消息注入，跳过成员校验（调用方已通过服务密钥认证）
	Inject(ctx context.Context, req request.InjectMessageRequest) (*respond.MessageRespond, error)
	// List 游标分页获取聊天记录，非成员返回 CodeForbidden
	List(userId string, req request.GetMessageListRequest) (*respond.MessageListRespond, error)
	// ToggleLike 切换点赞状态，返回更新后的消息和当前状态
	ToggleLike(userId string, messageId string) (*respond.ToggleLikeRespond, error)
	// UploadFile 上传消息附件文件，返回访问链接列表
	UploadFile(c *gin.Context) ([]string, error)
	// AdminListMessages 分页获取消息列表（管理端）
	AdminListMessages(req request.AdminPageRequest) (*respond.AdminMessageListRespond, error)
	// AdminDeleteMessage 删除单条消息（管理端）
	AdminDeleteMessage(messageId string) error
}

// AssistantService AI 助手业务接口
type AssistantService interface {
	// Ask 向助手会话提问：保存用户消息、调用上游、保存并广播 AI 回复
	// 上游不可用返回 CodeUpstreamUnavailable
	Ask(ctx context.Context, userId string, req request.AskAssistantRequest) (*respond.MessageRespond, error)
}
