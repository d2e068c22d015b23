// Package mysql 定义数据访问层接口和聚合结构
// 采用 Repository 模式将数据访问逻辑与业务逻辑分离
// 所有 Repository 接口在此文件定义，具体实现在各自的模块中
package mysql

import (
	"time"

	"kyte_chat_server/internal/model"
)

// ==================== Repository 接口定义 ====================

// UserRepository 用户数据访问接口
// 提供用户的增删改查操作
type UserRepository interface {
	// FindByUuid 根据 UUID 查找用户
	FindByUuid(uuid string) (*model.User, error)
	// FindByTelephone 根据手机号查找用户
	FindByTelephone(telephone string) (*model.User, error)
	// FindByEmail 根据邮箱查找用户
	FindByEmail(email string) (*model.User, error)
	// FindByUuids 批量根据 UUID 查找用户
	FindByUuids(uuids []string) ([]model.User, error)
	// CreateUser 创建新用户
	CreateUser(user *model.User) error
	// UpdateUser 更新用户信息
	UpdateUser(user *model.User) error
	// UpdateLastOnlineAt 更新上次上线时间
	UpdateLastOnlineAt(uuid string, at time.Time) error
	// UpdateLastOfflineAt 更新最近离线时间
	UpdateLastOfflineAt(uuid string, at time.Time) error
	// GetUserList 分页获取用户列表
	GetUserList(page, pageSize int) ([]model.User, int64, error)
	// UpdateUserStatusByUuids 批量更新用户状态（启用/禁用）
	UpdateUserStatusByUuids(uuids []string, status int8) error
	// SoftDeleteUserByUuids 批量软删除用户
	SoftDeleteUserByUuids(uuids []string) error
}

// ChatRepository 会话数据访问接口
// 管理会话及其冗余的最后消息摘要
type ChatRepository interface {
	// FindByUuid 根据 UUID 查找会话
	FindByUuid(uuid string) (*model.Chat, error)
	// FindByUuids 批量根据 UUID 查找会话
	FindByUuids(uuids []string) ([]model.Chat, error)
	// FindByInviteCode 根据邀请码查找群聊
	FindByInviteCode(code string) (*model.Chat, error)
	// FindAssistantByOwner 查找用户的助手会话
	FindAssistantByOwner(ownerId string) (*model.Chat, error)
	// CreateChat 创建新会话
	CreateChat(chat *model.Chat) error
	// UpdateSummary 更新最后消息摘要
	// 带 last_message_id < ? 条件，旧消息的延迟写入不会覆盖新摘要
	UpdateSummary(chatId string, messageId int64, preview, senderId, senderName string, at time.Time) error
	// GetChatList 分页获取会话列表（管理端）
	GetChatList(page, pageSize int) ([]model.Chat, int64, error)
	// SoftDeleteByUuid 软删除会话
	SoftDeleteByUuid(uuid string) error
}

// ParticipantRepository 会话成员数据访问接口
type ParticipantRepository interface {
	// FindMembers 查找会话所有成员
	FindMembers(chatId string) ([]model.ChatParticipant, error)
	// FindMemberIds 查找会话所有成员 UUID
	FindMemberIds(chatId string) ([]string, error)
	// IsMember 判断用户是否为会话成员
	IsMember(chatId, userId string) (bool, error)
	// FindChatIdsByUserId 查找用户加入的所有会话 UUID
	FindChatIdsByUserId(userId string) ([]string, error)
	// CreateParticipant 添加会话成员
	// 重复加入触发唯一索引冲突，返回 CodeConflict
	CreateParticipant(member *model.ChatParticipant) error
	// DeleteParticipant 移除单个会话成员
	DeleteParticipant(chatId, userId string) error
	// DeleteByChatId 删除会话所有成员
	DeleteByChatId(chatId string) error
}

// CursorRepository 已读游标数据访问接口
type CursorRepository interface {
	// FindCursor 查找用户在会话里的已读游标，没有返回 CodeNotFound
	FindCursor(chatId, userId string) (*model.ReadCursor, error)
	// FindCursors 查找会话所有成员的已读游标
	FindCursors(chatId string) ([]model.ReadCursor, error)
	// FindCursorsByUserId 查找用户在所有会话的已读游标（会话列表算未读数用）
	FindCursorsByUserId(userId string) ([]model.ReadCursor, error)
	// AdvanceCursor 推进已读游标
	// 不存在则插入；存在则带 last_read_at <= ? 条件更新，游标只前进不后退
	AdvanceCursor(cursor *model.ReadCursor) error
	// DeleteByChatId 删除会话所有游标
	DeleteByChatId(chatId string) error
}

// MessageRepository 消息数据访问接口
type MessageRepository interface {
	// FindByUuid 根据雪花 ID 查找消息
	FindByUuid(uuid int64) (*model.Message, error)
	// FindPageBefore 游标分页查询
	// 返回 uuid < before 的最新 limit 条，按 uuid 倒序
	// before 为 0 时从最新一条开始
	FindPageBefore(chatId string, before int64, limit int) ([]model.Message, error)
	// CountAfter 统计会话中 send_at 晚于指定时间的消息数
	CountAfter(chatId string, after time.Time) (int64, error)
	// CountByChatId 统计会话消息总数
	CountByChatId(chatId string) (int64, error)
	// LikesTotalByChatId 统计会话内所有消息的点赞总数
	LikesTotalByChatId(chatId string) (int64, error)
	// CountByMetadataKey 统计会话内 metadata 含指定键的消息数
	CountByMetadataKey(chatId string, key string) (int64, error)
	// Create 创建新消息
	Create(message *model.Message) error
	// IncrementLikes 点赞数增减，delta 为 +1 或 -1
	IncrementLikes(uuid int64, delta int) error
	// GetMessageList 分页获取消息列表（管理端）
	GetMessageList(page, pageSize int) ([]model.Message, int64, error)
	// FindUuidsByChatId 查找会话所有消息的雪花 ID（级联删除用）
	FindUuidsByChatId(chatId string) ([]int64, error)
	// DeleteByChatId 删除会话所有消息
	DeleteByChatId(chatId string) error
	// DeleteByUuid 删除单条消息（管理端）
	DeleteByUuid(uuid int64) error
}

// LikeRepository 消息点赞数据访问接口
type LikeRepository interface {
	// Exists 判断用户是否已赞
	Exists(messageId int64, userId string) (bool, error)
	// CreateLike 点赞
	CreateLike(like *model.MessageLike) error
	// DeleteLike 取消点赞
	DeleteLike(messageId int64, userId string) error
	// FindUserIdsByMessageId 查找消息的点赞用户列表
	FindUserIdsByMessageId(messageId int64) ([]string, error)
	// FindByMessageIds 批量查找多条消息的点赞记录
	FindByMessageIds(messageIds []int64) ([]model.MessageLike, error)
	// DeleteByMessageIds 批量删除点赞记录（级联删除用）
	DeleteByMessageIds(messageIds []int64) error
}

// AttachmentRepository 消息附件数据访问接口
type AttachmentRepository interface {
	// CreateAttachments 批量创建附件记录
	CreateAttachments(attachments []model.Attachment) error
	// FindByMessageId 查找消息的附件
	FindByMessageId(messageId int64) ([]model.Attachment, error)
	// FindByMessageIds 批量查找多条消息的附件
	FindByMessageIds(messageIds []int64) ([]model.Attachment, error)
	// DeleteByMessageIds 批量删除附件记录（级联删除用）
	DeleteByMessageIds(messageIds []int64) error
}

// VerificationRepository 手机验证码数据访问接口
type VerificationRepository interface {
	// SaveCode 保存验证码，同手机号覆盖旧记录
	SaveCode(telephone, code string, expiresAt time.Time) error
	// FindByTelephone 查找手机号的验证码记录
	FindByTelephone(telephone string) (*model.PhoneVerification, error)
	// IncrementAttempts 累加校验次数
	IncrementAttempts(telephone string) error
	// DeleteByTelephone 删除验证码记录（校验通过后清理）
	DeleteByTelephone(telephone string) error
}
