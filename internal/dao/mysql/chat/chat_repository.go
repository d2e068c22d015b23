// Package chat 提供会话相关数据访问层的具体实现
// 本文件实现 ChatRepository 接口，处理会话及其最后消息摘要的数据库操作
package chat

import (
	"time"

	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"

	"gorm.io/gorm"
)

// chatRepository ChatRepository 接口的实现
type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository 创建 ChatRepository 实例
func NewChatRepository(db *gorm.DB) *chatRepository {
	return &chatRepository{db: db}
}

// FindByUuid 根据 UUID 查找会话
func (r *chatRepository) FindByUuid(uuid string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("uuid = ?", uuid).First(&chat).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询会话 uuid=%s", uuid)
	}
	return &chat, nil
}

// FindByUuids 批量根据 UUID 查找会话
// 按最后消息时间倒序排列，没有消息的会话排在最后
func (r *chatRepository) FindByUuids(uuids []string) ([]model.Chat, error) {
	var chats []model.Chat
	if len(uuids) == 0 {
		return chats, nil
	}
	if err := r.db.Where("uuid IN ?", uuids).
		Order("last_message_at DESC").Find(&chats).Error; err != nil {
		return nil, internal.WrapDBError(err, "批量查询会话")
	}
	return chats, nil
}

// FindByInviteCode 根据邀请码查找群聊
func (r *chatRepository) FindByInviteCode(code string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("invite_code = ? AND kind = ?", code, model.ChatKindGroup).
		First(&chat).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询群聊 invite_code=%s", code)
	}
	return &chat, nil
}

// FindAssistantByOwner 查找用户的助手会话
func (r *chatRepository) FindAssistantByOwner(ownerId string) (*model.Chat, error) {
	var chat model.Chat
	if err := r.db.Where("owner_id = ? AND kind = ?", ownerId, model.ChatKindAssistant).
		First(&chat).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询助手会话 owner_id=%s", ownerId)
	}
	return &chat, nil
}

// CreateChat 创建新会话
func (r *chatRepository) CreateChat(chat *model.Chat) error {
	if err := r.db.Create(chat).Error; err != nil {
		return internal.WrapDBError(err, "创建会话")
	}
	return nil
}

// UpdateSummary 更新最后消息摘要
// 消息雪花 ID 随时间单调递增，条件 last_message_id < ? 保证
// 并发写入时摘要最终落在最新的那条消息上，旧消息的延迟提交不会回退摘要
func (r *chatRepository) UpdateSummary(chatId string, messageId int64, preview, senderId, senderName string, at time.Time) error {
	if err := r.db.Model(&model.Chat{}).
		Where("uuid = ? AND last_message_id < ?", chatId, messageId).
		Updates(map[string]any{
			"last_message_id":      messageId,
			"last_message_preview": preview,
			"last_sender_id":       senderId,
			"last_sender_name":     senderName,
			"last_message_at":      at,
		}).Error; err != nil {
		return internal.WrapDBErrorf(err, "更新会话摘要 chat_id=%s", chatId)
	}
	return nil
}

// GetChatList 分页获取会话列表（管理端）
// 返回: 会话列表、总数和错误
func (r *chatRepository) GetChatList(page, pageSize int) ([]model.Chat, int64, error) {
	var chats []model.Chat
	var total int64
	if err := r.db.Model(&model.Chat{}).Count(&total).Error; err != nil {
		return nil, 0, internal.WrapDBError(err, "统计会话总数")
	}
	offset := (page - 1) * pageSize
	if err := r.db.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&chats).Error; err != nil {
		return nil, 0, internal.WrapDBError(err, "分页查询会话")
	}
	return chats, total, nil
}

// SoftDeleteByUuid 软删除会话
func (r *chatRepository) SoftDeleteByUuid(uuid string) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Chat{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "删除会话 uuid=%s", uuid)
	}
	return nil
}
