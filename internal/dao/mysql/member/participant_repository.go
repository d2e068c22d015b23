// Package member 提供会话成员和已读游标数据访问层的具体实现
// 本文件实现 ParticipantRepository 接口
package member

import (
	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"

	"gorm.io/gorm"
)

// participantRepository ParticipantRepository 接口的实现
type participantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository 创建 ParticipantRepository 实例
func NewParticipantRepository(db *gorm.DB) *participantRepository {
	return &participantRepository{db: db}
}

// FindMembers 查找会话所有成员
func (r *participantRepository) FindMembers(chatId string) ([]model.ChatParticipant, error) {
	var members []model.ChatParticipant
	if err := r.db.Where("chat_id = ?", chatId).Order("joined_at ASC").Find(&members).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询会话成员 chat_id=%s", chatId)
	}
	return members, nil
}

// FindMemberIds 查找会话所有成员 UUID
func (r *participantRepository) FindMemberIds(chatId string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.ChatParticipant{}).Where("chat_id = ?", chatId).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询成员uuid chat_id=%s", chatId)
	}
	return ids, nil
}

// IsMember 判断用户是否为会话成员
func (r *participantRepository) IsMember(chatId, userId string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.ChatParticipant{}).
		Where("chat_id = ? AND user_id = ?", chatId, userId).Count(&count).Error; err != nil {
		return false, internal.WrapDBErrorf(err, "查询成员身份 chat_id=%s user_id=%s", chatId, userId)
	}
	return count > 0, nil
}

// FindChatIdsByUserId 查找用户加入的所有会话 UUID
func (r *participantRepository) FindChatIdsByUserId(userId string) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.ChatParticipant{}).Where("user_id = ?", userId).
		Pluck("chat_id", &ids).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询用户会话 user_id=%s", userId)
	}
	return ids, nil
}

// CreateParticipant 添加会话成员
// (chat_id, user_id) 唯一索引，重复加入返回 CodeConflict
func (r *participantRepository) CreateParticipant(member *model.ChatParticipant) error {
	if err := r.db.Create(member).Error; err != nil {
		return internal.WrapDBErrorf(err, "添加成员 chat_id=%s user_id=%s", member.ChatId, member.UserId)
	}
	return nil
}

// DeleteParticipant 移除单个会话成员
func (r *participantRepository) DeleteParticipant(chatId, userId string) error {
	if err := r.db.Where("chat_id = ? AND user_id = ?", chatId, userId).
		Delete(&model.ChatParticipant{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "移除成员 chat_id=%s user_id=%s", chatId, userId)
	}
	return nil
}

// DeleteByChatId 删除会话所有成员
func (r *participantRepository) DeleteByChatId(chatId string) error {
	if err := r.db.Where("chat_id = ?", chatId).Delete(&model.ChatParticipant{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "删除会话成员 chat_id=%s", chatId)
	}
	return nil
}
