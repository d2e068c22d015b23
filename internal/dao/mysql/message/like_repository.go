// Package message 提供消息、点赞、附件数据访问层的具体实现
// 本文件实现 LikeRepository 接口
package message

import (
	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"

	"gorm.io/gorm"
)

// likeRepository LikeRepository 接口的实现
type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository 创建 LikeRepository 实例
func NewLikeRepository(db *gorm.DB) *likeRepository {
	return &likeRepository{db: db}
}

// Exists 判断用户是否已赞
func (r *likeRepository) Exists(messageId int64, userId string) (bool, error) {
	var count int64
	if err := r.db.Model(&model.MessageLike{}).
		Where("message_id = ? AND user_id = ?", messageId, userId).
		Count(&count).Error; err != nil {
		return false, internal.WrapDBErrorf(err, "查询点赞 message_id=%d user_id=%s", messageId, userId)
	}
	return count > 0, nil
}

// CreateLike 点赞
// (message_id, user_id) 唯一索引，重复点赞返回 CodeConflict
func (r *likeRepository) CreateLike(like *model.MessageLike) error {
	if err := r.db.Create(like).Error; err != nil {
		return internal.WrapDBErrorf(err, "点赞 message_id=%d user_id=%s", like.MessageId, like.UserId)
	}
	return nil
}

// DeleteLike 取消点赞
func (r *likeRepository) DeleteLike(messageId int64, userId string) error {
	if err := r.db.Where("message_id = ? AND user_id = ?", messageId, userId).
		Delete(&model.MessageLike{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "取消点赞 message_id=%d user_id=%s", messageId, userId)
	}
	return nil
}

// FindUserIdsByMessageId 查找消息的点赞用户列表
func (r *likeRepository) FindUserIdsByMessageId(messageId int64) ([]string, error) {
	var ids []string
	if err := r.db.Model(&model.MessageLike{}).Where("message_id = ?", messageId).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询点赞用户 message_id=%d", messageId)
	}
	return ids, nil
}

// FindByMessageIds 批量查找多条消息的点赞记录
// 消息列表页用它一次取全，避免逐条查询
func (r *likeRepository) FindByMessageIds(messageIds []int64) ([]model.MessageLike, error) {
	var likes []model.MessageLike
	if len(messageIds) == 0 {
		return likes, nil
	}
	if err := r.db.Where("message_id IN ?", messageIds).Find(&likes).Error; err != nil {
		return nil, internal.WrapDBError(err, "批量查询点赞")
	}
	return likes, nil
}

// DeleteByMessageIds 批量删除点赞记录（级联删除用）
func (r *likeRepository) DeleteByMessageIds(messageIds []int64) error {
	if len(messageIds) == 0 {
		return nil
	}
	if err := r.db.Where("message_id IN ?", messageIds).
		Delete(&model.MessageLike{}).Error; err != nil {
		return internal.WrapDBError(err, "批量删除点赞")
	}
	return nil
}
