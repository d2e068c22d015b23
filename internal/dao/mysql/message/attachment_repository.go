// Package message 提供消息、点赞、附件数据访问层的具体实现
// 本文件实现 AttachmentRepository 接口
package message

import (
	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"

	"gorm.io/gorm"
)

// attachmentRepository AttachmentRepository 接口的实现
type attachmentRepository struct {
	db *gorm.DB
}

// NewAttachmentRepository 创建 AttachmentRepository 实例
func NewAttachmentRepository(db *gorm.DB) *attachmentRepository {
	return &attachmentRepository{db: db}
}

// CreateAttachments 批量创建附件记录
func (r *attachmentRepository) CreateAttachments(attachments []model.Attachment) error {
	if len(attachments) == 0 {
		return nil
	}
	if err := r.db.Create(&attachments).Error; err != nil {
		return internal.WrapDBError(err, "创建附件")
	}
	return nil
}

// FindByMessageId 查找消息的附件
func (r *attachmentRepository) FindByMessageId(messageId int64) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if err := r.db.Where("message_id = ?", messageId).Find(&attachments).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询附件 message_id=%d", messageId)
	}
	return attachments, nil
}

// FindByMessageIds 批量查找多条消息的附件
func (r *attachmentRepository) FindByMessageIds(messageIds []int64) ([]model.Attachment, error) {
	var attachments []model.Attachment
	if len(messageIds) == 0 {
		return attachments, nil
	}
	if err := r.db.Where("message_id IN ?", messageIds).Find(&attachments).Error; err != nil {
		return nil, internal.WrapDBError(err, "批量查询附件")
	}
	return attachments, nil
}

// DeleteByMessageIds 批量删除附件记录（级联删除用）
func (r *attachmentRepository) DeleteByMessageIds(messageIds []int64) error {
	if len(messageIds) == 0 {
		return nil
	}
	if err := r.db.Where("message_id IN ?", messageIds).
		Delete(&model.Attachment{}).Error; err != nil {
		return internal.WrapDBError(err, "批量删除附件")
	}
	return nil
}
