// Package message 提供消息、点赞、附件数据访问层的具体实现
// 本文件实现 MessageRepository 接口，处理消息相关的数据库操作
package message

import (
	"time"

	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// messageRepository MessageRepository 接口的实现
type messageRepository struct {
	db *gorm.DB
}

// NewMessageRepository 创建 MessageRepository 实例
// db: GORM 数据库实例
// 返回: MessageRepository 接口实现
func NewMessageRepository(db *gorm.DB) *messageRepository {
	return &messageRepository{db: db}
}

// FindByUuid 根据雪花 ID 查找消息
func (r *messageRepository) FindByUuid(uuid int64) (*model.Message, error) {
	var message model.Message
	if err := r.db.Where("uuid = ?", uuid).First(&message).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询消息 uuid=%d", uuid)
	}
	return &message, nil
}

// FindPageBefore 游标分页查询
// 取 uuid < before 的最新 limit 条，按 uuid 倒序返回
// 雪花 ID 随时间单调递增，游标翻页等价于按时间向前翻
// before 为 0 时从最新一条开始
func (r *messageRepository) FindPageBefore(chatId string, before int64, limit int) ([]model.Message, error) {
	var messages []model.Message
	q := r.db.Where("chat_id = ?", chatId)
	if before > 0 {
		q = q.Where("uuid < ?", before)
	}
	if err := q.Order("uuid DESC").Limit(limit).Find(&messages).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "分页查询消息 chat_id=%s before=%d", chatId, before)
	}
	return messages, nil
}

// CountAfter 统计会话中 send_at 晚于指定时间的消息数
// 未读数 = 晚于已读游标时间的消息数
func (r *messageRepository) CountAfter(chatId string, after time.Time) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).
		Where("chat_id = ? AND send_at > ?", chatId, after).Count(&count).Error; err != nil {
		return 0, internal.WrapDBErrorf(err, "统计未读消息 chat_id=%s", chatId)
	}
	return count, nil
}

// CountByChatId 统计会话消息总数
func (r *messageRepository) CountByChatId(chatId string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).Where("chat_id = ?", chatId).
		Count(&count).Error; err != nil {
		return 0, internal.WrapDBErrorf(err, "统计消息总数 chat_id=%s", chatId)
	}
	return count, nil
}

// LikesTotalByChatId 统计会话内所有消息的点赞总数
// 直接对冗余计数求和，不回 message_like 表
func (r *messageRepository) LikesTotalByChatId(chatId string) (int64, error) {
	var total int64
	if err := r.db.Model(&model.Message{}).Where("chat_id = ?", chatId).
		Select("COALESCE(SUM(likes_count), 0)").Scan(&total).Error; err != nil {
		return 0, internal.WrapDBErrorf(err, "统计点赞总数 chat_id=%s", chatId)
	}
	return total, nil
}

// CountByMetadataKey 统计会话内 metadata 含指定键的消息数
// 用 JSON 查询直接在数据库里过滤，如 meetUrl 键统计会议次数
func (r *messageRepository) CountByMetadataKey(chatId string, key string) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).
		Where("chat_id = ?", chatId).
		Where(datatypes.JSONQuery("metadata").HasKey(key)).
		Count(&count).Error; err != nil {
		return 0, internal.WrapDBErrorf(err, "统计元数据消息 chat_id=%s key=%s", chatId, key)
	}
	return count, nil
}

// Create 创建新消息
func (r *messageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return internal.WrapDBError(err, "创建消息")
	}
	return nil
}

// IncrementLikes 点赞数增减
// delta: +1 或 -1，与 message_like 表的插入/删除在同一事务内执行
func (r *messageRepository) IncrementLikes(uuid int64, delta int) error {
	if err := r.db.Model(&model.Message{}).Where("uuid = ?", uuid).
		Update("likes_count", gorm.Expr("likes_count + ?", delta)).Error; err != nil {
		return internal.WrapDBErrorf(err, "更新点赞数 uuid=%d", uuid)
	}
	return nil
}

// GetMessageList 分页获取消息列表（管理端）
// 返回: 消息列表、总数和错误
func (r *messageRepository) GetMessageList(page, pageSize int) ([]model.Message, int64, error) {
	var messages []model.Message
	var total int64
	if err := r.db.Model(&model.Message{}).Count(&total).Error; err != nil {
		return nil, 0, internal.WrapDBError(err, "统计消息总数")
	}
	offset := (page - 1) * pageSize
	if err := r.db.Order("uuid DESC").Offset(offset).Limit(pageSize).Find(&messages).Error; err != nil {
		return nil, 0, internal.WrapDBError(err, "分页查询消息")
	}
	return messages, total, nil
}

// FindUuidsByChatId 查找会话所有消息的雪花 ID
// 级联删除时先取 ID 再清点赞和附件
func (r *messageRepository) FindUuidsByChatId(chatId string) ([]int64, error) {
	var uuids []int64
	if err := r.db.Model(&model.Message{}).Where("chat_id = ?", chatId).
		Pluck("uuid", &uuids).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询消息uuid chat_id=%s", chatId)
	}
	return uuids, nil
}

// DeleteByChatId 删除会话所有消息
func (r *messageRepository) DeleteByChatId(chatId string) error {
	if err := r.db.Where("chat_id = ?", chatId).Delete(&model.Message{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "删除会话消息 chat_id=%s", chatId)
	}
	return nil
}

// DeleteByUuid 删除单条消息（管理端）
func (r *messageRepository) DeleteByUuid(uuid int64) error {
	if err := r.db.Where("uuid = ?", uuid).Delete(&model.Message{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "删除消息 uuid=%d", uuid)
	}
	return nil
}
