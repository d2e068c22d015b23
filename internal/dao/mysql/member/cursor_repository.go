// Package member 提供会话成员和已读游标数据访问层的具体实现
// 本文件实现 CursorRepository 接口
package member

import (
	"errors"

	"kyte_chat_server/internal/dao/mysql/internal"
	"kyte_chat_server/internal/model"

	"gorm.io/gorm"
)

// cursorRepository CursorRepository 接口的实现
type cursorRepository struct {
	db *gorm.DB
}

// NewCursorRepository 创建 CursorRepository 实例
func NewCursorRepository(db *gorm.DB) *cursorRepository {
	return &cursorRepository{db: db}
}

// FindCursor 查找用户在会话里的已读游标
func (r *cursorRepository) FindCursor(chatId, userId string) (*model.ReadCursor, error) {
	var cursor model.ReadCursor
	if err := r.db.Where("chat_id = ? AND user_id = ?", chatId, userId).
		First(&cursor).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询已读游标 chat_id=%s user_id=%s", chatId, userId)
	}
	return &cursor, nil
}

// FindCursors 查找会话所有成员的已读游标
func (r *cursorRepository) FindCursors(chatId string) ([]model.ReadCursor, error) {
	var cursors []model.ReadCursor
	if err := r.db.Where("chat_id = ?", chatId).Find(&cursors).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询会话游标 chat_id=%s", chatId)
	}
	return cursors, nil
}

// FindCursorsByUserId 查找用户在所有会话的已读游标
func (r *cursorRepository) FindCursorsByUserId(userId string) ([]model.ReadCursor, error) {
	var cursors []model.ReadCursor
	if err := r.db.Where("user_id = ?", userId).Find(&cursors).Error; err != nil {
		return nil, internal.WrapDBErrorf(err, "查询用户游标 user_id=%s", userId)
	}
	return cursors, nil
}

// AdvanceCursor 推进已读游标
// 更新条件带 last_read_at <= ?，并发标记已读时游标只会前进
// 两个请求乱序到达，旧的那个更新不到任何行，静默吞掉
func (r *cursorRepository) AdvanceCursor(cursor *model.ReadCursor) error {
	res := r.db.Model(&model.ReadCursor{}).
		Where("chat_id = ? AND user_id = ? AND last_read_at <= ?",
			cursor.ChatId, cursor.UserId, cursor.LastReadAt).
		Updates(map[string]any{
			"last_read_message_id": cursor.LastReadMessageId,
			"last_read_at":         cursor.LastReadAt,
		})
	if res.Error != nil {
		return internal.WrapDBErrorf(res.Error, "推进已读游标 chat_id=%s user_id=%s", cursor.ChatId, cursor.UserId)
	}
	if res.RowsAffected > 0 {
		return nil
	}

	// 没更新到行：要么游标不存在，要么已经更靠前
	var count int64
	if err := r.db.Model(&model.ReadCursor{}).
		Where("chat_id = ? AND user_id = ?", cursor.ChatId, cursor.UserId).
		Count(&count).Error; err != nil {
		return internal.WrapDBError(err, "查询已读游标")
	}
	if count > 0 {
		return nil
	}
	if err := r.db.Create(cursor).Error; err != nil {
		// 并发首次标记时另一个请求先插入了，按已存在处理
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return internal.WrapDBError(err, "创建已读游标")
	}
	return nil
}

// DeleteByChatId 删除会话所有游标
func (r *cursorRepository) DeleteByChatId(chatId string) error {
	if err := r.db.Where("chat_id = ?", chatId).Delete(&model.ReadCursor{}).Error; err != nil {
		return internal.WrapDBErrorf(err, "删除会话游标 chat_id=%s", chatId)
	}
	return nil
}
