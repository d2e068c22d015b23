// Package model 定义数据库实体模型
// 本文件定义已读游标模型，记录每个成员在每个会话里读到哪了
package model

import (
	"time"

	"gorm.io/gorm"
)

// ReadCursor 已读游标模型
// 对应数据库 read_cursor 表
// (chat_id, user_id) 唯一，更新时带 last_read_at <= ? 条件保证只前进不后退
type ReadCursor struct {
	gorm.Model

	// ChatId 会话 UUID
	ChatId string `gorm:"column:chat_id;uniqueIndex:idx_cursor_chat_user;type:char(20);not null;comment:会话uuid"`

	// UserId 成员 UUID
	UserId string `gorm:"column:user_id;uniqueIndex:idx_cursor_chat_user;index;type:char(20);not null;comment:成员uuid"`

	// LastReadMessageId 最后已读消息的雪花 ID
	LastReadMessageId int64 `gorm:"column:last_read_message_id;type:bigint;not null;comment:最后已读消息雪花ID"`

	// LastReadAt 最后已读消息的发送时间，未读数按它统计
	LastReadAt time.Time `gorm:"column:last_read_at;type:datetime;not null;comment:最后已读时间"`
}

// TableName 指定表名
func (ReadCursor) TableName() string {
	return "read_cursor"
}
