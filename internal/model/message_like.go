// Package model 定义数据库实体模型
// 本文件定义消息点赞模型
package model

import "gorm.io/gorm"

// MessageLike 消息点赞模型
// 对应数据库 message_like 表
// (message_id, user_id) 唯一索引，切换点赞即删一行或插一行
type MessageLike struct {
	gorm.Model

	// MessageId 消息雪花 ID
	MessageId int64 `gorm:"column:message_id;uniqueIndex:idx_like_msg_user;type:bigint;not null;comment:消息雪花ID"`

	// UserId 点赞用户 UUID
	UserId string `gorm:"column:user_id;uniqueIndex:idx_like_msg_user;type:char(20);not null;comment:点赞用户uuid"`
}

// TableName 指定表名
func (MessageLike) TableName() string {
	return "message_like"
}
