// Package model 定义数据库实体模型
// 本文件定义消息模型，用于存储聊天消息
package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 消息类型
const (
	MessageKindText   = "text"   // 普通文本消息
	MessageKindAI     = "ai"     // AI 助手回复
	MessageKindSystem = "system" // 系统消息，如入群提示
)

// Message 消息模型
// 对应数据库 message 表
type Message struct {
	gorm.Model

	// Uuid 消息唯一标识
	// 雪花算法生成的 int64，随时间单调递增，同时充当分页游标
	Uuid int64 `gorm:"column:uuid;uniqueIndex;index:idx_chat_uuid,priority:2;type:bigint;not null;comment:消息雪花ID"`

	// ChatId 会话 UUID
	// 与 Uuid 建联合索引，按会话倒序翻页走索引
	ChatId string `gorm:"column:chat_id;index:idx_chat_uuid,priority:1;index:idx_chat_send,priority:1;type:char(20);not null;comment:会话uuid"`

	// SenderId 发送者 UUID
	// 服务注入的消息（如 AI Agent）发送者可能不是真实用户
	SenderId string `gorm:"column:sender_id;index;type:char(20);not null;comment:发送者uuid"`

	// SenderName 发送者昵称
	// 冗余存储，避免每次查询消息时都要关联用户表
	SenderName string `gorm:"column:sender_name;type:varchar(30);not null;comment:发送者昵称"`

	// Kind 消息类型：text, ai, system
	Kind string `gorm:"column:kind;type:char(10);not null;comment:消息类型"`

	// Content 消息文本内容
	Content string `gorm:"column:content;type:TEXT;comment:消息内容"`

	// LikesCount 点赞数
	// 冗余计数，真实点赞关系在 message_like 表，切换点赞时同事务内增减
	LikesCount int `gorm:"column:likes_count;not null;default:0;comment:点赞数"`

	// Metadata 扩展元数据
	// JSON 对象，如 AI 消息带 {"meetUrl": "..."}，可为 null
	Metadata datatypes.JSONMap `gorm:"column:metadata;comment:扩展元数据"`

	// SendAt 发送时间
	// 与 ChatId 建联合索引，未读数统计按 send_at 范围查询
	SendAt time.Time `gorm:"column:send_at;index:idx_chat_send,priority:2;type:datetime(3);not null;comment:发送时间"`
}

// TableName 指定表名
func (Message) TableName() string {
	return "message"
}
