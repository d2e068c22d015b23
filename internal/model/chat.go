// Package model 定义数据库实体模型
// 本文件定义会话模型，单聊、群聊、助手会话统一用一张表
package model

import (
	"database/sql"

	"gorm.io/gorm"
)

// 会话类型
const (
	ChatKindDirect    = "direct"    // 单聊
	ChatKindGroup     = "group"     // 群聊
	ChatKindAssistant = "assistant" // AI 助手会话
)

// Chat 会话模型
// 对应数据库 chat 表
// 冗余存储最后一条消息的摘要信息，会话列表查询不需要回表到 message
type Chat struct {
	gorm.Model

	// Uuid 会话唯一标识
	// 格式：C + 13位时间戳随机字符串
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:会话唯一id"`

	// Name 会话名称
	// 单聊时为空，展示名由客户端取对端昵称
	Name string `gorm:"column:name;type:varchar(50);comment:会话名称"`

	// Kind 会话类型：direct, group, assistant
	Kind string `gorm:"column:kind;index;type:char(10);not null;comment:会话类型"`

	// Avatar 会话头像 URL，群聊使用
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:会话头像"`

	// OwnerId 创建者 UUID
	OwnerId string `gorm:"column:owner_id;index;type:char(20);not null;comment:创建者uuid"`

	// InviteCode 群邀请码
	// 6 位大写字母数字，唯一索引保证不重复
	// 仅群聊会话有值，非群聊存 NULL，空串会在唯一索引上互相撞车
	InviteCode *string `gorm:"column:invite_code;uniqueIndex;type:char(6);comment:群邀请码"`

	// LastMessageId 最后一条消息的雪花 ID
	// 雪花 ID 随时间单调递增，摘要更新时用它做条件更新防止乱序回退
	LastMessageId int64 `gorm:"column:last_message_id;type:bigint;not null;default:0;comment:最后消息雪花ID"`

	// LastMessagePreview 最后一条消息的内容摘要
	LastMessagePreview string `gorm:"column:last_message_preview;type:varchar(255);comment:最后消息摘要"`

	// LastSenderId 最后一条消息的发送者 UUID
	LastSenderId string `gorm:"column:last_sender_id;type:char(20);comment:最后发送者uuid"`

	// LastSenderName 最后一条消息的发送者昵称
	LastSenderName string `gorm:"column:last_sender_name;type:varchar(30);comment:最后发送者昵称"`

	// LastMessageAt 最后一条消息的时间，会话列表按此倒序
	LastMessageAt sql.NullTime `gorm:"column:last_message_at;index;type:datetime;comment:最后消息时间"`
}

// TableName 指定表名
func (Chat) TableName() string {
	return "chat"
}
