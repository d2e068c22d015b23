// Package model 定义数据库实体模型
// 本文件定义会话成员模型
package model

import (
	"time"

	"gorm.io/gorm"
)

// 成员角色
const (
	ParticipantRoleOwner  = "owner"  // 群主/创建者
	ParticipantRoleMember = "member" // 普通成员
)

// ChatParticipant 会话成员模型
// 对应数据库 chat_participant 表
// (chat_id, user_id) 唯一索引，重复加入依赖该约束做幂等
type ChatParticipant struct {
	gorm.Model

	// ChatId 会话 UUID
	ChatId string `gorm:"column:chat_id;uniqueIndex:idx_chat_user;type:char(20);not null;comment:会话uuid"`

	// UserId 成员 UUID
	UserId string `gorm:"column:user_id;uniqueIndex:idx_chat_user;index;type:char(20);not null;comment:成员uuid"`

	// Role 成员角色：owner, member
	Role string `gorm:"column:role;type:char(10);not null;comment:成员角色"`

	// JoinedAt 加入时间
	JoinedAt time.Time `gorm:"column:joined_at;type:datetime;not null;comment:加入时间"`
}

// TableName 指定表名
func (ChatParticipant) TableName() string {
	return "chat_participant"
}
