// Package model 定义数据库实体模型
// 本文件定义用户信息模型，包含用户基本资料和认证信息
package model

import (
	"database/sql"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User 用户模型
// 对应数据库 user 表
type User struct {
	gorm.Model // 内嵌 GORM 模型，包含 ID、CreatedAt、UpdatedAt、DeletedAt

	// Uuid 用户唯一标识
	// 格式：U + 13位时间戳随机字符串，如 "U2024010412345678"
	Uuid string `gorm:"column:uuid;uniqueIndex;type:char(20);comment:用户唯一id"`

	// Nickname 用户昵称，消息冗余字段的来源
	Nickname string `gorm:"column:nickname;type:varchar(30);not null;comment:昵称"`

	// Telephone 手机号码
	// 用于登录验证，建立索引加速查询
	Telephone string `gorm:"column:telephone;index;not null;type:char(11);comment:电话"`

	// Email 邮箱地址（可选），可用于密码登录
	// 不加唯一索引，空串会在索引上互相冲突，查重在 service 层做
	Email string `gorm:"column:email;index;type:char(50);comment:邮箱"`

	// Avatar 用户头像 URL
	Avatar string `gorm:"column:avatar;type:varchar(255);comment:头像"`

	// Password 密码的 bcrypt 哈希
	// 哈希由 service 层显式完成，模型不做隐式加密
	Password string `gorm:"column:password;type:varchar(100);not null;comment:密码"`

	// PushToken 推送设备令牌
	// 敏感字段，入库前由仓储层用 AES-GCM 加密
	PushToken string `gorm:"column:push_token;type:varchar(512);comment:推送令牌"`

	// LastOnlineAt 上次上线时间
	LastOnlineAt sql.NullTime `gorm:"column:last_online_at;type:datetime;comment:上次上线时间"`

	// LastOfflineAt 最近离线时间
	LastOfflineAt sql.NullTime `gorm:"column:last_offline_at;type:datetime;comment:最近离线时间"`

	// IsAdmin 管理员标志
	// 0=普通用户, 1=管理员
	IsAdmin int8 `gorm:"column:is_admin;not null;comment:是否是管理员，0.不是，1.是"`

	// Status 账号状态
	// 0=正常, 1=禁用
	Status int8 `gorm:"column:status;index;not null;comment:状态，0.正常，1.禁用"`
}

// TableName 指定表名
func (User) TableName() string {
	return "user"
}

// CheckPassword 校验密码是否正确
// plaintext: 用户输入的明文密码
func (u *User) CheckPassword(plaintext string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext))
	return err == nil
}
