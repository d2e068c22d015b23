// Package model 定义数据库实体模型
// 本文件定义手机验证码模型
package model

import (
	"time"

	"gorm.io/gorm"
)

// PhoneVerification 手机验证码模型
// 对应数据库 phone_verification 表
// 每个手机号只保留最新一条，重发即覆盖
type PhoneVerification struct {
	gorm.Model

	// Telephone 手机号码
	Telephone string `gorm:"column:telephone;uniqueIndex;type:char(11);not null;comment:手机号"`

	// Code 6 位数字验证码
	Code string `gorm:"column:code;type:char(6);not null;comment:验证码"`

	// Attempts 已校验次数，超过上限后验证码作废
	Attempts int `gorm:"column:attempts;not null;default:0;comment:已校验次数"`

	// ExpiresAt 过期时间
	ExpiresAt time.Time `gorm:"column:expires_at;type:datetime;not null;comment:过期时间"`
}

// TableName 指定表名
func (PhoneVerification) TableName() string {
	return "phone_verification"
}
