// Package model 定义数据库实体模型
// 本文件定义消息附件模型
package model

import "gorm.io/gorm"

// Attachment 消息附件模型
// 对应数据库 attachment 表
// 附件文件本体存在静态目录或对象存储，这里只存访问链接和元信息
type Attachment struct {
	gorm.Model

	// MessageId 所属消息的雪花 ID
	MessageId int64 `gorm:"column:message_id;index;type:bigint;not null;comment:消息雪花ID"`

	// Url 附件访问链接
	Url string `gorm:"column:url;type:varchar(255);not null;comment:附件url"`

	// FileType 文件 MIME 类型，如 "image/jpeg"
	FileType string `gorm:"column:file_type;type:char(50);comment:文件类型"`

	// FileName 文件名
	FileName string `gorm:"column:file_name;type:varchar(100);comment:文件名"`

	// FileSize 文件大小（字节）
	FileSize int64 `gorm:"column:file_size;comment:文件大小"`
}

// TableName 指定表名
func (Attachment) TableName() string {
	return "attachment"
}
