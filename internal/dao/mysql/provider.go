// Package mysql 提供 Repository 层聚合与构造
package mysql

import (
	"gorm.io/gorm"

	"kyte_chat_server/internal/dao/mysql/chat"
	"kyte_chat_server/internal/dao/mysql/member"
	"kyte_chat_server/internal/dao/mysql/message"
	"kyte_chat_server/internal/dao/mysql/user"
	"kyte_chat_server/internal/dao/mysql/verification"
	"kyte_chat_server/pkg/aes"
)

// Repositories 聚合所有 Repository 实例
// 作为依赖注入的入口，Service 层通过此结构访问数据层
type Repositories struct {
	db           *gorm.DB   // GORM 数据库实例
	codec        *aes.Codec // 敏感字段加解密编解码器
	User         UserRepository
	Chat         ChatRepository
	Participant  ParticipantRepository
	Cursor       CursorRepository
	Message      MessageRepository
	Like         LikeRepository
	Attachment   AttachmentRepository
	Verification VerificationRepository
}

// NewRepositories 创建所有 Repository 实例
// db: GORM 数据库实例
// codec: 敏感字段加解密编解码器，用户仓储用它加密推送令牌
// 返回: Repositories 聚合指针
func NewRepositories(db *gorm.DB, codec *aes.Codec) *Repositories {
	return &Repositories{
		db:           db,
		codec:        codec,
		User:         user.NewUserRepository(db, codec),
		Chat:         chat.NewChatRepository(db),
		Participant:  member.NewParticipantRepository(db),
		Cursor:       member.NewCursorRepository(db),
		Message:      message.NewMessageRepository(db),
		Like:         message.NewLikeRepository(db),
		Attachment:   message.NewAttachmentRepository(db),
		Verification: verification.NewVerificationRepository(db),
	}
}

// Transaction 在数据库事务中执行函数
// 事务内的所有操作要么全部成功，要么全部回滚
// fn: 事务执行函数，接收事务内的 Repositories 实例
// 返回: 操作错误（如有错误会自动回滚）
func (r *Repositories) Transaction(fn func(txRepos *Repositories) error) error {
	// 内存实现（直接填充接口字段构造的聚合）没有底层连接，原样执行
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// 使用事务 db 创建新的 Repositories 实例
		return fn(NewRepositories(tx, r.codec))
	})
}
