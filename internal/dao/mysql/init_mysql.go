// Package mysql 提供数据访问层的初始化和全局数据库实例管理
// 负责建立 MySQL 连接、自动迁移表结构、初始化 Repository 层
package mysql

import (
	"fmt"

	"kyte_chat_server/internal/config"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/pkg/aes"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Init 初始化数据库连接并返回 Repository 层实例
// 执行步骤：
//  1. 从配置读取 MySQL 连接信息
//  2. 构建 DSN（Data Source Name）连接字符串
//  3. 使用 GORM 建立数据库连接
//  4. 执行 AutoMigrate 自动迁移表结构
//  5. 创建并返回 Repository 实例
//
// 返回: Repository 实例集合
func Init() *Repositories {
	conf := config.GetConfig()

	// 构建 MySQL DSN 连接字符串
	// 格式：user:password@tcp(host:port)/database?params
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
		conf.MysqlConfig.DatabaseName,
	)

	// TranslateError 开启后唯一索引冲突会翻译成 gorm.ErrDuplicatedKey
	// 幂等加入会话、重复点赞都依赖这个翻译
	db, err := gorm.Open(mysqldriver.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	// AutoMigrate 自动迁移表结构
	// 如果表不存在则创建，如果字段变更则更新结构
	// 注意：不会删除已有字段或数据
	err = db.AutoMigrate(
		&model.User{},              // 用户表
		&model.Chat{},              // 会话表
		&model.ChatParticipant{},   // 会话成员表
		&model.ReadCursor{},        // 已读游标表
		&model.Message{},           // 消息表
		&model.MessageLike{},       // 消息点赞表
		&model.Attachment{},        // 消息附件表
		&model.PhoneVerification{}, // 手机验证码表
	)
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	// 字段加密编解码器，密钥从配置的口令派生
	codec, err := aes.NewCodec(conf.EncryptionConfig.Secret)
	if err != nil {
		zap.L().Fatal(err.Error())
	}

	return NewRepositories(db, codec)
}
