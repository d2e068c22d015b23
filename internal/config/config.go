// Package config 提供应用程序的配置加载和管理功能
// 使用 TOML 格式的配置文件，支持多路径查找
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// MainConfig 主配置，包含应用基本信息
type MainConfig struct {
	AppName string `toml:"appName"` // 应用名称，用于日志标识等
	Host    string `toml:"host"`    // 服务器监听地址，如 "0.0.0.0"
	Port    int    `toml:"port"`    // 服务器监听端口，如 8000
	Mode    string `toml:"mode"`    // 运行模式："dev" 或 "release"，dev 模式错误响应包含调试信息
}

// MysqlConfig MySQL 数据库连接配置
type MysqlConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	DatabaseName string `toml:"databaseName"`
}

// RedisConfig Redis 连接配置
type RedisConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Password string `toml:"password"`
	Db       int    `toml:"db"`
}

// AuthCodeConfig 短信验证码服务配置（阿里云 SMS）
type AuthCodeConfig struct {
	AccessKeyID     string `toml:"accessKeyID"`
	AccessKeySecret string `toml:"accessKeySecret"`
	SignName        string `toml:"signName"`
	TemplateCode    string `toml:"templateCode"`
}

// LogConfig 日志配置，使用 lumberjack 进行日志轮转
type LogConfig struct {
	LogPath    string `toml:"logPath"`    // 日志文件存储目录
	FileName   string `toml:"fileName"`   // 日志文件名
	MaxSize    int    `toml:"maxSize"`    // 单个日志文件最大大小（MB）
	MaxBackups int    `toml:"maxBackups"` // 保留旧日志文件的最大个数
	MaxAge     int    `toml:"maxAge"`     // 保留旧日志文件的最大天数
	Level      string `toml:"level"`      // 日志级别：debug, info, warn, error
}

// KafkaConfig Kafka 消息队列配置
// messageMode 决定实时消息的投递方式："channel"（单机）或 "kafka"（多节点）
type KafkaConfig struct {
	MessageMode string        `toml:"messageMode"`
	HostPort    string        `toml:"hostPort"`
	ChatTopic   string        `toml:"chatTopic"`
	Partition   int           `toml:"partition"`
	Timeout     time.Duration `toml:"timeout"`
}

// StaticSrcConfig 静态资源路径配置
type StaticSrcConfig struct {
	StaticAvatarPath string `toml:"staticAvatarPath"` // 头像文件存储路径
	StaticFilePath   string `toml:"staticFilePath"`   // 聊天附件存储路径
}

// JWTConfig JWT 认证配置
type JWTConfig struct {
	Secret             string `toml:"secret"`             // JWT 签名密钥，建议 32 字符以上
	AccessTokenExpiry  int    `toml:"accessTokenExpiry"`  // Access Token 有效期（分钟）
	RefreshTokenExpiry int    `toml:"refreshTokenExpiry"` // Refresh Token 有效期（小时）
}

// SnowflakeConfig 雪花算法配置
type SnowflakeConfig struct {
	MachineID int64 `toml:"machineId"` // 雪花算法节点 ID，范围 0-1023，分布式部署时每台机器需唯一
}

// PushConfig 推送协作方配置（FCM 风格的 HTTP 端点）
// 不配置 serverKey 时退化为日志 Mock，推送只打日志不外呼
type PushConfig struct {
	Endpoint  string        `toml:"endpoint"`
	ServerKey string        `toml:"serverKey"`
	Timeout   time.Duration `toml:"timeout"`
}

// AIConfig AI 助手协作方配置（OpenAI 兼容的 chat completions 接口）
type AIConfig struct {
	BaseURL       string        `toml:"baseURL"`
	APIKey        string        `toml:"apiKey"`
	Model         string        `toml:"model"`
	AssistantName string        `toml:"assistantName"` // 助手会话的显示名称，仅用于展示
	Timeout       time.Duration `toml:"timeout"`
}

// ServiceConfig 服务间调用配置
// AI Agent 等内部服务通过共享密钥注入消息，不走用户会话
type ServiceConfig struct {
	APIKey string `toml:"apiKey"` // X-Service-Api-Key 请求头的约定值
}

// EncryptionConfig 敏感字段加密配置
type EncryptionConfig struct {
	Secret string `toml:"secret"` // 字段加密口令，scrypt 派生 AES-256 密钥
}

// RateLimitConfig 限流配置（固定窗口）
type RateLimitConfig struct {
	AuthPerWindow int           `toml:"authPerWindow"` // 认证接口每窗口最大请求数
	SmsPerWindow  int           `toml:"smsPerWindow"`  // 单手机号每窗口最大验证码发送数
	Window        time.Duration `toml:"window"`        // 窗口长度
}

// Config 应用程序总配置，聚合所有子配置
type Config struct {
	MainConfig       `toml:"mainConfig"`
	MysqlConfig      `toml:"mysqlConfig"`
	RedisConfig      `toml:"redisConfig"`
	AuthCodeConfig   `toml:"authCodeConfig"`
	LogConfig        `toml:"logConfig"`
	KafkaConfig      `toml:"kafkaConfig"`
	StaticSrcConfig  `toml:"staticSrcConfig"`
	JWTConfig        `toml:"jwtConfig"`
	SnowflakeConfig  `toml:"snowflakeConfig"`
	PushConfig       `toml:"pushConfig"`
	AIConfig         `toml:"aiConfig"`
	ServiceConfig    `toml:"serviceConfig"`
	EncryptionConfig `toml:"encryptionConfig"`
	RateLimitConfig  `toml:"rateLimitConfig"`
}

// config 全局配置单例，延迟加载
var config *Config

// LoadConfig 从多个候选路径加载配置文件
// 按顺序尝试加载，找到第一个可用的配置文件即停止
func LoadConfig() error {
	paths := []string{
		"configs/config_local.toml",       // 本地开发配置（优先）
		"configs/config.toml",             // 默认配置
		"../../configs/config_local.toml", // 从子目录运行时的路径
		"../../configs/config.toml",
	}

	for _, path := range paths {
		if _, err := toml.DecodeFile(path, config); err == nil {
			return nil
		}
	}

	return fmt.Errorf("could not find configuration file in any of the search paths")
}

// GetConfig 获取全局配置实例（单例模式）
// 首次调用时会自动加载配置文件
func GetConfig() *Config {
	if config == nil {
		config = new(Config)
		_ = LoadConfig() // 忽略加载错误，使用默认值
	}
	return config
}
