// Package hub 实现实时消息的扇出分发
// broker.go
// 核心职责：定义消息代理接口
// 抽象事件发布，支持 Kafka 和 Channel 两种实现
package hub

import (
	"context"
	"encoding/json"
)

// Envelope 经由代理传输的事件信封
// Payload 是已序列化的 WsEventRespond，代理只管搬运不管内容
type Envelope struct {
	ChatId  string          `json:"chat_id"`
	Payload json.RawMessage `json:"payload"`
}

// MessageBroker 定义消息代理接口
// 支持多种实现：KafkaBroker (分布式), ChannelBroker (单机)
type MessageBroker interface {
	// Publish 发布事件到消息队列/通道
	Publish(ctx context.Context, env Envelope) error
	// Start 启动消费循环，把事件从队列/通道搬到 Hub
	Start()
	// Close 关闭代理资源
	Close()
}
