// Package hub 实现实时消息的扇出分发
// kafka_broker.go
// 核心职责：分布式模式下的消息代理实现
// 事件经 Kafka 广播到所有节点，每个节点的消费者把事件投递给本机 Hub
// 会话 ID 做分区 key，同一会话的事件在分区内保持顺序
package hub

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
)

// KafkaBroker 基于 Kafka 的消息代理
type KafkaBroker struct {
	hub    *Hub
	client *KafkaClient
	done   chan struct{}
}

// NewKafkaBroker 创建 KafkaBroker 实例
func NewKafkaBroker(hub *Hub, client *KafkaClient) *KafkaBroker {
	return &KafkaBroker{
		hub:    hub,
		client: client,
		done:   make(chan struct{}),
	}
}

// Publish 发布事件到 Kafka
func (b *KafkaBroker) Publish(ctx context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return b.client.SendMessage(ctx, []byte(env.ChatId), data)
}

// Start 启动 Kafka 消费循环
func (b *KafkaBroker) Start() {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Error("kafka broker panic", zap.Any("recover", r))
		}
	}()

	ctx := context.Background()
	for {
		select {
		case <-b.done:
			return
		default:
		}

		msg, err := b.client.Consumer.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			zap.L().Error("kafka broker: 读取消息失败", zap.Error(err))
			continue
		}

		var env Envelope
		if err := json.Unmarshal(msg.Value, &env); err != nil {
			zap.L().Error("kafka broker: 事件反序列化失败", zap.Error(err))
			continue
		}
		b.hub.Publish(env.ChatId, env.Payload)
	}
}

// Close 关闭代理资源
func (b *KafkaBroker) Close() {
	close(b.done)
	b.client.KafkaClose()
}

// 确保 KafkaBroker 实现了 MessageBroker 接口
var _ MessageBroker = (*KafkaBroker)(nil)
