// Package hub 实现实时消息的扇出分发
// channel_broker.go
// 核心职责：单机模式下的消息代理实现
// 进程内 channel 搬运事件，不依赖外部消息队列，适合小规模或开发环境
// 单 channel 消费保证同一会话内事件按发布顺序投递
package hub

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"kyte_chat_server/pkg/constants"
)

// ChannelBroker 进程内消息代理
type ChannelBroker struct {
	hub *Hub
	// Transmit 事件转发通道
	Transmit chan []byte
	done     chan struct{}
}

// NewChannelBroker 创建 ChannelBroker 实例
func NewChannelBroker(hub *Hub) *ChannelBroker {
	return &ChannelBroker{
		hub:      hub,
		Transmit: make(chan []byte, constants.CHANNEL_SIZE),
		done:     make(chan struct{}),
	}
}

// Publish 发布事件到转发通道
func (b *ChannelBroker) Publish(_ context.Context, env Envelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	b.Transmit <- data
	return nil
}

// Start 启动消费循环
// 单协程顺序消费，同一会话的事件不会乱序
func (b *ChannelBroker) Start() {
	for {
		select {
		case <-b.done:
			return
		case data, ok := <-b.Transmit:
			if !ok {
				return
			}
			var env Envelope
			if err := json.Unmarshal(data, &env); err != nil {
				zap.L().Error("channel broker: 事件反序列化失败", zap.Error(err))
				continue
			}
			b.hub.Publish(env.ChatId, env.Payload)
		}
	}
}

// Close 关闭代理资源
func (b *ChannelBroker) Close() {
	close(b.done)
}

// 确保 ChannelBroker 实现了 MessageBroker 接口
var _ MessageBroker = (*ChannelBroker)(nil)
