// Package hub 实现实时消息的扇出分发
// hub.go
// 核心职责：维护「会话频道 -> 订阅连接集合」的映射
// 连接通过 join_chat/leave_chat 命令订阅和退订，发布按频道扇出
package hub

import (
	"sync"

	"go.uber.org/zap"
)

// Hub 频道订阅表
// 读多写少，用 RWMutex 保护；投递走连接自己的发送缓冲，不在锁内做 IO
type Hub struct {
	mu sync.RWMutex
	// chats Key 为频道名（chat:<chatId>），Value 为订阅该频道的连接集合
	chats map[string]map[*Conn]struct{}
}

// NewHub 创建 Hub 实例
func NewHub() *Hub {
	return &Hub{
		chats: make(map[string]map[*Conn]struct{}),
	}
}

// channelName 会话频道命名
func channelName(chatId string) string {
	return "chat:" + chatId
}

// Subscribe 把连接订阅到会话频道
// 重复订阅是幂等的
func (h *Hub) Subscribe(chatId string, c *Conn) {
	ch := channelName(chatId)
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.chats[ch]
	if !ok {
		conns = make(map[*Conn]struct{})
		h.chats[ch] = conns
	}
	conns[c] = struct{}{}
}

// Unsubscribe 把连接从会话频道退订
// 未订阅时退订是空操作
func (h *Hub) Unsubscribe(chatId string, c *Conn) {
	ch := channelName(chatId)
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.chats[ch]
	if !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.chats, ch)
	}
}

// UnsubscribeAll 把连接从所有频道退订，连接断开时调用
func (h *Hub) UnsubscribeAll(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, conns := range h.chats {
		delete(conns, c)
		if len(conns) == 0 {
			delete(h.chats, ch)
		}
	}
}

// Publish 向会话频道的所有订阅连接投递一帧数据
// 投递是非阻塞的：连接发送缓冲满了就丢帧记日志，慢客户端不拖垮整个频道
// 返回成功投递的连接数
func (h *Hub) Publish(chatId string, payload []byte) int {
	ch := channelName(chatId)
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for c := range h.chats[ch] {
		select {
		case c.Outbound <- payload:
			delivered++
		default:
			zap.L().Warn("hub: 连接发送缓冲已满，丢弃消息",
				zap.String("chat_id", chatId),
				zap.String("conn_id", c.Uuid),
				zap.String("user_id", c.UserId),
			)
		}
	}
	return delivered
}

// Subscribers 返回会话频道当前的订阅连接数
func (h *Hub) Subscribers(chatId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.chats[channelName(chatId)])
}
