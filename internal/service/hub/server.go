// Package hub 实现实时消息的扇出分发
// server.go
// 核心职责：实时服务端聚合
// 1. 管理连接注册/注销和在线状态
// 2. 分发客户端命令（join_chat/leave_chat/message）
// 3. 把业务层事件经 MessageBroker 广播到各节点的 Hub
package hub

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/dto/respond"
)

// 客户端命令
const (
	ActionJoinChat  = "join_chat"
	ActionLeaveChat = "leave_chat"
	ActionMessage   = "message"
)

// 服务端事件
const (
	EventMessage      = "message"
	EventMessageLiked = "message_liked"
)

// onlineUsersKey 在线用户集合的缓存键
const onlineUsersKey = "online_users"

// Sender 消息发送接口
// 由消息 Service 实现，连接收到 message 命令时经它走完整发送管线
// 接口定义在 hub 侧，避免与 service/message 形成环形依赖
type Sender interface {
	SendFromWs(ctx context.Context, userId string, req request.WsCommandRequest) error
}

// ChatServer 实时服务端聚合
type ChatServer struct {
	hub    *Hub
	broker MessageBroker

	participantRepo mysql.ParticipantRepository
	userRepo        mysql.UserRepository
	cache           myredis.AsyncCacheService
	sender          Sender
}

// NewChatServer 创建 ChatServer 实例
func NewChatServer(
	hub *Hub,
	broker MessageBroker,
	participantRepo mysql.ParticipantRepository,
	userRepo mysql.UserRepository,
	cache myredis.AsyncCacheService,
) *ChatServer {
	return &ChatServer{
		hub:             hub,
		broker:          broker,
		participantRepo: participantRepo,
		userRepo:        userRepo,
		cache:           cache,
	}
}

// SetSender 注入消息发送实现
// 消息 Service 构造时需要 ChatServer 做广播，双向依赖在装配阶段打断
func (s *ChatServer) SetSender(sender Sender) {
	s.sender = sender
}

// Hub 返回订阅表
func (s *ChatServer) Hub() *Hub {
	return s.hub
}

// Start 启动消息代理消费循环
func (s *ChatServer) Start() {
	s.broker.Start()
}

// Close 关闭代理资源
func (s *ChatServer) Close() {
	s.broker.Close()
}

// Register 注册连接并更新在线状态
// 上线时自动订阅用户已加入的全部会话，断线重连不依赖客户端重放 join_chat
func (s *ChatServer) Register(c *Conn) {
	if s.participantRepo != nil {
		chatIds, err := s.participantRepo.FindChatIdsByUserId(c.UserId)
		if err != nil {
			zap.L().Error("查询用户会话列表失败", zap.String("user_id", c.UserId), zap.Error(err))
		} else {
			for _, chatId := range chatIds {
				s.hub.Subscribe(chatId, c)
			}
		}
	}
	if s.cache != nil {
		s.cache.SubmitTask(func() {
			_ = s.cache.AddToSet(context.Background(), onlineUsersKey, c.UserId)
		})
	}
	if s.userRepo != nil && s.cache != nil {
		now := time.Now()
		userId := c.UserId
		s.cache.SubmitTask(func() {
			if err := s.userRepo.UpdateLastOnlineAt(userId, now); err != nil {
				zap.L().Error("更新上线时间失败", zap.Error(err))
			}
		})
	}
	zap.L().Info("客户端注册", zap.String("user_id", c.UserId), zap.String("conn_id", c.Uuid))
}

// Unregister 注销连接：退订所有频道、更新离线状态、关闭资源
func (s *ChatServer) Unregister(c *Conn) {
	s.hub.UnsubscribeAll(c)
	if s.cache != nil {
		s.cache.SubmitTask(func() {
			_ = s.cache.RemoveFromSet(context.Background(), onlineUsersKey, c.UserId)
		})
	}
	if s.userRepo != nil && s.cache != nil {
		now := time.Now()
		userId := c.UserId
		s.cache.SubmitTask(func() {
			if err := s.userRepo.UpdateLastOfflineAt(userId, now); err != nil {
				zap.L().Error("更新离线时间失败", zap.Error(err))
			}
		})
	}
	c.close()
	zap.L().Info("客户端注销", zap.String("user_id", c.UserId), zap.String("conn_id", c.Uuid))
}

// HandleCommand 分发客户端命令
func (s *ChatServer) HandleCommand(ctx context.Context, c *Conn, data []byte) {
	var cmd request.WsCommandRequest
	if err := json.Unmarshal(data, &cmd); err != nil {
		zap.L().Warn("无法解析的客户端命令", zap.String("conn_id", c.Uuid), zap.Error(err))
		return
	}

	switch cmd.Action {
	case ActionJoinChat:
		s.handleJoin(c, cmd.ChatId)
	case ActionLeaveChat:
		// 退订无条件执行，未订阅时是空操作
		s.hub.Unsubscribe(cmd.ChatId, c)
	case ActionMessage:
		if s.sender == nil {
			zap.L().Error("消息发送端未注入")
			return
		}
		if err := s.sender.SendFromWs(ctx, c.UserId, cmd); err != nil {
			zap.L().Warn("ws 消息发送失败",
				zap.String("user_id", c.UserId),
				zap.String("chat_id", cmd.ChatId),
				zap.Error(err),
			)
		}
	default:
		zap.L().Warn("未知的客户端命令", zap.String("action", cmd.Action))
	}
}

// handleJoin 处理订阅命令
// 每次都重新校验成员身份，非成员静默忽略，不回错误帧
func (s *ChatServer) handleJoin(c *Conn, chatId string) {
	if chatId == "" {
		return
	}
	ok, err := s.participantRepo.IsMember(chatId, c.UserId)
	if err != nil {
		zap.L().Error("校验成员身份失败", zap.String("chat_id", chatId), zap.Error(err))
		return
	}
	if !ok {
		zap.L().Warn("非会话成员尝试订阅",
			zap.String("chat_id", chatId),
			zap.String("user_id", c.UserId),
		)
		return
	}
	s.hub.Subscribe(chatId, c)
}

// BroadcastEvent 把业务事件广播到会话频道
// 事件先包成统一信封再经代理投递，单机和 Kafka 两种模式走同一条路
func (s *ChatServer) BroadcastEvent(ctx context.Context, chatId string, event string, data any) error {
	payload, err := json.Marshal(respond.WsEventRespond{Event: event, Data: data})
	if err != nil {
		return err
	}
	return s.broker.Publish(ctx, Envelope{ChatId: chatId, Payload: payload})
}
