// Package hub 实现实时消息的扇出分发
// conn.go
// 核心职责：WebSocket 连接生命周期管理
// 1. 建立 WebSocket 连接 (Upgrade)
// 2. 封装 Conn 对象，管理读写协程 (Read/Write Loop)
// 3. 读到的客户端命令交给 ChatServer 分发
package hub

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"kyte_chat_server/pkg/constants"
)

// Conn 表示一个 WebSocket 客户端连接
// Outbound 是发送缓冲，Hub 往里投递，Write 协程负责真正写到网络
// 测试时可以只构造 Outbound 而不带底层 ws 连接
type Conn struct {
	Conn     *websocket.Conn
	Uuid     string // 连接 ID，同一用户多端登录时区分各连接
	UserId   string
	Outbound chan []byte

	server    *ChatServer
	closeOnce sync.Once
}

// 前后端分离部署时前端跑在其他端口，放开 Origin 检查
var upgrader = websocket.Upgrader{
	ReadBufferSize:  2048,
	WriteBufferSize: 2048,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewConn 创建连接对象（供测试构造裸连接）
func NewConn(userId string) *Conn {
	return &Conn{
		Uuid:     uuid.NewString(),
		UserId:   userId,
		Outbound: make(chan []byte, constants.CHANNEL_SIZE),
	}
}

// Read 从 WebSocket 读取客户端命令并交给服务端分发
// 读取出错说明连接断开，注销连接后退出
func (c *Conn) Read() {
	zap.L().Info("ws read goroutine start", zap.String("conn_id", c.Uuid))
	defer c.server.Unregister(c)
	for {
		_, jsonMessage, err := c.Conn.ReadMessage()
		if err != nil {
			zap.L().Info("ws 连接断开", zap.String("conn_id", c.Uuid), zap.Error(err))
			return
		}
		c.server.HandleCommand(context.Background(), c, jsonMessage)
	}
}

// Write 从发送缓冲读取数据并写到 WebSocket
func (c *Conn) Write() {
	zap.L().Info("ws write goroutine start", zap.String("conn_id", c.Uuid))
	for payload := range c.Outbound {
		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			zap.L().Error(err.Error())
			return
		}
	}
}

// NewClientInit 升级 HTTP 连接为 WebSocket 并启动读写协程
func NewClientInit(c *gin.Context, userId string, server *ChatServer) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Error(err.Error())
		return
	}
	client := NewConn(userId)
	client.Conn = conn
	client.server = server

	server.Register(client)
	go client.Read()
	go client.Write()
	zap.L().Info("ws连接成功", zap.String("user_id", userId), zap.String("conn_id", client.Uuid))
}

// close 关闭底层连接和发送缓冲
// 必须在连接已从 Hub 全部退订之后调用，否则投递方会写到已关闭的通道
func (c *Conn) close() {
	c.closeOnce.Do(func() {
		if c.Conn != nil {
			_ = c.Conn.Close()
		}
		close(c.Outbound)
	})
}
