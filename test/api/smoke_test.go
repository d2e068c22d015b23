package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kyte_chat_server/internal/dao/mysql"
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/dto/respond"
	"kyte_chat_server/internal/handler"
	"kyte_chat_server/internal/https_server"
	"kyte_chat_server/internal/infrastructure/ratelimit"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/internal/router"
	"kyte_chat_server/internal/service"
	"kyte_chat_server/internal/service/hub"
	"kyte_chat_server/pkg/util/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// ==================== Service 桩实现 ====================

type stubUserService struct{}

func (s stubUserService) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	return &respond.RegisterRespond{}, nil
}
func (s stubUserService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	return &respond.LoginRespond{}, nil
}
func (s stubUserService) SmsLogin(req request.SmsLoginRequest) (*respond.LoginRespond, error) {
	return &respond.LoginRespond{}, nil
}
func (s stubUserService) SendSmsCode(telephone string) error { return nil }
func (s stubUserService) RefreshToken(refreshToken string) (string, error) {
	return "new-access-token", nil
}
func (s stubUserService) GetUserInfo(uuid string) (*respond.UserRespond, error) {
	return &respond.UserRespond{Uuid: uuid}, nil
}
func (s stubUserService) UpdateUser(uuid string, req request.UpdateUserRequest) error { return nil }
func (s stubUserService) AdminListUsers(req request.AdminPageRequest) (*respond.AdminUserListRespond, error) {
	return &respond.AdminUserListRespond{}, nil
}
func (s stubUserService) AdminSetUserStatus(uuids []string, status int8) error { return nil }
func (s stubUserService) AdminDeleteUsers(uuids []string) error                { return nil }

type stubChatService struct{}

func (s stubChatService) CreateChat(userId string, req request.CreateChatRequest) (*respond.ChatRespond, error) {
	return &respond.ChatRespond{Uuid: "C_TEST"}, nil
}
func (s stubChatService) JoinByInviteCode(userId string, code string) (*respond.ChatRespond, error) {
	return &respond.ChatRespond{Uuid: "C_TEST"}, nil
}
func (s stubChatService) GetChats(userId string) ([]respond.ChatRespond, error) {
	return []respond.ChatRespond{}, nil
}
func (s stubChatService) GetChat(userId, chatId string) (*respond.ChatRespond, error) {
	return &respond.ChatRespond{Uuid: chatId}, nil
}
func (s stubChatService) MarkRead(userId string, req request.MarkReadRequest) error { return nil }
func (s stubChatService) UnreadCount(userId, chatId string) (int64, error)          { return 0, nil }
func (s stubChatService) Engagement(userId, chatId string) (*respond.EngagementRespond, error) {
	return &respond.EngagementRespond{}, nil
}
func (s stubChatService) LeaveChat(userId, chatId string) error { return nil }
func (s stubChatService) AdminListChats(req request.AdminPageRequest) (*respond.AdminChatListRespond, error) {
	return &respond.AdminChatListRespond{}, nil
}
func (s stubChatService) AdminDeleteChat(chatId string) error { return nil }

// stubMessageService 同时实现 hub.Sender，记录经 ws 进来的发送调用
type stubMessageService struct {
	wsSent chan string
}

func (s *stubMessageService) Send(ctx context.Context, userId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	return &respond.MessageRespond{Id: "1", ChatId: req.ChatId}, nil
}
func (s *stubMessageService) Inject(ctx context.Context, req request.InjectMessageRequest) (*respond.MessageRespond, error) {
	return &respond.MessageRespond{Id: "1", ChatId: req.ChatId}, nil
}
func (s *stubMessageService) List(userId string, req request.GetMessageListRequest) (*respond.MessageListRespond, error) {
	return &respond.MessageListRespond{Messages: []respond.MessageRespond{}}, nil
}
func (s *stubMessageService) ToggleLike(userId string, messageId string) (*respond.ToggleLikeRespond, error) {
	return &respond.ToggleLikeRespond{}, nil
}
func (s *stubMessageService) UploadFile(c *gin.Context) ([]string, error) {
	return []string{"/static/files/file.bin"}, nil
}
func (s *stubMessageService) AdminListMessages(req request.AdminPageRequest) (*respond.AdminMessageListRespond, error) {
	return &respond.AdminMessageListRespond{}, nil
}
func (s *stubMessageService) AdminDeleteMessage(messageId string) error { return nil }
func (s *stubMessageService) SendFromWs(ctx context.Context, userId string, cmd request.WsCommandRequest) error {
	select {
	case s.wsSent <- cmd.Content:
	default:
	}
	return nil
}

type stubAssistantService struct{}

func (s stubAssistantService) Ask(ctx context.Context, userId string, req request.AskAssistantRequest) (*respond.MessageRespond, error) {
	return &respond.MessageRespond{Id: "1", ChatId: req.ChatId}, nil
}

// ==================== 基础设施桩 ====================

// allowAllParticipantRepo ws join_chat 走真实的成员校验，这里一律放行
type allowAllParticipantRepo struct{}

func (allowAllParticipantRepo) FindMembers(string) ([]model.ChatParticipant, error) { return nil, nil }
func (allowAllParticipantRepo) FindMemberIds(string) ([]string, error)              { return nil, nil }
func (allowAllParticipantRepo) IsMember(string, string) (bool, error)               { return true, nil }
func (allowAllParticipantRepo) FindChatIdsByUserId(string) ([]string, error)        { return nil, nil }
func (allowAllParticipantRepo) CreateParticipant(*model.ChatParticipant) error      { return nil }
func (allowAllParticipantRepo) DeleteParticipant(string, string) error              { return nil }
func (allowAllParticipantRepo) DeleteByChatId(string) error                         { return nil }

var _ mysql.ParticipantRepository = allowAllParticipantRepo{}

// memCache 限流中间件用的内存计数器
type memCache struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newMemCache() *memCache { return &memCache{counts: make(map[string]int64)} }

func (m *memCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (m *memCache) Get(context.Context, string) (string, error)              { return "", nil }
func (m *memCache) GetOrError(context.Context, string) (string, error)       { return "", nil }
func (m *memCache) IncrementWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts[key]++
	return m.counts[key], nil
}
func (m *memCache) Delete(context.Context, string) error                     { return nil }
func (m *memCache) DeleteByPattern(context.Context, string) error            { return nil }
func (m *memCache) AddToSet(context.Context, string, ...interface{}) error   { return nil }
func (m *memCache) GetSetMembers(context.Context, string) ([]string, error)  { return nil, nil }
func (m *memCache) RemoveFromSet(context.Context, string, ...interface{}) error {
	return nil
}

// ==================== 辅助函数 ====================

func mustJSON(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("json marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, client *http.Client, method, url string, body io.Reader, authHeader string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request %s %s: %v", method, url, err)
	}
	return resp
}

func requireNot5xxOr404(t *testing.T, path string, resp *http.Response) {
	t.Helper()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode >= 500 {
		t.Fatalf("%s status=%d", path, resp.StatusCode)
	}
}

func dialWs(t *testing.T, serverURL, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(serverURL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	return conn
}

func TestAllHTTPAndWebSocketEndpoints_Smoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	jwt.Init("test-secret", 15, 168)
	if err := handler.InitTrans("zh"); err != nil {
		t.Fatalf("init trans: %v", err)
	}

	wsHub := hub.NewHub()
	broker := hub.NewChannelBroker(wsHub)
	chatServer := hub.NewChatServer(wsHub, broker, allowAllParticipantRepo{}, nil, nil)
	go chatServer.Start()
	defer chatServer.Close()

	messageSvc := &stubMessageService{wsSent: make(chan string, 4)}
	chatServer.SetSender(messageSvc)

	svcs := &service.Services{
		User:      stubUserService{},
		Chat:      stubChatService{},
		Message:   messageSvc,
		Assistant: stubAssistantService{},
	}

	cache := newMemCache()
	authLimiter := ratelimit.NewLimiter(cache, ratelimit.SystemClock(), time.Minute, 1000)
	smsLimiter := ratelimit.NewLimiter(cache, ratelimit.SystemClock(), time.Minute, 1000)

	rt := router.NewRouter(handler.NewHandlers(svcs, chatServer), authLimiter, smsLimiter)
	engine := https_server.Init(rt)
	server := httptest.NewServer(engine)
	defer server.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	accessToken, err := jwt.GenerateAccessToken("U_TEST", false)
	if err != nil {
		t.Fatalf("generate access token: %v", err)
	}
	authHeader := "Bearer " + accessToken

	adminToken, err := jwt.GenerateAccessToken("U_ADMIN", true)
	if err != nil {
		t.Fatalf("generate admin token: %v", err)
	}
	adminHeader := "Bearer " + adminToken

	refreshToken, _, err := jwt.GenerateRefreshToken("U_TEST")
	if err != nil {
		t.Fatalf("generate refresh token: %v", err)
	}

	// ===== 认证接口（公开，带限流） =====
	resp := doReq(t, client, http.MethodPost, server.URL+"/auth/register", mustJSON(t, map[string]any{
		"telephone": "13000000001",
		"password":  "123456",
		"nickname":  "n",
		"sms_code":  "123456",
	}), "")
	requireNot5xxOr404(t, "/auth/register", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/auth/login", mustJSON(t, map[string]any{
		"telephone": "13000000000",
		"password":  "123456",
	}), "")
	requireNot5xxOr404(t, "/auth/login", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/auth/smsLogin", mustJSON(t, map[string]any{
		"telephone": "13000000002",
		"sms_code":  "123456",
	}), "")
	requireNot5xxOr404(t, "/auth/smsLogin", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/auth/sendSmsCode", mustJSON(t, map[string]any{
		"telephone": "13000000003",
	}), "")
	requireNot5xxOr404(t, "/auth/sendSmsCode", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/auth/refreshToken", mustJSON(t, map[string]any{
		"refresh_token": refreshToken,
	}), "")
	requireNot5xxOr404(t, "/auth/refreshToken", resp)
	_ = resp.Body.Close()

	// ===== 用户接口 =====
	resp = doReq(t, client, http.MethodGet, server.URL+"/user/me", nil, authHeader)
	requireNot5xxOr404(t, "/user/me", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/user/U_2", nil, authHeader)
	requireNot5xxOr404(t, "/user/U_2", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/user/update", mustJSON(t, map[string]any{
		"nickname": "新昵称",
	}), authHeader)
	requireNot5xxOr404(t, "/user/update", resp)
	_ = resp.Body.Close()

	// 未带令牌访问私有接口被拒
	resp = doReq(t, client, http.MethodGet, server.URL+"/user/me", nil, "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("无令牌访问 /user/me status=%d, want 401", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// ===== 会话接口 =====
	resp = doReq(t, client, http.MethodPost, server.URL+"/chat/create", mustJSON(t, map[string]any{
		"kind": "group",
		"name": "测试群",
	}), authHeader)
	requireNot5xxOr404(t, "/chat/create", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/chat/join", mustJSON(t, map[string]any{
		"invite_code": "AB12CD",
	}), authHeader)
	requireNot5xxOr404(t, "/chat/join", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/chat/list", nil, authHeader)
	requireNot5xxOr404(t, "/chat/list", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/chat/C_TEST", nil, authHeader)
	requireNot5xxOr404(t, "/chat/C_TEST", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/chat/markRead", mustJSON(t, map[string]any{
		"chat_id":    "C_TEST",
		"message_id": "1",
	}), authHeader)
	requireNot5xxOr404(t, "/chat/markRead", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/chat/C_TEST/unread", nil, authHeader)
	requireNot5xxOr404(t, "/chat/C_TEST/unread", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/chat/C_TEST/engagement", nil, authHeader)
	requireNot5xxOr404(t, "/chat/C_TEST/engagement", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/chat/C_TEST/leave", nil, authHeader)
	requireNot5xxOr404(t, "/chat/C_TEST/leave", resp)
	_ = resp.Body.Close()

	// ===== 消息接口 =====
	resp = doReq(t, client, http.MethodPost, server.URL+"/message/send", mustJSON(t, map[string]any{
		"chat_id": "C_TEST",
		"content": "hello",
	}), authHeader)
	requireNot5xxOr404(t, "/message/send", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/message/getMessageList?chat_id=C_TEST&limit=50", nil, authHeader)
	requireNot5xxOr404(t, "/message/getMessageList", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/message/toggleLike", mustJSON(t, map[string]any{
		"message_id": "1",
	}), authHeader)
	requireNot5xxOr404(t, "/message/toggleLike", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/message/uploadFile", mustJSON(t, map[string]any{}), authHeader)
	requireNot5xxOr404(t, "/message/uploadFile", resp)
	_ = resp.Body.Close()

	// ===== AI 助手接口 =====
	resp = doReq(t, client, http.MethodPost, server.URL+"/assistant/ask", mustJSON(t, map[string]any{
		"chat_id": "C_TEST",
		"content": "你好",
	}), authHeader)
	requireNot5xxOr404(t, "/assistant/ask", resp)
	_ = resp.Body.Close()

	// ===== 管理端接口 =====
	// 普通用户被管理员中间件拦下
	resp = doReq(t, client, http.MethodGet, server.URL+"/admin/user/list", nil, authHeader)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("普通用户访问管理端 status=%d, want 403", resp.StatusCode)
	}
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/admin/user/list?page=1&page_size=10", nil, adminHeader)
	requireNot5xxOr404(t, "/admin/user/list", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/admin/user/setStatus", mustJSON(t, map[string]any{
		"uuids":  []string{"U_1"},
		"status": 1,
	}), adminHeader)
	requireNot5xxOr404(t, "/admin/user/setStatus", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/admin/user/delete", mustJSON(t, map[string]any{
		"uuids": []string{"U_1"},
	}), adminHeader)
	requireNot5xxOr404(t, "/admin/user/delete", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/admin/chat/list?page=1&page_size=10", nil, adminHeader)
	requireNot5xxOr404(t, "/admin/chat/list", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/admin/chat/C_TEST/delete", nil, adminHeader)
	requireNot5xxOr404(t, "/admin/chat/C_TEST/delete", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodGet, server.URL+"/admin/message/list?page=1&page_size=10", nil, adminHeader)
	requireNot5xxOr404(t, "/admin/message/list", resp)
	_ = resp.Body.Close()

	resp = doReq(t, client, http.MethodPost, server.URL+"/admin/message/1/delete", nil, adminHeader)
	requireNot5xxOr404(t, "/admin/message/1/delete", resp)
	_ = resp.Body.Close()

	// ===== 服务间接口 =====
	// 测试配置里没有服务密钥，任何调用都该被拒
	resp = doReq(t, client, http.MethodPost, server.URL+"/service/message/inject", mustJSON(t, map[string]any{
		"chat_id":     "C_TEST",
		"sender_id":   "SVC",
		"sender_name": "svc",
		"content":     "x",
	}), "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("无服务密钥注入 status=%d, want 401", resp.StatusCode)
	}
	_ = resp.Body.Close()

	// ===== WebSocket =====
	// 无令牌拒绝升级
	badURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	if conn, _, err := websocket.DefaultDialer.Dial(badURL, nil); err == nil {
		_ = conn.Close()
		t.Fatal("无令牌的 ws 连接不该升级成功")
	}

	// 两个客户端订阅同一会话，广播双方都能收到
	tokenA, _ := jwt.GenerateAccessToken("U_WS_A", false)
	tokenB, _ := jwt.GenerateAccessToken("U_WS_B", false)
	connA := dialWs(t, server.URL, tokenA)
	defer connA.Close()
	connB := dialWs(t, server.URL, tokenB)
	defer connB.Close()

	join := map[string]any{"action": "join_chat", "chat_id": "C_WS"}
	if err := connA.WriteJSON(join); err != nil {
		t.Fatalf("ws join A: %v", err)
	}
	if err := connB.WriteJSON(join); err != nil {
		t.Fatalf("ws join B: %v", err)
	}

	// join 由读协程异步处理，轮询等订阅生效
	deadline := time.Now().Add(2 * time.Second)
	for chatServer.Hub().Subscribers("C_WS") < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("订阅数 = %d, want 2", chatServer.Hub().Subscribers("C_WS"))
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := chatServer.BroadcastEvent(context.Background(), "C_WS", "message", map[string]any{"content": "广播"}); err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	for _, c := range []*websocket.Conn{connA, connB} {
		_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event respond.WsEventRespond
		if err := c.ReadJSON(&event); err != nil {
			t.Fatalf("ws read: %v", err)
		}
		if event.Event != "message" {
			t.Fatalf("事件 = %q, want message", event.Event)
		}
	}

	// message 命令经 Sender 走发送管线
	if err := connA.WriteJSON(map[string]any{
		"action":  "message",
		"chat_id": "C_WS",
		"content": "来自 ws 的消息",
	}); err != nil {
		t.Fatalf("ws send: %v", err)
	}
	select {
	case got := <-messageSvc.wsSent:
		if got != "来自 ws 的消息" {
			t.Fatalf("ws 消息内容 = %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ws message 命令没有抵达发送管线")
	}
}
