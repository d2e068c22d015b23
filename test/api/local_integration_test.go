//go:build integration
// +build integration

package api_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"kyte_chat_server/internal/config"
	dao "kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/internal/handler"
	"kyte_chat_server/internal/https_server"
	"kyte_chat_server/internal/infrastructure/ai"
	"kyte_chat_server/internal/infrastructure/push"
	"kyte_chat_server/internal/infrastructure/ratelimit"
	"kyte_chat_server/internal/infrastructure/sms"
	"kyte_chat_server/internal/router"
	"kyte_chat_server/internal/service"
	"kyte_chat_server/internal/service/hub"
	"kyte_chat_server/pkg/errorx"
	"kyte_chat_server/pkg/util/jwt"
	"kyte_chat_server/pkg/util/snowflake"
)

type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  any             `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type loginData struct {
	UUID         string `json:"uuid"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func mustDo(t *testing.T, client *http.Client, method, url string, body []byte, contentType string, authHeader string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, bytes.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("do request %s %s: %v", method, url, err)
	}
	return resp
}

func readEnvelope(t *testing.T, resp *http.Response) apiEnvelope {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	var env apiEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode response: %v; status=%d; body=%q", err, resp.StatusCode, string(body))
	}
	return env
}

func mustSuccess(t *testing.T, path string, env apiEnvelope) {
	t.Helper()
	if env.Code != errorx.CodeSuccess {
		t.Fatalf("%s: code=%d msg=%v", path, env.Code, env.Msg)
	}
}

func ensureMySQLDatabaseExists(t *testing.T, conf *config.Config) {
	t.Helper()
	dsnNoDB := fmt.Sprintf("%s:%s@tcp(%s:%d)/?charset=utf8mb4&parseTime=True&loc=Local",
		conf.MysqlConfig.User,
		conf.MysqlConfig.Password,
		conf.MysqlConfig.Host,
		conf.MysqlConfig.Port,
	)
	db, err := sql.Open("mysql", dsnNoDB)
	if err != nil {
		t.Fatalf("sql open: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		t.Fatalf("mysql ping: %v", err)
	}
	_, err = db.Exec("CREATE DATABASE IF NOT EXISTS " + conf.MysqlConfig.DatabaseName + " DEFAULT CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci")
	if err != nil {
		t.Fatalf("create database %s: %v", conf.MysqlConfig.DatabaseName, err)
	}
}

func makePhoneSuffix() string {
	// 生成 8 位数字后缀
	n := time.Now().UnixNano() % 100_000_000
	return fmt.Sprintf("%08d", n)
}

// registerAndLogin 注册一个新手机号并登录，返回令牌
func registerAndLogin(t *testing.T, client *http.Client, baseURL string, cache myredis.AsyncCacheService, nickname string) loginData {
	t.Helper()
	phone := "139" + makePhoneSuffix()

	sendResp := mustDo(t, client, http.MethodPost, baseURL+"/auth/sendSmsCode",
		[]byte(fmt.Sprintf(`{"telephone":"%s"}`, phone)), "application/json", "")
	mustSuccess(t, "/auth/sendSmsCode", readEnvelope(t, sendResp))

	// mock 短信模式下验证码留在重发占位键里
	code, err := cache.Get(context.Background(), "auth_code_"+phone)
	if err != nil || code == "" {
		t.Fatalf("read sms code from redis: %v (code=%q)", err, code)
	}

	regBody := fmt.Sprintf(`{"telephone":"%s","password":"password123","nickname":"%s","sms_code":"%s"}`, phone, nickname, code)
	regResp := mustDo(t, client, http.MethodPost, baseURL+"/auth/register", []byte(regBody), "application/json", "")
	mustSuccess(t, "/auth/register", readEnvelope(t, regResp))

	loginBody := fmt.Sprintf(`{"telephone":"%s","password":"password123"}`, phone)
	loginResp := mustDo(t, client, http.MethodPost, baseURL+"/auth/login", []byte(loginBody), "application/json", "")
	loginEnv := readEnvelope(t, loginResp)
	mustSuccess(t, "/auth/login", loginEnv)

	var ld loginData
	if err := json.Unmarshal(loginEnv.Data, &ld); err != nil {
		t.Fatalf("unmarshal login data: %v", err)
	}
	if ld.AccessToken == "" || ld.UUID == "" || ld.RefreshToken == "" {
		t.Fatal("missing tokens/uuid in login response")
	}
	return ld
}

func TestLocalIntegration_ChatFlow(t *testing.T) {
	// 需要本机 MySQL + Redis 可用（按 configs/config.toml）
	gin.SetMode(gin.TestMode)
	_ = os.Setenv("KYTECHAT_SMS_MODE", "mock")

	conf := config.GetConfig()
	ensureMySQLDatabaseExists(t, conf)

	// 初始化基础设施
	snowflake.Init()
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	repos := dao.Init()
	myredis.Init()
	cache := myredis.GetCacheService()

	smsService, err := sms.Init(cache, repos.Verification)
	if err != nil {
		t.Fatalf("sms init: %v", err)
	}
	notifier := push.Init()
	completer := ai.Init()

	wsHub := hub.NewHub()
	chatServer := hub.NewChatServer(wsHub, hub.NewChannelBroker(wsHub), repos.Participant, repos.User, cache)
	go chatServer.Start()
	t.Cleanup(func() {
		chatServer.Close()
	})

	service.InitServices(repos, cache, smsService, notifier, completer, chatServer)
	handlers := handler.NewHandlers(service.Svc, chatServer)
	if err := handler.InitTrans("zh"); err != nil {
		t.Fatalf("init trans: %v", err)
	}

	// 放宽限流额度，集成测试里一个 IP 会连打多个认证接口
	authLimiter := ratelimit.NewLimiter(cache, ratelimit.SystemClock(), time.Minute, 1000)
	smsLimiter := ratelimit.NewLimiter(cache, ratelimit.SystemClock(), time.Minute, 1000)

	engine := https_server.Init(router.NewRouter(handlers, authLimiter, smsLimiter))
	srv := httptest.NewServer(engine)
	defer srv.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	// ===== 注册登录两个用户 =====
	alice := registerAndLogin(t, client, srv.URL, cache, "itest-alice")
	bob := registerAndLogin(t, client, srv.URL, cache, "itest-bob")
	aliceAuth := "Bearer " + alice.AccessToken
	bobAuth := "Bearer " + bob.AccessToken

	// 刷新令牌
	refreshResp := mustDo(t, client, http.MethodPost, srv.URL+"/auth/refreshToken",
		[]byte(fmt.Sprintf(`{"refresh_token":"%s"}`, alice.RefreshToken)), "application/json", "")
	mustSuccess(t, "/auth/refreshToken", readEnvelope(t, refreshResp))

	// 鉴权 GET 确认令牌可用
	meResp := mustDo(t, client, http.MethodGet, srv.URL+"/user/me", nil, "", aliceAuth)
	mustSuccess(t, "/user/me", readEnvelope(t, meResp))

	// ===== Alice 建群，Bob 用邀请码加入 =====
	createResp := mustDo(t, client, http.MethodPost, srv.URL+"/chat/create",
		[]byte(`{"kind":"group","name":"集成测试群"}`), "application/json", aliceAuth)
	createEnv := readEnvelope(t, createResp)
	mustSuccess(t, "/chat/create", createEnv)
	var chatData struct {
		Uuid       string `json:"uuid"`
		InviteCode string `json:"invite_code"`
	}
	if err := json.Unmarshal(createEnv.Data, &chatData); err != nil {
		t.Fatalf("unmarshal chat: %v", err)
	}
	if chatData.Uuid == "" || chatData.InviteCode == "" {
		t.Fatalf("chat fields missing: %+v", chatData)
	}

	joinResp := mustDo(t, client, http.MethodPost, srv.URL+"/chat/join",
		[]byte(fmt.Sprintf(`{"invite_code":"%s"}`, chatData.InviteCode)), "application/json", bobAuth)
	mustSuccess(t, "/chat/join", readEnvelope(t, joinResp))

	// ===== Bob 先挂上 ws 并订阅，Alice 发消息，Bob 实时收到 =====
	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws?token=" + bob.AccessToken
	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
	wsConn, _, err := dialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial: %v", err)
	}
	defer wsConn.Close()

	if err := wsConn.WriteJSON(map[string]any{"action": "join_chat", "chat_id": chatData.Uuid}); err != nil {
		t.Fatalf("ws join: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for chatServer.Hub().Subscribers(chatData.Uuid) < 1 {
		if time.Now().After(deadline) {
			t.Fatal("ws 订阅没有生效")
		}
		time.Sleep(20 * time.Millisecond)
	}

	sendResp := mustDo(t, client, http.MethodPost, srv.URL+"/message/send",
		[]byte(fmt.Sprintf(`{"chat_id":"%s","content":"集成测试消息"}`, chatData.Uuid)), "application/json", aliceAuth)
	sendEnv := readEnvelope(t, sendResp)
	mustSuccess(t, "/message/send", sendEnv)
	var sentMsg struct {
		Id      string `json:"id"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(sendEnv.Data, &sentMsg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}

	_ = wsConn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var event struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
	}
	if err := wsConn.ReadJSON(&event); err != nil {
		t.Fatalf("ws read: %v", err)
	}
	if event.Event != "message" {
		t.Fatalf("ws event = %q, want message", event.Event)
	}

	// ===== 聊天记录、点赞、已读游标、未读数、参与度 =====
	listResp := mustDo(t, client, http.MethodGet,
		srv.URL+"/message/getMessageList?chat_id="+chatData.Uuid, nil, "", bobAuth)
	listEnv := readEnvelope(t, listResp)
	mustSuccess(t, "/message/getMessageList", listEnv)
	var page struct {
		Messages []struct {
			Id      string `json:"id"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.Unmarshal(listEnv.Data, &page); err != nil {
		t.Fatalf("unmarshal message list: %v", err)
	}
	if len(page.Messages) == 0 {
		t.Fatal("聊天记录为空")
	}

	likeResp := mustDo(t, client, http.MethodPost, srv.URL+"/message/toggleLike",
		[]byte(fmt.Sprintf(`{"message_id":"%s"}`, sentMsg.Id)), "application/json", bobAuth)
	mustSuccess(t, "/message/toggleLike", readEnvelope(t, likeResp))

	markResp := mustDo(t, client, http.MethodPost, srv.URL+"/chat/markRead",
		[]byte(fmt.Sprintf(`{"chat_id":"%s","message_id":"%s"}`, chatData.Uuid, sentMsg.Id)), "application/json", bobAuth)
	mustSuccess(t, "/chat/markRead", readEnvelope(t, markResp))

	unreadResp := mustDo(t, client, http.MethodGet,
		srv.URL+"/chat/"+chatData.Uuid+"/unread", nil, "", bobAuth)
	unreadEnv := readEnvelope(t, unreadResp)
	mustSuccess(t, "/chat/unread", unreadEnv)
	var unread struct {
		UnreadCount int64 `json:"unread_count"`
	}
	if err := json.Unmarshal(unreadEnv.Data, &unread); err != nil {
		t.Fatalf("unmarshal unread: %v", err)
	}
	if unread.UnreadCount != 0 {
		t.Fatalf("标记已读后未读 = %d, want 0", unread.UnreadCount)
	}

	engageResp := mustDo(t, client, http.MethodGet,
		srv.URL+"/chat/"+chatData.Uuid+"/engagement", nil, "", bobAuth)
	engageEnv := readEnvelope(t, engageResp)
	mustSuccess(t, "/chat/engagement", engageEnv)
	var stats struct {
		MessageCount int64 `json:"message_count"`
		LikesTotal   int64 `json:"likes_total"`
	}
	if err := json.Unmarshal(engageEnv.Data, &stats); err != nil {
		t.Fatalf("unmarshal engagement: %v", err)
	}
	if stats.MessageCount < 1 || stats.LikesTotal < 1 {
		t.Fatalf("参与度统计 = %+v", stats)
	}

	// ===== 会话列表里能看到这个群 =====
	chatsResp := mustDo(t, client, http.MethodGet, srv.URL+"/chat/list", nil, "", aliceAuth)
	chatsEnv := readEnvelope(t, chatsResp)
	mustSuccess(t, "/chat/list", chatsEnv)
	var chats []struct {
		Uuid string `json:"uuid"`
	}
	if err := json.Unmarshal(chatsEnv.Data, &chats); err != nil {
		t.Fatalf("unmarshal chats: %v", err)
	}
	found := false
	for _, c := range chats {
		if c.Uuid == chatData.Uuid {
			found = true
		}
	}
	if !found {
		t.Fatal("会话列表里没有新建的群")
	}
}
