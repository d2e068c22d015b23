// Package push 提供离线推送服务
// 本文件定义推送接口和 FCM 风格的 HTTP 实现
package push

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"kyte_chat_server/internal/config"
	"kyte_chat_server/pkg/errorx"
)

// Notification 一次推送的内容
type Notification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	// Data 附加数据，客户端点开通知后用它跳转会话
	Data map[string]string `json:"data,omitempty"`
}

// Notifier 推送服务接口
// Service 层依赖此接口，发送失败只记日志，不影响消息主流程
type Notifier interface {
	// Notify 向一批设备令牌推送通知
	Notify(ctx context.Context, tokens []string, n Notification) error
}

// fcmRequest FCM legacy 接口的请求体
type fcmRequest struct {
	RegistrationIds []string          `json:"registration_ids"`
	Notification    map[string]string `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

// httpNotifier FCM 风格推送实现
type httpNotifier struct {
	client    *resty.Client
	serverKey string
}

// logNotifier 本地 Mock 实现，只打日志
type logNotifier struct{}

func (logNotifier) Notify(_ context.Context, tokens []string, n Notification) error {
	zap.L().Info("push notification (mock)",
		zap.Int("tokens", len(tokens)),
		zap.String("title", n.Title),
		zap.String("body", n.Body),
	)
	return nil
}

// Init 初始化推送服务
// 未配置 serverKey 时返回日志 Mock 实现
func Init() Notifier {
	conf := config.GetConfig().PushConfig
	if conf.ServerKey == "" {
		zap.L().Warn("Push Service 使用本地 Mock 模式（仅打日志，不对外推送）")
		return logNotifier{}
	}

	timeout := conf.Timeout * time.Second
	if conf.Timeout == 0 {
		timeout = 5 * time.Second
	}
	client := resty.New().
		SetBaseURL(conf.Endpoint).
		SetTimeout(timeout).
		SetRetryCount(2)
	return &httpNotifier{client: client, serverKey: conf.ServerKey}
}

// Notify 向一批设备令牌推送通知
func (p *httpNotifier) Notify(ctx context.Context, tokens []string, n Notification) error {
	if len(tokens) == 0 {
		return nil
	}

	body := fcmRequest{
		RegistrationIds: tokens,
		Notification: map[string]string{
			"title": n.Title,
			"body":  n.Body,
		},
		Data: n.Data,
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "key="+p.serverKey).
		SetBody(body).
		Post("")
	if err != nil {
		return errorx.Wrap(err, errorx.CodeUpstreamUnavailable, "推送服务调用失败")
	}
	if resp.IsError() {
		return errorx.Newf(errorx.CodeUpstreamUnavailable, "推送服务返回 %d", resp.StatusCode())
	}
	return nil
}
