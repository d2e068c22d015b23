// Package ai 提供 AI 助手的上游客户端
// 对接 OpenAI 兼容的 chat completions 接口
package ai

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"kyte_chat_server/internal/config"
	"kyte_chat_server/pkg/errorx"
)

// ChatMessage 对话历史中的一条消息
// role 取值 system, user, assistant
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer AI 补全接口
// Service 层依赖此接口，测试时注入假实现
type Completer interface {
	// Complete 根据对话历史生成回复
	Complete(ctx context.Context, history []ChatMessage) (string, error)
}

// completionRequest chat completions 请求体
type completionRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// completionResponse chat completions 响应体
type completionResponse struct {
	Choices []struct {
		Message ChatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// client OpenAI 兼容客户端实现
type client struct {
	http  *resty.Client
	model string
}

// Init 初始化 AI 客户端
// 未配置 apiKey 时依然返回客户端，调用时由上游返回 401，
// 错误统一映射成 CodeUpstreamUnavailable
func Init() Completer {
	conf := config.GetConfig().AIConfig
	timeout := conf.Timeout * time.Second
	if conf.Timeout == 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(conf.BaseURL).
		SetTimeout(timeout).
		SetAuthToken(conf.APIKey)
	return &client{http: http, model: conf.Model}
}

// Complete 根据对话历史生成回复
func (c *client) Complete(ctx context.Context, history []ChatMessage) (string, error) {
	var result completionResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(completionRequest{Model: c.model, Messages: history}).
		SetResult(&result).
		Post("/chat/completions")
	if err != nil {
		zap.L().Error("AI 上游调用失败", zap.Error(err))
		return "", errorx.Wrap(err, errorx.CodeUpstreamUnavailable, "AI 服务暂不可用")
	}
	if resp.IsError() {
		msg := "AI 服务暂不可用"
		if result.Error != nil && result.Error.Message != "" {
			msg = result.Error.Message
		}
		zap.L().Error("AI 上游返回错误", zap.Int("status", resp.StatusCode()), zap.String("msg", msg))
		return "", errorx.Newf(errorx.CodeUpstreamUnavailable, "%s", msg)
	}
	if len(result.Choices) == 0 {
		return "", errorx.New(errorx.CodeUpstreamUnavailable, "AI 服务返回空结果")
	}
	return result.Choices[0].Message.Content, nil
}
