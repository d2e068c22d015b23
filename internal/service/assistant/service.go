// Package assistant 实现 AI 助手业务逻辑
// 用户提问和 AI 回复都走消息管线持久化并广播，历史对话一并带给上游
package assistant

import (
	"context"

	"go.uber.org/zap"

	"kyte_chat_server/internal/config"
	"kyte_chat_server/internal/dao/mysql"
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/dto/respond"
	"kyte_chat_server/internal/infrastructure/ai"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/pkg/errorx"
)

// assistantSenderId AI 回复消息的固定发送者 ID
const assistantSenderId = "UASSISTANT0000000000"

// historyLimit 带给上游的最近消息条数
const historyLimit = 20

// MessageSender 消息管线依赖
// 由 message 服务实现，持久化、广播、推送都复用同一条管线
type MessageSender interface {
	Send(ctx context.Context, userId string, req request.SendMessageRequest) (*respond.MessageRespond, error)
	Inject(ctx context.Context, req request.InjectMessageRequest) (*respond.MessageRespond, error)
}

type assistantService struct {
	repos     *mysql.Repositories
	completer ai.Completer
	messages  MessageSender
}

func NewAssistantService(repos *mysql.Repositories, completer ai.Completer, messages MessageSender) *assistantService {
	return &assistantService{repos: repos, completer: completer, messages: messages}
}

// Ask 向助手会话提问
// 流程：校验会话归属 -> 保存用户消息 -> 取历史调用上游 -> 保存并广播 AI 回复
func (s *assistantService) Ask(ctx context.Context, userId string, req request.AskAssistantRequest) (*respond.MessageRespond, error) {
	chat, err := s.repos.Chat.FindByUuid(req.ChatId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		return nil, errorx.ErrServerBusy
	}
	// 助手会话私有，只有归属用户能提问
	if chat.Kind != model.ChatKindAssistant || chat.OwnerId != userId {
		return nil, errorx.ErrForbidden
	}

	// 用户消息先落库并广播，上游失败时提问也不会丢
	if _, err := s.messages.Send(ctx, userId, request.SendMessageRequest{
		ChatId:  req.ChatId,
		Content: req.Content,
	}); err != nil {
		return nil, err
	}

	history, err := s.buildHistory(req.ChatId)
	if err != nil {
		return nil, err
	}

	reply, err := s.completer.Complete(ctx, history)
	if err != nil {
		zap.L().Error("AI 上游调用失败", zap.String("chat_id", req.ChatId), zap.Error(err))
		if errorx.GetCode(err) == errorx.CodeUpstreamUnavailable {
			return nil, err
		}
		return nil, errorx.New(errorx.CodeUpstreamUnavailable, "助手暂时不可用")
	}

	assistantName := config.GetConfig().AIConfig.AssistantName
	if assistantName == "" {
		assistantName = "智能助手"
	}
	return s.messages.Inject(ctx, request.InjectMessageRequest{
		ChatId:     req.ChatId,
		SenderId:   assistantSenderId,
		SenderName: assistantName,
		Content:    reply,
		Kind:       model.MessageKindAI,
	})
}

// buildHistory 取最近的消息按时间正序组装对话历史
// AI 消息映射为 assistant 角色，其余都算 user
func (s *assistantService) buildHistory(chatId string) ([]ai.ChatMessage, error) {
	recent, err := s.repos.Message.FindPageBefore(chatId, 0, historyLimit)
	if err != nil {
		zap.L().Error("查询助手对话历史失败", zap.String("chat_id", chatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	history := make([]ai.ChatMessage, 0, len(recent)+1)
	history = append(history, ai.ChatMessage{
		Role:    "system",
		Content: "你是一个乐于助人的聊天助手，用简洁友好的中文回答问题。",
	})
	for i := len(recent) - 1; i >= 0; i-- {
		role := "user"
		if recent[i].Kind == model.MessageKindAI {
			role = "assistant"
		}
		history = append(history, ai.ChatMessage{Role: role, Content: recent[i].Content})
	}
	return history, nil
}
