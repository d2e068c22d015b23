// Package chat 实现会话业务逻辑
// 覆盖单聊/群聊/助手会话的创建、加入、列表、已读游标和互动统计
package chat

import (
	"context"
	"time"

	"go.uber.org/zap"

	"kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/dto/respond"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/pkg/constants"
	"kyte_chat_server/pkg/errorx"
	"kyte_chat_server/pkg/util/random"
	"kyte_chat_server/pkg/util/snowflake"
)

// inviteCodeMaxRetry 邀请码撞库重试次数
const inviteCodeMaxRetry = 5

// metadataMeetKey 会议消息在 metadata 中的标记键
const metadataMeetKey = "meetUrl"

type chatService struct {
	repos *mysql.Repositories
	cache myredis.AsyncCacheService
}

func NewChatService(repos *mysql.Repositories, cache myredis.AsyncCacheService) *chatService {
	return &chatService{repos: repos, cache: cache}
}

// newChatUuid 生成会话 ID，C 开头加 19 位随机串
func newChatUuid() string {
	return "C" + random.GetNowAndLenRandomString(11)
}

// buildChatRespond 组装会话响应
func buildChatRespond(chat *model.Chat, participants []string, unread int64, includeInvite bool) respond.ChatRespond {
	rsp := respond.ChatRespond{
		Uuid:               chat.Uuid,
		Name:               chat.Name,
		Kind:               chat.Kind,
		Avatar:             chat.Avatar,
		OwnerId:            chat.OwnerId,
		Participants:       participants,
		LastMessagePreview: chat.LastMessagePreview,
		LastSenderName:     chat.LastSenderName,
		UnreadCount:        unread,
		CreatedAt:          chat.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if chat.LastMessageAt.Valid {
		rsp.LastMessageAt = chat.LastMessageAt.Time.UTC().Format(time.RFC3339Nano)
	}
	// 邀请码只对群聊成员可见
	if includeInvite && chat.Kind == model.ChatKindGroup && chat.InviteCode != nil {
		rsp.InviteCode = *chat.InviteCode
	}
	return rsp
}

// CreateChat 创建会话
// direct 去重复用已有单聊，group 生成邀请码，assistant 每人只有一个
func (s *chatService) CreateChat(userId string, req request.CreateChatRequest) (*respond.ChatRespond, error) {
	switch req.Kind {
	case model.ChatKindDirect:
		return s.createDirectChat(userId, req)
	case model.ChatKindGroup:
		return s.createGroupChat(userId, req)
	case model.ChatKindAssistant:
		return s.createAssistantChat(userId, req)
	default:
		return nil, errorx.New(errorx.CodeInvalidParam, "不支持的会话类型")
	}
}

func (s *chatService) createDirectChat(userId string, req request.CreateChatRequest) (*respond.ChatRespond, error) {
	if req.PeerId == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "单聊必须指定对方用户")
	}
	if req.PeerId == userId {
		return nil, errorx.New(errorx.CodeInvalidParam, "不能和自己建立单聊")
	}
	peer, err := s.repos.User.FindByUuid(req.PeerId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "对方用户不存在")
		}
		return nil, errorx.ErrServerBusy
	}

	// 两人之间的单聊去重，取双方会话 ID 的交集
	myChatIds, err := s.repos.Participant.FindChatIdsByUserId(userId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	peerChatIds, err := s.repos.Participant.FindChatIdsByUserId(req.PeerId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	peerSet := make(map[string]struct{}, len(peerChatIds))
	for _, id := range peerChatIds {
		peerSet[id] = struct{}{}
	}
	shared := make([]string, 0)
	for _, id := range myChatIds {
		if _, ok := peerSet[id]; ok {
			shared = append(shared, id)
		}
	}
	if len(shared) > 0 {
		chats, err := s.repos.Chat.FindByUuids(shared)
		if err != nil {
			return nil, errorx.ErrServerBusy
		}
		for i := range chats {
			if chats[i].Kind == model.ChatKindDirect {
				return s.respondWithMembers(userId, &chats[i])
			}
		}
	}

	name := req.Name
	if name == "" {
		name = peer.Nickname
	}
	chat := &model.Chat{
		Uuid:    newChatUuid(),
		Name:    name,
		Kind:    model.ChatKindDirect,
		Avatar:  req.Avatar,
		OwnerId: userId,
	}
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		if err := tx.Chat.CreateChat(chat); err != nil {
			return err
		}
		if err := tx.Participant.CreateParticipant(&model.ChatParticipant{
			ChatId: chat.Uuid, UserId: userId, Role: model.ParticipantRoleOwner, JoinedAt: time.Now(),
		}); err != nil {
			return err
		}
		return tx.Participant.CreateParticipant(&model.ChatParticipant{
			ChatId: chat.Uuid, UserId: req.PeerId, Role: model.ParticipantRoleMember, JoinedAt: time.Now(),
		})
	})
	if err != nil {
		zap.L().Error("创建单聊失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return s.respondWithMembers(userId, chat)
}

func (s *chatService) createGroupChat(userId string, req request.CreateChatRequest) (*respond.ChatRespond, error) {
	if req.Name == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "群聊名称不能为空")
	}

	chat := &model.Chat{
		Uuid:    newChatUuid(),
		Name:    req.Name,
		Kind:    model.ChatKindGroup,
		Avatar:  req.Avatar,
		OwnerId: userId,
	}

	// 邀请码有唯一索引，撞上就换一个重试
	var err error
	for attempt := 0; attempt < inviteCodeMaxRetry; attempt++ {
		code := random.GetInviteCode(constants.INVITE_CODE_LENGTH)
		chat.InviteCode = &code
		err = s.repos.Transaction(func(tx *mysql.Repositories) error {
			if err := tx.Chat.CreateChat(chat); err != nil {
				return err
			}
			return tx.Participant.CreateParticipant(&model.ChatParticipant{
				ChatId: chat.Uuid, UserId: userId, Role: model.ParticipantRoleOwner, JoinedAt: time.Now(),
			})
		})
		if err == nil {
			return s.respondWithMembers(userId, chat)
		}
		if errorx.GetCode(err) != errorx.CodeConflict {
			break
		}
	}
	zap.L().Error("创建群聊失败", zap.Error(err))
	return nil, errorx.ErrServerBusy
}

func (s *chatService) createAssistantChat(userId string, req request.CreateChatRequest) (*respond.ChatRespond, error) {
	// 助手会话每人一个，已有则直接返回
	existing, err := s.repos.Chat.FindAssistantByOwner(userId)
	if err == nil {
		return s.respondWithMembers(userId, existing)
	}
	if errorx.GetCode(err) != errorx.CodeNotFound {
		return nil, errorx.ErrServerBusy
	}

	name := req.Name
	if name == "" {
		name = "智能助手"
	}
	chat := &model.Chat{
		Uuid:    newChatUuid(),
		Name:    name,
		Kind:    model.ChatKindAssistant,
		Avatar:  req.Avatar,
		OwnerId: userId,
	}
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		if err := tx.Chat.CreateChat(chat); err != nil {
			return err
		}
		return tx.Participant.CreateParticipant(&model.ChatParticipant{
			ChatId: chat.Uuid, UserId: userId, Role: model.ParticipantRoleOwner, JoinedAt: time.Now(),
		})
	})
	if err != nil {
		zap.L().Error("创建助手会话失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return s.respondWithMembers(userId, chat)
}

// respondWithMembers 带成员列表和未读数组装单个会话响应
func (s *chatService) respondWithMembers(userId string, chat *model.Chat) (*respond.ChatRespond, error) {
	memberIds, err := s.repos.Participant.FindMemberIds(chat.Uuid)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	unread, err := s.unreadCount(userId, chat)
	if err != nil {
		return nil, err
	}
	rsp := buildChatRespond(chat, memberIds, unread, true)
	return &rsp, nil
}

// JoinByInviteCode 按邀请码加入群聊
func (s *chatService) JoinByInviteCode(userId string, code string) (*respond.ChatRespond, error) {
	chat, err := s.repos.Chat.FindByInviteCode(code)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "邀请码无效")
		}
		return nil, errorx.ErrServerBusy
	}
	err = s.repos.Participant.CreateParticipant(&model.ChatParticipant{
		ChatId: chat.Uuid, UserId: userId, Role: model.ParticipantRoleMember, JoinedAt: time.Now(),
	})
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.New(errorx.CodeConflict, "你已经在该群聊中")
		}
		zap.L().Error("加入群聊失败", zap.String("chat_id", chat.Uuid), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return s.respondWithMembers(userId, chat)
}

// GetChats 获取用户的会话列表，按最近消息时间倒序
func (s *chatService) GetChats(userId string) ([]respond.ChatRespond, error) {
	chatIds, err := s.repos.Participant.FindChatIdsByUserId(userId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	if len(chatIds) == 0 {
		return []respond.ChatRespond{}, nil
	}
	chats, err := s.repos.Chat.FindByUuids(chatIds)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}

	// 已读游标一次取全，未读数逐会话统计
	cursors, err := s.repos.Cursor.FindCursorsByUserId(userId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	cursorByChat := make(map[string]model.ReadCursor, len(cursors))
	for _, c := range cursors {
		cursorByChat[c.ChatId] = c
	}

	list := make([]respond.ChatRespond, 0, len(chats))
	for i := range chats {
		chat := &chats[i]
		memberIds, err := s.repos.Participant.FindMemberIds(chat.Uuid)
		if err != nil {
			return nil, errorx.ErrServerBusy
		}
		var unread int64
		if cursor, ok := cursorByChat[chat.Uuid]; ok {
			unread, err = s.repos.Message.CountAfter(chat.Uuid, cursor.LastReadAt)
		} else {
			unread, err = s.repos.Message.CountByChatId(chat.Uuid)
		}
		if err != nil {
			return nil, errorx.ErrServerBusy
		}
		list = append(list, buildChatRespond(chat, memberIds, unread, true))
	}
	return list, nil
}

// GetChat 获取单个会话详情，仅成员可见
func (s *chatService) GetChat(userId string, chatId string) (*respond.ChatRespond, error) {
	ok, err := s.repos.Participant.IsMember(chatId, userId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.ErrForbidden
	}
	chat, err := s.repos.Chat.FindByUuid(chatId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		return nil, errorx.ErrServerBusy
	}
	return s.respondWithMembers(userId, chat)
}

// MarkRead 推进已读游标
// 游标只会前进不会后退，乱序的标记请求不影响已有进度
func (s *chatService) MarkRead(userId string, req request.MarkReadRequest) error {
	ok, err := s.repos.Participant.IsMember(req.ChatId, userId)
	if err != nil {
		return errorx.ErrServerBusy
	}
	if !ok {
		return errorx.ErrForbidden
	}

	msgUuid, err := parseMessageId(req.MessageId)
	if err != nil {
		return err
	}
	msg, err := s.repos.Message.FindByUuid(msgUuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		return errorx.ErrServerBusy
	}
	if msg.ChatId != req.ChatId {
		return errorx.New(errorx.CodeInvalidParam, "消息不属于该会话")
	}

	if err := s.repos.Cursor.AdvanceCursor(&model.ReadCursor{
		ChatId:            req.ChatId,
		UserId:            userId,
		LastReadMessageId: msg.Uuid,
		LastReadAt:        msg.SendAt,
	}); err != nil {
		zap.L().Error("推进已读游标失败", zap.String("chat_id", req.ChatId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// UnreadCount 获取单个会话的未读数
func (s *chatService) UnreadCount(userId string, chatId string) (int64, error) {
	ok, err := s.repos.Participant.IsMember(chatId, userId)
	if err != nil {
		return 0, errorx.ErrServerBusy
	}
	if !ok {
		return 0, errorx.ErrForbidden
	}
	chat, err := s.repos.Chat.FindByUuid(chatId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return 0, errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		return 0, errorx.ErrServerBusy
	}
	return s.unreadCount(userId, chat)
}

// unreadCount 无游标时整个会话都算未读
func (s *chatService) unreadCount(userId string, chat *model.Chat) (int64, error) {
	cursor, err := s.repos.Cursor.FindCursor(chat.Uuid, userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			count, err := s.repos.Message.CountByChatId(chat.Uuid)
			if err != nil {
				return 0, errorx.ErrServerBusy
			}
			return count, nil
		}
		return 0, errorx.ErrServerBusy
	}
	count, err := s.repos.Message.CountAfter(chat.Uuid, cursor.LastReadAt)
	if err != nil {
		return 0, errorx.ErrServerBusy
	}
	return count, nil
}

// Engagement 会话互动统计
func (s *chatService) Engagement(userId string, chatId string) (*respond.EngagementRespond, error) {
	ok, err := s.repos.Participant.IsMember(chatId, userId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.ErrForbidden
	}

	messageCount, err := s.repos.Message.CountByChatId(chatId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	likesTotal, err := s.repos.Message.LikesTotalByChatId(chatId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	meetingCount, err := s.repos.Message.CountByMetadataKey(chatId, metadataMeetKey)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	return &respond.EngagementRespond{
		MessageCount: messageCount,
		LikesTotal:   likesTotal,
		MeetingCount: meetingCount,
	}, nil
}

// LeaveChat 退出会话
func (s *chatService) LeaveChat(userId string, chatId string) error {
	ok, err := s.repos.Participant.IsMember(chatId, userId)
	if err != nil {
		return errorx.ErrServerBusy
	}
	if !ok {
		return errorx.ErrForbidden
	}
	if err := s.repos.Participant.DeleteParticipant(chatId, userId); err != nil {
		zap.L().Error("退出会话失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// AdminListChats 分页获取会话列表（管理端）
func (s *chatService) AdminListChats(req request.AdminPageRequest) (*respond.AdminChatListRespond, error) {
	page, pageSize := req.Page, req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	chats, total, err := s.repos.Chat.GetChatList(page, pageSize)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.ChatRespond, 0, len(chats))
	for i := range chats {
		list = append(list, buildChatRespond(&chats[i], nil, 0, true))
	}
	return &respond.AdminChatListRespond{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Chats:    list,
	}, nil
}

// AdminDeleteChat 删除会话及其全部消息、点赞、附件、成员和游标（管理端）
func (s *chatService) AdminDeleteChat(chatId string) error {
	if _, err := s.repos.Chat.FindByUuid(chatId); err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		return errorx.ErrServerBusy
	}
	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		msgIds, err := tx.Message.FindUuidsByChatId(chatId)
		if err != nil {
			return err
		}
		if err := tx.Like.DeleteByMessageIds(msgIds); err != nil {
			return err
		}
		if err := tx.Attachment.DeleteByMessageIds(msgIds); err != nil {
			return err
		}
		if err := tx.Message.DeleteByChatId(chatId); err != nil {
			return err
		}
		if err := tx.Participant.DeleteByChatId(chatId); err != nil {
			return err
		}
		if err := tx.Cursor.DeleteByChatId(chatId); err != nil {
			return err
		}
		return tx.Chat.SoftDeleteByUuid(chatId)
	})
	if err != nil {
		zap.L().Error("删除会话失败", zap.String("chat_id", chatId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if s.cache != nil {
		s.cache.SubmitTask(func() {
			_ = s.cache.Delete(context.Background(), "message_page_"+chatId)
		})
	}
	return nil
}

// parseMessageId 消息 ID 是十进制雪花 ID 字符串
func parseMessageId(id string) (int64, error) {
	v, err := snowflake.ParseID(id)
	if err != nil {
		return 0, errorx.New(errorx.CodeInvalidParam, "消息 ID 无效")
	}
	return v, nil
}
