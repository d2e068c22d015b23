// Package message 实现消息业务逻辑
// 发送管线：校验 -> 持久化 -> 更新会话摘要 -> 实时广播 -> 离线推送
package message

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"kyte_chat_server/internal/config"
	"kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/dto/respond"
	"kyte_chat_server/internal/infrastructure/push"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/pkg/constants"
	"kyte_chat_server/pkg/errorx"
	"kyte_chat_server/pkg/util/random"
	"kyte_chat_server/pkg/util/snowflake"
)

// Broadcaster 实时广播接口，由 hub.ChatServer 实现
type Broadcaster interface {
	BroadcastEvent(ctx context.Context, chatId string, event string, data any) error
}

// 广播事件名，与 hub 侧约定一致
const (
	eventMessage      = "message"
	eventMessageLiked = "message_liked"
)

// previewMaxRunes 会话摘要保留的最大字符数
const previewMaxRunes = 120

// messageService 消息业务逻辑实现
// 通过构造函数注入 Repository、Cache、广播和推送依赖
type messageService struct {
	repos       *mysql.Repositories
	cache       myredis.AsyncCacheService
	broadcaster Broadcaster
	notifier    push.Notifier
}

// NewMessageService 构造函数，注入所有依赖
func NewMessageService(
	repos *mysql.Repositories,
	cache myredis.AsyncCacheService,
	broadcaster Broadcaster,
	notifier push.Notifier,
) *messageService {
	return &messageService{
		repos:       repos,
		cache:       cache,
		broadcaster: broadcaster,
		notifier:    notifier,
	}
}

// firstPageCacheKey 首页消息缓存键
func firstPageCacheKey(chatId string) string {
	return "message_page_" + chatId
}

// truncatePreview 截取摘要文本
func truncatePreview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewMaxRunes {
		return content
	}
	return string(runes[:previewMaxRunes])
}

// buildRespond 组装消息响应
// likes 和 attachments 允许为 nil，输出时归一化为空切片
// metadata 为空时输出 null
func buildRespond(msg *model.Message, likes []string, attachments []model.Attachment) respond.MessageRespond {
	if likes == nil {
		likes = []string{}
	}
	attachRsp := make([]respond.AttachmentRespond, 0, len(attachments))
	for _, a := range attachments {
		attachRsp = append(attachRsp, respond.AttachmentRespond{
			Url:      a.Url,
			FileType: a.FileType,
			FileName: a.FileName,
			FileSize: a.FileSize,
		})
	}
	var metadata map[string]any
	if len(msg.Metadata) > 0 {
		metadata = map[string]any(msg.Metadata)
	}
	return respond.MessageRespond{
		Id:          strconv.FormatInt(msg.Uuid, 10),
		ChatId:      msg.ChatId,
		UserId:      msg.SenderId,
		UserName:    msg.SenderName,
		Content:     msg.Content,
		Kind:        msg.Kind,
		Likes:       likes,
		LikesCount:  msg.LikesCount,
		Attachments: attachRsp,
		CreatedAt:   msg.SendAt.UTC().Format(time.RFC3339Nano),
		Metadata:    metadata,
	}
}

// persistAndFanout 发送管线的公共后半段
// 事务内写消息和附件，然后更新摘要、广播、失效缓存、离线推送
func (s *messageService) persistAndFanout(ctx context.Context, msg *model.Message, attachments []model.Attachment) (*respond.MessageRespond, error) {
	err := s.repos.Transaction(func(tx *mysql.Repositories) error {
		if err := tx.Message.Create(msg); err != nil {
			return err
		}
		for i := range attachments {
			attachments[i].MessageId = msg.Uuid
		}
		return tx.Attachment.CreateAttachments(attachments)
	})
	if err != nil {
		zap.L().Error("消息持久化失败", zap.String("chat_id", msg.ChatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 会话摘要带条件更新，消息乱序提交也不会让摘要回退
	preview := truncatePreview(msg.Content)
	if preview == "" && len(attachments) > 0 {
		preview = "[附件] " + attachments[0].FileName
	}
	if err := s.repos.Chat.UpdateSummary(msg.ChatId, msg.Uuid, preview, msg.SenderId, msg.SenderName, msg.SendAt); err != nil {
		zap.L().Error("更新会话摘要失败", zap.String("chat_id", msg.ChatId), zap.Error(err))
	}

	rsp := buildRespond(msg, nil, attachments)

	// 实时广播，广播失败不影响消息已落库的事实
	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastEvent(ctx, msg.ChatId, eventMessage, rsp); err != nil {
			zap.L().Error("消息广播失败", zap.String("chat_id", msg.ChatId), zap.Error(err))
		}
	}

	// 异步失效首页消息缓存
	if s.cache != nil {
		chatId := msg.ChatId
		s.cache.SubmitTask(func() {
			_ = s.cache.Delete(context.Background(), firstPageCacheKey(chatId))
		})
	}

	// 异步离线推送，除发送者外的所有成员，失败只记日志
	s.pushToMembers(msg)

	return &rsp, nil
}

// pushToMembers 给除发送者外的成员推送通知
func (s *messageService) pushToMembers(msg *model.Message) {
	if s.notifier == nil || s.cache == nil {
		return
	}
	chatId, senderId, senderName, content := msg.ChatId, msg.SenderId, msg.SenderName, msg.Content
	s.cache.SubmitTask(func() {
		memberIds, err := s.repos.Participant.FindMemberIds(chatId)
		if err != nil {
			zap.L().Error("查询推送目标失败", zap.String("chat_id", chatId), zap.Error(err))
			return
		}
		targets := make([]string, 0, len(memberIds))
		for _, id := range memberIds {
			if id != senderId {
				targets = append(targets, id)
			}
		}
		users, err := s.repos.User.FindByUuids(targets)
		if err != nil {
			zap.L().Error("查询推送用户失败", zap.String("chat_id", chatId), zap.Error(err))
			return
		}
		tokens := make([]string, 0, len(users))
		for _, u := range users {
			if u.PushToken != "" {
				tokens = append(tokens, u.PushToken)
			}
		}
		if len(tokens) == 0 {
			return
		}
		err = s.notifier.Notify(context.Background(), tokens, push.Notification{
			Title: senderName,
			Body:  truncatePreview(content),
			Data:  map[string]string{"chat_id": chatId},
		})
		if err != nil {
			// 推送失败不回传给发送者
			zap.L().Warn("离线推送失败", zap.String("chat_id", chatId), zap.Error(err))
		}
	})
}

// Send 发送消息
func (s *messageService) Send(ctx context.Context, userId string, req request.SendMessageRequest) (*respond.MessageRespond, error) {
	// 内容落库前去掉首尾空白，纯空白等同于没有内容
	content := strings.TrimSpace(req.Content)
	if content == "" && len(req.Attachments) == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容和附件不能都为空")
	}

	// 成员校验
	ok, err := s.repos.Participant.IsMember(req.ChatId, userId)
	if err != nil {
		zap.L().Error("校验成员身份失败", zap.String("chat_id", req.ChatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.New(errorx.CodeForbidden, "你不是该会话的成员")
	}

	sender, err := s.repos.User.FindByUuid(userId)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, errorx.ErrServerBusy
	}

	kind := req.Kind
	if kind == "" {
		kind = model.MessageKindText
	}

	msg := &model.Message{
		Uuid:       snowflake.GenerateID(),
		ChatId:     req.ChatId,
		SenderId:   userId,
		SenderName: sender.Nickname,
		Kind:       kind,
		Content:    content,
		Metadata:   datatypes.JSONMap(req.Metadata),
		SendAt:     time.Now(),
	}

	attachments := make([]model.Attachment, 0, len(req.Attachments))
	for _, a := range req.Attachments {
		attachments = append(attachments, model.Attachment{
			Url:      a.Url,
			FileType: a.FileType,
			FileName: a.FileName,
			FileSize: a.FileSize,
		})
	}

	return s.persistAndFanout(ctx, msg, attachments)
}

// SendFromWs WebSocket message 命令入口，实现 hub.Sender 接口
func (s *messageService) SendFromWs(ctx context.Context, userId string, cmd request.WsCommandRequest) error {
	_, err := s.Send(ctx, userId, request.SendMessageRequest{
		ChatId:      cmd.ChatId,
		Content:     cmd.Content,
		Kind:        cmd.Kind,
		Attachments: cmd.Attachments,
		Metadata:    cmd.Metadata,
	})
	return err
}

// Inject 服务间消息注入
// 调用方已通过服务密钥认证，发送者不要求是会话成员
func (s *messageService) Inject(ctx context.Context, req request.InjectMessageRequest) (*respond.MessageRespond, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息内容不能为空")
	}

	// 会话必须存在
	if _, err := s.repos.Chat.FindByUuid(req.ChatId); err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
		}
		return nil, errorx.ErrServerBusy
	}

	kind := req.Kind
	if kind == "" {
		kind = model.MessageKindText
	}

	msg := &model.Message{
		Uuid:       snowflake.GenerateID(),
		ChatId:     req.ChatId,
		SenderId:   req.SenderId,
		SenderName: req.SenderName,
		Kind:       kind,
		Content:    content,
		Metadata:   datatypes.JSONMap(req.Metadata),
		SendAt:     time.Now(),
	}
	return s.persistAndFanout(ctx, msg, nil)
}

// List 游标分页获取聊天记录
// 内部按雪花 ID 倒序取一页，反转后按时间正序返回
func (s *messageService) List(userId string, req request.GetMessageListRequest) (*respond.MessageListRespond, error) {
	ok, err := s.repos.Participant.IsMember(req.ChatId, userId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.New(errorx.CodeForbidden, "你不是该会话的成员")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = constants.MESSAGE_PAGE_SIZE
	}
	if limit > constants.MESSAGE_PAGE_MAX {
		limit = constants.MESSAGE_PAGE_MAX
	}

	var before int64
	if req.Cursor != "" {
		before, err = strconv.ParseInt(req.Cursor, 10, 64)
		if err != nil || before <= 0 {
			return nil, errorx.New(errorx.CodeInvalidParam, "分页游标无效")
		}
	}

	// 首页且默认条数时先查缓存
	cacheable := req.Cursor == "" && limit == constants.MESSAGE_PAGE_SIZE && s.cache != nil
	if cacheable {
		if cached, err := s.cache.Get(context.Background(), firstPageCacheKey(req.ChatId)); err == nil && cached != "" {
			var rsp respond.MessageListRespond
			if err := json.Unmarshal([]byte(cached), &rsp); err == nil {
				return &rsp, nil
			}
		}
	}

	// 多取一条判断是否还有上一页
	messages, err := s.repos.Message.FindPageBefore(req.ChatId, before, limit+1)
	if err != nil {
		zap.L().Error("分页查询消息失败", zap.String("chat_id", req.ChatId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	hasMore := len(messages) > limit
	if hasMore {
		messages = messages[:limit]
	}

	// 批量取点赞和附件，避免逐条查询
	ids := make([]int64, 0, len(messages))
	for _, m := range messages {
		ids = append(ids, m.Uuid)
	}
	likes, err := s.repos.Like.FindByMessageIds(ids)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	likesByMsg := make(map[int64][]string, len(messages))
	for _, l := range likes {
		likesByMsg[l.MessageId] = append(likesByMsg[l.MessageId], l.UserId)
	}
	attachments, err := s.repos.Attachment.FindByMessageIds(ids)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	attachByMsg := make(map[int64][]model.Attachment, len(messages))
	for _, a := range attachments {
		attachByMsg[a.MessageId] = append(attachByMsg[a.MessageId], a)
	}

	// 倒序查询结果反转成时间正序
	list := make([]respond.MessageRespond, 0, len(messages))
	for i := len(messages) - 1; i >= 0; i-- {
		m := messages[i]
		list = append(list, buildRespond(&m, likesByMsg[m.Uuid], attachByMsg[m.Uuid]))
	}

	rsp := &respond.MessageListRespond{
		Messages: list,
		HasMore:  hasMore,
	}
	if hasMore && len(messages) > 0 {
		// 下一页从本页最旧一条再往前翻
		rsp.NextCursor = strconv.FormatInt(messages[len(messages)-1].Uuid, 10)
	}

	// 首页结果写缓存，短 TTL 容忍写后的短暂陈旧
	if cacheable {
		chatId := req.ChatId
		if data, err := json.Marshal(rsp); err == nil {
			s.cache.SubmitTask(func() {
				_ = s.cache.Set(context.Background(), firstPageCacheKey(chatId), string(data), time.Minute*constants.REDIS_TIMEOUT)
			})
		}
	}

	return rsp, nil
}

// ToggleLike 切换点赞状态
// 已赞则取消、未赞则点上，点赞关系和冗余计数在同一事务内变更
func (s *messageService) ToggleLike(userId string, messageId string) (*respond.ToggleLikeRespond, error) {
	msgUuid, err := strconv.ParseInt(messageId, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "消息 ID 无效")
	}

	msg, err := s.repos.Message.FindByUuid(msgUuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		return nil, errorx.ErrServerBusy
	}

	ok, err := s.repos.Participant.IsMember(msg.ChatId, userId)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	if !ok {
		return nil, errorx.New(errorx.CodeForbidden, "你不是该会话的成员")
	}

	var liked bool
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		exists, err := tx.Like.Exists(msgUuid, userId)
		if err != nil {
			return err
		}
		if exists {
			if err := tx.Like.DeleteLike(msgUuid, userId); err != nil {
				return err
			}
			liked = false
			return tx.Message.IncrementLikes(msgUuid, -1)
		}
		if err := tx.Like.CreateLike(&model.MessageLike{MessageId: msgUuid, UserId: userId}); err != nil {
			return err
		}
		liked = true
		return tx.Message.IncrementLikes(msgUuid, 1)
	})
	if err != nil {
		zap.L().Error("切换点赞失败", zap.String("message_id", messageId), zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	// 重新加载，响应里带最新计数和点赞者列表
	msg, err = s.repos.Message.FindByUuid(msgUuid)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	likeUserIds, err := s.repos.Like.FindUserIdsByMessageId(msgUuid)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	attachments, err := s.repos.Attachment.FindByMessageId(msgUuid)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}

	rsp := &respond.ToggleLikeRespond{
		Message: buildRespond(msg, likeUserIds, attachments),
		Liked:   liked,
	}

	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastEvent(context.Background(), msg.ChatId, eventMessageLiked, rsp.Message); err != nil {
			zap.L().Error("点赞广播失败", zap.String("chat_id", msg.ChatId), zap.Error(err))
		}
	}
	if s.cache != nil {
		chatId := msg.ChatId
		s.cache.SubmitTask(func() {
			_ = s.cache.Delete(context.Background(), firstPageCacheKey(chatId))
		})
	}

	return rsp, nil
}

// allowedUploadMimes 附件允许的 MIME 类型前缀
// 按文件前 512 字节的 Magic Bytes 判断，可执行文件和 html 不在其中
var allowedUploadMimes = []string{
	"image/", "video/", "audio/",
	"text/plain", "application/pdf", "application/zip",
}

// UploadFile 上传消息附件文件
// 文件落在静态目录，返回可访问的相对链接
func (s *messageService) UploadFile(c *gin.Context) ([]string, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, errorx.New(errorx.CodeInvalidParam, "上传表单无效")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return nil, errorx.New(errorx.CodeInvalidParam, "没有上传文件")
	}

	staticPath := config.GetConfig().StaticSrcConfig.StaticFilePath
	if err := os.MkdirAll(staticPath, 0o755); err != nil {
		zap.L().Error("创建附件目录失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	urls := make([]string, 0, len(files))
	for _, file := range files {
		if file.Size > constants.FILE_MAX_SIZE*1024 {
			return nil, errorx.Newf(errorx.CodeInvalidParam, "文件 %s 超过大小限制", file.Filename)
		}
		name, err := s.saveFile(file, staticPath, allowedUploadMimes...)
		if err != nil {
			if errorx.GetCode(err) == errorx.CodeInvalidParam {
				return nil, err
			}
			zap.L().Error("保存附件失败", zap.Error(err))
			return nil, errorx.ErrServerBusy
		}
		urls = append(urls, "/static/files/"+name)
	}
	return urls, nil
}

// saveFile 保存上传文件，带 Magic Bytes 类型校验
// 按声明的 MIME 不可信，取文件前 512 字节嗅探真实类型
func (s *messageService) saveFile(fileHeader *multipart.FileHeader, dstDir string, allowedMimes ...string) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	buffer := make([]byte, 512)
	if _, err := src.Read(buffer); err != nil && err != io.EOF {
		return "", err
	}
	contentType := http.DetectContentType(buffer)

	if len(allowedMimes) > 0 {
		allowed := false
		for _, mime := range allowedMimes {
			if strings.HasPrefix(contentType, mime) {
				allowed = true
				break
			}
		}
		if !allowed {
			return "", errorx.Newf(errorx.CodeInvalidParam, "不支持的文件类型: %s", contentType)
		}
	}

	if _, err := src.Seek(0, 0); err != nil {
		return "", err
	}

	// 随机前缀防止同名覆盖
	name := fmt.Sprintf("%s_%s", random.GetNowAndLenRandomString(8), filepath.Base(fileHeader.Filename))
	out, err := os.Create(filepath.Join(dstDir, name))
	if err != nil {
		return "", err
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		return "", err
	}
	return name, nil
}

// AdminListMessages 分页获取消息列表（管理端）
func (s *messageService) AdminListMessages(req request.AdminPageRequest) (*respond.AdminMessageListRespond, error) {
	page, pageSize := normalizePage(req)
	messages, total, err := s.repos.Message.GetMessageList(page, pageSize)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.MessageRespond, 0, len(messages))
	for i := range messages {
		list = append(list, buildRespond(&messages[i], nil, nil))
	}
	return &respond.AdminMessageListRespond{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Messages: list,
	}, nil
}

// AdminDeleteMessage 删除单条消息（管理端）
// 点赞和附件一并清理
func (s *messageService) AdminDeleteMessage(messageId string) error {
	msgUuid, err := strconv.ParseInt(messageId, 10, 64)
	if err != nil {
		return errorx.New(errorx.CodeInvalidParam, "消息 ID 无效")
	}
	msg, err := s.repos.Message.FindByUuid(msgUuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeNotFound, "消息不存在")
		}
		return errorx.ErrServerBusy
	}
	err = s.repos.Transaction(func(tx *mysql.Repositories) error {
		if err := tx.Like.DeleteByMessageIds([]int64{msgUuid}); err != nil {
			return err
		}
		if err := tx.Attachment.DeleteByMessageIds([]int64{msgUuid}); err != nil {
			return err
		}
		return tx.Message.DeleteByUuid(msgUuid)
	})
	if err != nil {
		zap.L().Error("删除消息失败", zap.String("message_id", messageId), zap.Error(err))
		return errorx.ErrServerBusy
	}
	if s.cache != nil {
		chatId := msg.ChatId
		s.cache.SubmitTask(func() {
			_ = s.cache.Delete(context.Background(), firstPageCacheKey(chatId))
		})
	}
	return nil
}

// normalizePage 分页参数兜底
func normalizePage(req request.AdminPageRequest) (int, int) {
	page := req.Page
	if page <= 0 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	return page, pageSize
}
