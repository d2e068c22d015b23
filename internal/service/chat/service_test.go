package chat

import (
	"strconv"
	"testing"
	"time"

	"kyte_chat_server/internal/dao/mysql"
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/pkg/constants"
	"kyte_chat_server/pkg/errorx"
)

// ==================== 内存假仓储 ====================

type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) FindByUuid(uuid string) (*model.User, error) {
	if u, ok := f.users[uuid]; ok {
		return u, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "用户不存在")
}
func (f *fakeUserRepo) FindByTelephone(string) (*model.User, error) {
	return nil, errorx.New(errorx.CodeNotFound, "no")
}
func (f *fakeUserRepo) FindByEmail(string) (*model.User, error) {
	return nil, errorx.New(errorx.CodeNotFound, "no")
}
func (f *fakeUserRepo) FindByUuids(uuids []string) ([]model.User, error) {
	var out []model.User
	for _, id := range uuids {
		if u, ok := f.users[id]; ok {
			out = append(out, *u)
		}
	}
	return out, nil
}
func (f *fakeUserRepo) CreateUser(u *model.User) error                    { f.users[u.Uuid] = u; return nil }
func (f *fakeUserRepo) UpdateUser(u *model.User) error                    { f.users[u.Uuid] = u; return nil }
func (f *fakeUserRepo) UpdateLastOnlineAt(string, time.Time) error        { return nil }
func (f *fakeUserRepo) UpdateLastOfflineAt(string, time.Time) error       { return nil }
func (f *fakeUserRepo) GetUserList(int, int) ([]model.User, int64, error) { return nil, 0, nil }
func (f *fakeUserRepo) UpdateUserStatusByUuids([]string, int8) error      { return nil }
func (f *fakeUserRepo) SoftDeleteUserByUuids([]string) error              { return nil }

type fakeChatRepo struct {
	chats map[string]*model.Chat
	// conflictTimes 前几次 CreateChat 返回冲突，模拟邀请码撞唯一索引
	conflictTimes int
	createCalls   int
}

func (f *fakeChatRepo) FindByUuid(uuid string) (*model.Chat, error) {
	if c, ok := f.chats[uuid]; ok {
		return c, nil
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}
func (f *fakeChatRepo) FindByUuids(uuids []string) ([]model.Chat, error) {
	var out []model.Chat
	for _, id := range uuids {
		if c, ok := f.chats[id]; ok {
			out = append(out, *c)
		}
	}
	return out, nil
}
func (f *fakeChatRepo) FindByInviteCode(code string) (*model.Chat, error) {
	for _, c := range f.chats {
		if c.InviteCode != nil && *c.InviteCode == code {
			return c, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}
func (f *fakeChatRepo) FindAssistantByOwner(ownerId string) (*model.Chat, error) {
	for _, c := range f.chats {
		if c.Kind == model.ChatKindAssistant && c.OwnerId == ownerId {
			return c, nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "会话不存在")
}
func (f *fakeChatRepo) CreateChat(c *model.Chat) error {
	f.createCalls++
	if f.conflictTimes > 0 {
		f.conflictTimes--
		return errorx.New(errorx.CodeConflict, "邀请码冲突")
	}
	// 和数据库唯一索引同语义：非 NULL 的邀请码不允许重复，NULL 不参与索引
	if c.InviteCode != nil {
		for _, exist := range f.chats {
			if exist.InviteCode != nil && *exist.InviteCode == *c.InviteCode {
				return errorx.New(errorx.CodeConflict, "邀请码冲突")
			}
		}
	}
	f.chats[c.Uuid] = c
	return nil
}
func (f *fakeChatRepo) UpdateSummary(string, int64, string, string, string, time.Time) error {
	return nil
}
func (f *fakeChatRepo) GetChatList(int, int) ([]model.Chat, int64, error) { return nil, 0, nil }
func (f *fakeChatRepo) SoftDeleteByUuid(string) error                     { return nil }

type fakeParticipantRepo struct {
	participants []model.ChatParticipant
}

func (f *fakeParticipantRepo) FindMembers(chatId string) ([]model.ChatParticipant, error) {
	var out []model.ChatParticipant
	for _, p := range f.participants {
		if p.ChatId == chatId {
			out = append(out, p)
		}
	}
	return out, nil
}
func (f *fakeParticipantRepo) FindMemberIds(chatId string) ([]string, error) {
	var out []string
	for _, p := range f.participants {
		if p.ChatId == chatId {
			out = append(out, p.UserId)
		}
	}
	return out, nil
}
func (f *fakeParticipantRepo) IsMember(chatId, userId string) (bool, error) {
	for _, p := range f.participants {
		if p.ChatId == chatId && p.UserId == userId {
			return true, nil
		}
	}
	return false, nil
}
func (f *fakeParticipantRepo) FindChatIdsByUserId(userId string) ([]string, error) {
	var out []string
	for _, p := range f.participants {
		if p.UserId == userId {
			out = append(out, p.ChatId)
		}
	}
	return out, nil
}
func (f *fakeParticipantRepo) CreateParticipant(p *model.ChatParticipant) error {
	// 和唯一索引同语义，重复加入返回冲突
	ok, _ := f.IsMember(p.ChatId, p.UserId)
	if ok {
		return errorx.New(errorx.CodeConflict, "重复加入")
	}
	f.participants = append(f.participants, *p)
	return nil
}
func (f *fakeParticipantRepo) DeleteParticipant(chatId, userId string) error {
	for i, p := range f.participants {
		if p.ChatId == chatId && p.UserId == userId {
			f.participants = append(f.participants[:i], f.participants[i+1:]...)
			return nil
		}
	}
	return nil
}
func (f *fakeParticipantRepo) DeleteByChatId(string) error { return nil }

type fakeCursorRepo struct {
	cursors []model.ReadCursor
}

func (f *fakeCursorRepo) FindCursor(chatId, userId string) (*model.ReadCursor, error) {
	for i := range f.cursors {
		if f.cursors[i].ChatId == chatId && f.cursors[i].UserId == userId {
			return &f.cursors[i], nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "游标不存在")
}
func (f *fakeCursorRepo) FindCursors(chatId string) ([]model.ReadCursor, error) {
	var out []model.ReadCursor
	for _, c := range f.cursors {
		if c.ChatId == chatId {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeCursorRepo) FindCursorsByUserId(userId string) ([]model.ReadCursor, error) {
	var out []model.ReadCursor
	for _, c := range f.cursors {
		if c.UserId == userId {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeCursorRepo) AdvanceCursor(cursor *model.ReadCursor) error {
	for i := range f.cursors {
		if f.cursors[i].ChatId == cursor.ChatId && f.cursors[i].UserId == cursor.UserId {
			// 游标只前进，和条件更新语义一致
			if f.cursors[i].LastReadAt.After(cursor.LastReadAt) {
				return nil
			}
			f.cursors[i].LastReadMessageId = cursor.LastReadMessageId
			f.cursors[i].LastReadAt = cursor.LastReadAt
			return nil
		}
	}
	f.cursors = append(f.cursors, *cursor)
	return nil
}
func (f *fakeCursorRepo) DeleteByChatId(string) error { return nil }

type fakeMessageRepo struct {
	messages []model.Message
}

func (f *fakeMessageRepo) FindByUuid(uuid int64) (*model.Message, error) {
	for i := range f.messages {
		if f.messages[i].Uuid == uuid {
			return &f.messages[i], nil
		}
	}
	return nil, errorx.New(errorx.CodeNotFound, "消息不存在")
}
func (f *fakeMessageRepo) FindPageBefore(string, int64, int) ([]model.Message, error) {
	return nil, nil
}
func (f *fakeMessageRepo) CountAfter(chatId string, after time.Time) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.ChatId == chatId && m.SendAt.After(after) {
			n++
		}
	}
	return n, nil
}
func (f *fakeMessageRepo) CountByChatId(chatId string) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.ChatId == chatId {
			n++
		}
	}
	return n, nil
}
func (f *fakeMessageRepo) LikesTotalByChatId(chatId string) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.ChatId == chatId {
			n += int64(m.LikesCount)
		}
	}
	return n, nil
}
func (f *fakeMessageRepo) CountByMetadataKey(chatId string, key string) (int64, error) {
	var n int64
	for _, m := range f.messages {
		if m.ChatId == chatId && m.Metadata != nil && m.Metadata[key] != nil {
			n++
		}
	}
	return n, nil
}
func (f *fakeMessageRepo) Create(m *model.Message) error {
	f.messages = append(f.messages, *m)
	return nil
}
func (f *fakeMessageRepo) IncrementLikes(int64, int) error                        { return nil }
func (f *fakeMessageRepo) GetMessageList(int, int) ([]model.Message, int64, error) { return nil, 0, nil }
func (f *fakeMessageRepo) FindUuidsByChatId(string) ([]int64, error)              { return nil, nil }
func (f *fakeMessageRepo) DeleteByChatId(string) error                            { return nil }
func (f *fakeMessageRepo) DeleteByUuid(int64) error                               { return nil }

// ==================== 测试环境组装 ====================

type testEnv struct {
	svc             *chatService
	chatRepo        *fakeChatRepo
	participantRepo *fakeParticipantRepo
	cursorRepo      *fakeCursorRepo
	messageRepo     *fakeMessageRepo
}

func newTestEnv() *testEnv {
	chatRepo := &fakeChatRepo{chats: make(map[string]*model.Chat)}
	participantRepo := &fakeParticipantRepo{}
	cursorRepo := &fakeCursorRepo{}
	messageRepo := &fakeMessageRepo{}
	repos := &mysql.Repositories{
		User: &fakeUserRepo{users: map[string]*model.User{
			"U_A": {Uuid: "U_A", Nickname: "阿里"},
			"U_B": {Uuid: "U_B", Nickname: "贝贝"},
			"U_C": {Uuid: "U_C", Nickname: "小陈"},
		}},
		Chat:        chatRepo,
		Participant: participantRepo,
		Cursor:      cursorRepo,
		Message:     messageRepo,
	}
	return &testEnv{
		svc:             NewChatService(repos, nil),
		chatRepo:        chatRepo,
		participantRepo: participantRepo,
		cursorRepo:      cursorRepo,
		messageRepo:     messageRepo,
	}
}

// addMessage 直接造一条落库消息
func (e *testEnv) addMessage(chatId string, uuid int64, at time.Time) {
	e.messageRepo.messages = append(e.messageRepo.messages, model.Message{
		Uuid: uuid, ChatId: chatId, SenderId: "U_A", SenderName: "阿里",
		Kind: model.MessageKindText, Content: "m" + strconv.FormatInt(uuid, 10), SendAt: at,
	})
}

// ==================== 用例 ====================

func TestCreateDirectChatDedupes(t *testing.T) {
	env := newTestEnv()

	first, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindDirect, PeerId: "U_B"})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if len(first.Participants) != 2 {
		t.Fatalf("单聊成员数 = %d, want 2", len(first.Participants))
	}

	// 无论哪一方再次创建都复用已有单聊
	second, err := env.svc.CreateChat("U_B", request.CreateChatRequest{Kind: model.ChatKindDirect, PeerId: "U_A"})
	if err != nil {
		t.Fatalf("CreateChat again: %v", err)
	}
	if second.Uuid != first.Uuid {
		t.Fatalf("单聊没有去重: %s != %s", second.Uuid, first.Uuid)
	}
	if len(env.chatRepo.chats) != 1 {
		t.Fatalf("会话数 = %d, want 1", len(env.chatRepo.chats))
	}
}

func TestCreateDirectChatRejectsSelf(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindDirect, PeerId: "U_A"})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeInvalidParam)
	}
}

func TestCreateDirectChatUnknownPeer(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindDirect, PeerId: "U_X"})
	if errorx.GetCode(err) != errorx.CodeUserNotExist {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeUserNotExist)
	}
}

func TestCreateChatsWithoutInviteCodeDoNotCollide(t *testing.T) {
	env := newTestEnv()

	// 多个无邀请码的会话依次创建，空邀请码不能在唯一索引上互相冲突
	first, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindDirect, PeerId: "U_B"})
	if err != nil {
		t.Fatalf("第一个单聊: %v", err)
	}
	second, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindDirect, PeerId: "U_C"})
	if err != nil {
		t.Fatalf("第二个单聊: %v", err)
	}
	if _, err := env.svc.CreateChat("U_B", request.CreateChatRequest{Kind: model.ChatKindAssistant}); err != nil {
		t.Fatalf("助手会话: %v", err)
	}

	if env.chatRepo.chats[first.Uuid].InviteCode != nil {
		t.Fatal("单聊不该有邀请码")
	}
	if env.chatRepo.chats[second.Uuid].InviteCode != nil {
		t.Fatal("单聊不该有邀请码")
	}
}

func TestCreateGroupChatGeneratesInviteCode(t *testing.T) {
	env := newTestEnv()

	rsp, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "周末球局"})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if len(rsp.InviteCode) != constants.INVITE_CODE_LENGTH {
		t.Fatalf("邀请码 = %q, 长度应为 %d", rsp.InviteCode, constants.INVITE_CODE_LENGTH)
	}
	// 创建者自动成为成员
	ok, _ := env.participantRepo.IsMember(rsp.Uuid, "U_A")
	if !ok {
		t.Fatal("创建者不在成员列表里")
	}
}

func TestCreateGroupChatRequiresName(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeInvalidParam)
	}
}

func TestCreateGroupChatRetriesOnCodeConflict(t *testing.T) {
	env := newTestEnv()
	env.chatRepo.conflictTimes = 2

	rsp, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "撞码群"})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if rsp.InviteCode == "" {
		t.Fatal("重试后邀请码为空")
	}
	if env.chatRepo.createCalls != 3 {
		t.Fatalf("CreateChat 调用次数 = %d, want 3", env.chatRepo.createCalls)
	}
}

func TestCreateAssistantChatIdempotent(t *testing.T) {
	env := newTestEnv()

	first, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindAssistant})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if first.Name != "智能助手" {
		t.Fatalf("默认助手名 = %q", first.Name)
	}

	second, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindAssistant})
	if err != nil {
		t.Fatalf("CreateChat again: %v", err)
	}
	if second.Uuid != first.Uuid {
		t.Fatal("助手会话没有复用")
	}

	// 不同用户各有各的助手
	other, err := env.svc.CreateChat("U_B", request.CreateChatRequest{Kind: model.ChatKindAssistant})
	if err != nil {
		t.Fatalf("CreateChat U_B: %v", err)
	}
	if other.Uuid == first.Uuid {
		t.Fatal("助手会话跨用户串了")
	}
}

func TestJoinByInviteCode(t *testing.T) {
	env := newTestEnv()

	group, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群"})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}

	joined, err := env.svc.JoinByInviteCode("U_B", group.InviteCode)
	if err != nil {
		t.Fatalf("JoinByInviteCode: %v", err)
	}
	if joined.Uuid != group.Uuid || len(joined.Participants) != 2 {
		t.Fatalf("加入后会话 = %s 成员 %v", joined.Uuid, joined.Participants)
	}

	// 重复加入是冲突
	_, err = env.svc.JoinByInviteCode("U_B", group.InviteCode)
	if errorx.GetCode(err) != errorx.CodeConflict {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeConflict)
	}

	// 无效邀请码
	_, err = env.svc.JoinByInviteCode("U_C", "ZZZZZZ")
	if errorx.GetCode(err) != errorx.CodeNotFound {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeNotFound)
	}
}

func TestUnreadCountFollowsCursor(t *testing.T) {
	env := newTestEnv()

	group, err := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群"})
	if err != nil {
		t.Fatalf("CreateChat: %v", err)
	}
	if _, err := env.svc.JoinByInviteCode("U_B", group.InviteCode); err != nil {
		t.Fatalf("Join: %v", err)
	}

	base := time.Now()
	for i := int64(1); i <= 5; i++ {
		env.addMessage(group.Uuid, i, base.Add(time.Duration(i)*time.Second))
	}

	// 没有游标时全部算未读
	unread, err := env.svc.UnreadCount("U_B", group.Uuid)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 5 {
		t.Fatalf("无游标未读 = %d, want 5", unread)
	}

	// 读到第 3 条之后还剩 2 条
	if err := env.svc.MarkRead("U_B", request.MarkReadRequest{ChatId: group.Uuid, MessageId: "3"}); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	unread, err = env.svc.UnreadCount("U_B", group.Uuid)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 2 {
		t.Fatalf("未读 = %d, want 2", unread)
	}
}

func TestMarkReadDoesNotRegress(t *testing.T) {
	env := newTestEnv()

	group, _ := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群"})
	base := time.Now()
	for i := int64(1); i <= 5; i++ {
		env.addMessage(group.Uuid, i, base.Add(time.Duration(i)*time.Second))
	}

	if err := env.svc.MarkRead("U_A", request.MarkReadRequest{ChatId: group.Uuid, MessageId: "4"}); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	// 乱序迟到的旧标记不把游标拉回去
	if err := env.svc.MarkRead("U_A", request.MarkReadRequest{ChatId: group.Uuid, MessageId: "2"}); err != nil {
		t.Fatalf("MarkRead old: %v", err)
	}

	unread, err := env.svc.UnreadCount("U_A", group.Uuid)
	if err != nil {
		t.Fatalf("UnreadCount: %v", err)
	}
	if unread != 1 {
		t.Fatalf("未读 = %d, want 1", unread)
	}
}

func TestMarkReadRejectsForeignMessage(t *testing.T) {
	env := newTestEnv()

	group1, _ := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群一"})
	group2, _ := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群二"})
	env.addMessage(group2.Uuid, 7, time.Now())

	err := env.svc.MarkRead("U_A", request.MarkReadRequest{ChatId: group1.Uuid, MessageId: "7"})
	if errorx.GetCode(err) != errorx.CodeInvalidParam {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeInvalidParam)
	}
}

func TestGetChatRejectsNonMember(t *testing.T) {
	env := newTestEnv()

	group, _ := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群"})
	_, err := env.svc.GetChat("U_B", group.Uuid)
	if errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeForbidden)
	}
}

func TestLeaveChat(t *testing.T) {
	env := newTestEnv()

	group, _ := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群"})
	if _, err := env.svc.JoinByInviteCode("U_B", group.InviteCode); err != nil {
		t.Fatalf("Join: %v", err)
	}

	if err := env.svc.LeaveChat("U_B", group.Uuid); err != nil {
		t.Fatalf("LeaveChat: %v", err)
	}
	ok, _ := env.participantRepo.IsMember(group.Uuid, "U_B")
	if ok {
		t.Fatal("退群后还是成员")
	}

	// 非成员退群是越权
	if err := env.svc.LeaveChat("U_C", group.Uuid); errorx.GetCode(err) != errorx.CodeForbidden {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeForbidden)
	}
}

func TestEngagement(t *testing.T) {
	env := newTestEnv()

	group, _ := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群"})
	base := time.Now()
	env.addMessage(group.Uuid, 1, base)
	env.addMessage(group.Uuid, 2, base.Add(time.Second))
	env.messageRepo.messages[0].LikesCount = 3
	env.messageRepo.messages[1].Metadata = map[string]any{"meetUrl": "https://meet.example.com/r/9"}

	stats, err := env.svc.Engagement("U_A", group.Uuid)
	if err != nil {
		t.Fatalf("Engagement: %v", err)
	}
	if stats.MessageCount != 2 || stats.LikesTotal != 3 || stats.MeetingCount != 1 {
		t.Fatalf("统计 = %+v", stats)
	}
}

func TestGetChatsIncludesUnread(t *testing.T) {
	env := newTestEnv()

	group, _ := env.svc.CreateChat("U_A", request.CreateChatRequest{Kind: model.ChatKindGroup, Name: "群"})
	if _, err := env.svc.JoinByInviteCode("U_B", group.InviteCode); err != nil {
		t.Fatalf("Join: %v", err)
	}
	base := time.Now()
	for i := int64(1); i <= 3; i++ {
		env.addMessage(group.Uuid, i, base.Add(time.Duration(i)*time.Second))
	}

	list, err := env.svc.GetChats("U_B")
	if err != nil {
		t.Fatalf("GetChats: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("会话数 = %d, want 1", len(list))
	}
	if list[0].UnreadCount != 3 {
		t.Fatalf("未读 = %d, want 3", list[0].UnreadCount)
	}
}
