// Package user 实现用户业务逻辑
// 注册、登录、令牌刷新和资料管理，注册和短信登录都走手机验证码校验
package user

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/internal/dto/request"
	"kyte_chat_server/internal/dto/respond"
	"kyte_chat_server/internal/infrastructure/sms"
	"kyte_chat_server/internal/model"
	"kyte_chat_server/pkg/constants"
	"kyte_chat_server/pkg/errorx"
	myjwt "kyte_chat_server/pkg/util/jwt"
	"kyte_chat_server/pkg/util/random"
)

type userService struct {
	repos *mysql.Repositories
	cache myredis.AsyncCacheService
	sms   sms.SmsService
}

func NewUserService(repos *mysql.Repositories, cache myredis.AsyncCacheService, smsService sms.SmsService) *userService {
	return &userService{repos: repos, cache: cache, sms: smsService}
}

// newUserUuid 生成用户 ID，U 开头加 19 位随机串
func newUserUuid() string {
	return "U" + random.GetNowAndLenRandomString(11)
}

// verifySmsCode 校验手机验证码
// 过期或校验次数超限的验证码一律作废，校验通过后删除记录防止重放
func (s *userService) verifySmsCode(telephone, code string) error {
	record, err := s.repos.Verification.FindByTelephone(telephone)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeInvalidParam, "验证码错误或已过期")
		}
		return errorx.ErrServerBusy
	}
	if time.Now().After(record.ExpiresAt) || record.Attempts >= constants.SMS_CODE_MAX_VERIFY {
		return errorx.New(errorx.CodeInvalidParam, "验证码错误或已过期")
	}
	if record.Code != code {
		if err := s.repos.Verification.IncrementAttempts(telephone); err != nil {
			zap.L().Error("累加验证码校验次数失败", zap.Error(err))
		}
		return errorx.New(errorx.CodeInvalidParam, "验证码错误或已过期")
	}
	if err := s.repos.Verification.DeleteByTelephone(telephone); err != nil {
		zap.L().Error("清理验证码记录失败", zap.Error(err))
	}
	return nil
}

// issueTokens 签发访问令牌和刷新令牌
func issueTokens(user *model.User) (accessToken, refreshToken string, err error) {
	accessToken, err = myjwt.GenerateAccessToken(user.Uuid, user.IsAdmin == 1)
	if err != nil {
		return "", "", err
	}
	refreshToken, _, err = myjwt.GenerateRefreshToken(user.Uuid)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// Register 用户注册
func (s *userService) Register(req request.RegisterRequest) (*respond.RegisterRespond, error) {
	if err := s.verifySmsCode(req.Telephone, req.SmsCode); err != nil {
		return nil, err
	}

	// 手机号和邮箱作为登录账号都不允许重复注册
	if _, err := s.repos.User.FindByTelephone(req.Telephone); err == nil {
		return nil, errorx.New(errorx.CodeUserExist, "该手机号已注册")
	} else if errorx.GetCode(err) != errorx.CodeNotFound {
		return nil, errorx.ErrServerBusy
	}
	if req.Email != "" {
		if _, err := s.repos.User.FindByEmail(req.Email); err == nil {
			return nil, errorx.New(errorx.CodeUserExist, "该邮箱已注册")
		} else if errorx.GetCode(err) != errorx.CodeNotFound {
			return nil, errorx.ErrServerBusy
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("密码加密失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	nickname := req.Nickname
	if nickname == "" {
		nickname = "用户" + req.Telephone[len(req.Telephone)-4:]
	}
	user := &model.User{
		Uuid:      newUserUuid(),
		Nickname:  nickname,
		Telephone: req.Telephone,
		Email:     req.Email,
		Password:  string(hashed),
		Avatar:    req.Avatar,
	}
	if err := s.repos.User.CreateUser(user); err != nil {
		if errorx.GetCode(err) == errorx.CodeConflict {
			return nil, errorx.New(errorx.CodeUserExist, "该手机号已注册")
		}
		zap.L().Error("创建用户失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}

	accessToken, refreshToken, err := issueTokens(user)
	if err != nil {
		zap.L().Error("签发令牌失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return &respond.RegisterRespond{
		Uuid:         user.Uuid,
		Nickname:     user.Nickname,
		Telephone:    user.Telephone,
		Email:        user.Email,
		Avatar:       user.Avatar,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// buildLoginRespond 组装登录响应
func buildLoginRespond(user *model.User, accessToken, refreshToken string) *respond.LoginRespond {
	return &respond.LoginRespond{
		Uuid:         user.Uuid,
		Nickname:     user.Nickname,
		Telephone:    user.Telephone,
		Avatar:       user.Avatar,
		Email:        user.Email,
		IsAdmin:      user.IsAdmin,
		Status:       user.Status,
		CreatedAt:    user.CreatedAt.Format(time.DateTime),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}
}

// Login 密码登录，账号是手机号或邮箱
func (s *userService) Login(req request.LoginRequest) (*respond.LoginRespond, error) {
	var user *model.User
	var err error
	switch {
	case req.Telephone != "":
		user, err = s.repos.User.FindByTelephone(req.Telephone)
	case req.Email != "":
		user, err = s.repos.User.FindByEmail(req.Email)
	default:
		return nil, errorx.New(errorx.CodeInvalidParam, "手机号和邮箱至少填一个")
	}
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, errorx.ErrServerBusy
	}
	if !user.CheckPassword(req.Password) {
		return nil, errorx.New(errorx.CodeInvalidPassword, "账号或密码错误")
	}
	if user.Status != 0 {
		return nil, errorx.New(errorx.CodeForbidden, "账号已被禁用")
	}
	accessToken, refreshToken, err := issueTokens(user)
	if err != nil {
		zap.L().Error("签发令牌失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return buildLoginRespond(user, accessToken, refreshToken), nil
}

// SmsLogin 短信验证码登录
// 只允许已注册用户登录，未注册的先走注册流程
func (s *userService) SmsLogin(req request.SmsLoginRequest) (*respond.LoginRespond, error) {
	if err := s.verifySmsCode(req.Telephone, req.SmsCode); err != nil {
		return nil, err
	}
	user, err := s.repos.User.FindByTelephone(req.Telephone)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在，请先注册")
		}
		return nil, errorx.ErrServerBusy
	}
	if user.Status != 0 {
		return nil, errorx.New(errorx.CodeForbidden, "账号已被禁用")
	}
	accessToken, refreshToken, err := issueTokens(user)
	if err != nil {
		zap.L().Error("签发令牌失败", zap.Error(err))
		return nil, errorx.ErrServerBusy
	}
	return buildLoginRespond(user, accessToken, refreshToken), nil
}

// SendSmsCode 发送短信验证码
func (s *userService) SendSmsCode(telephone string) error {
	return s.sms.SendVerificationCode(telephone)
}

// RefreshToken 用 Refresh Token 换新的 Access Token
// 刷新时重新读取用户，管理员标志和禁用状态以当前数据为准
func (s *userService) RefreshToken(refreshToken string) (string, error) {
	claims, err := myjwt.ParseToken(refreshToken)
	if err != nil {
		return "", errorx.New(errorx.CodeUnauthorized, "刷新令牌无效")
	}
	if claims.Subject != "refresh_token" {
		return "", errorx.New(errorx.CodeUnauthorized, "刷新令牌无效")
	}
	user, err := s.repos.User.FindByUuid(claims.UserID)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return "", errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return "", errorx.ErrServerBusy
	}
	if user.Status != 0 {
		return "", errorx.New(errorx.CodeForbidden, "账号已被禁用")
	}
	accessToken, err := myjwt.GenerateAccessToken(user.Uuid, user.IsAdmin == 1)
	if err != nil {
		zap.L().Error("签发令牌失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	return accessToken, nil
}

// buildUserRespond 组装用户信息响应
func buildUserRespond(user *model.User) respond.UserRespond {
	rsp := respond.UserRespond{
		Uuid:      user.Uuid,
		Nickname:  user.Nickname,
		Telephone: user.Telephone,
		Email:     user.Email,
		Avatar:    user.Avatar,
		IsAdmin:   user.IsAdmin,
		Status:    user.Status,
		CreatedAt: user.CreatedAt.Format(time.DateTime),
	}
	if user.LastOnlineAt.Valid {
		rsp.LastOnlineAt = user.LastOnlineAt.Time.Format(time.DateTime)
	}
	if user.LastOfflineAt.Valid {
		rsp.LastOfflineAt = user.LastOfflineAt.Time.Format(time.DateTime)
	}
	return rsp
}

// GetUserInfo 获取单个用户信息
func (s *userService) GetUserInfo(uuid string) (*respond.UserRespond, error) {
	user, err := s.repos.User.FindByUuid(uuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return nil, errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return nil, errorx.ErrServerBusy
	}
	rsp := buildUserRespond(user)
	return &rsp, nil
}

// UpdateUser 更新用户资料
// 只更新请求里带的字段，推送令牌的加密在仓储层完成
func (s *userService) UpdateUser(uuid string, req request.UpdateUserRequest) error {
	user, err := s.repos.User.FindByUuid(uuid)
	if err != nil {
		if errorx.GetCode(err) == errorx.CodeNotFound {
			return errorx.New(errorx.CodeUserNotExist, "用户不存在")
		}
		return errorx.ErrServerBusy
	}
	if req.Nickname != "" {
		user.Nickname = req.Nickname
	}
	if req.Avatar != "" {
		user.Avatar = req.Avatar
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.PushToken != "" {
		user.PushToken = req.PushToken
	}
	if err := s.repos.User.UpdateUser(user); err != nil {
		zap.L().Error("更新用户资料失败", zap.String("uuid", uuid), zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// AdminListUsers 分页获取用户列表（管理端）
func (s *userService) AdminListUsers(req request.AdminPageRequest) (*respond.AdminUserListRespond, error) {
	page, pageSize := req.Page, req.PageSize
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	users, total, err := s.repos.User.GetUserList(page, pageSize)
	if err != nil {
		return nil, errorx.ErrServerBusy
	}
	list := make([]respond.UserRespond, 0, len(users))
	for i := range users {
		list = append(list, buildUserRespond(&users[i]))
	}
	return &respond.AdminUserListRespond{
		Total:    total,
		Page:     page,
		PageSize: pageSize,
		Users:    list,
	}, nil
}

// AdminSetUserStatus 批量启用/禁用用户（管理端）
func (s *userService) AdminSetUserStatus(uuids []string, status int8) error {
	if len(uuids) == 0 {
		return errorx.ErrInvalidParam
	}
	if status != 0 && status != 1 {
		return errorx.ErrInvalidParam
	}
	if err := s.repos.User.UpdateUserStatusByUuids(uuids, status); err != nil {
		zap.L().Error("批量更新用户状态失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}

// AdminDeleteUsers 批量软删除用户（管理端）
func (s *userService) AdminDeleteUsers(uuids []string) error {
	if len(uuids) == 0 {
		return errorx.ErrInvalidParam
	}
	if err := s.repos.User.SoftDeleteUserByUuids(uuids); err != nil {
		zap.L().Error("批量删除用户失败", zap.Error(err))
		return errorx.ErrServerBusy
	}
	return nil
}
