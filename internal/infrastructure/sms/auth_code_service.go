package sms

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	openapi "github.com/alibabacloud-go/darabonba-openapi/v2/client"
	dysmsapi20170525 "github.com/alibabacloud-go/dysmsapi-20170525/v4/client"
	util "github.com/alibabacloud-go/tea-utils/v2/service"
	"github.com/alibabacloud-go/tea/tea"
	"go.uber.org/zap"

	"kyte_chat_server/internal/config"
	"kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/pkg/errorx"
	"kyte_chat_server/pkg/util/random"
)

// 验证码有效期和重发间隔
const (
	codeTTL      = 5 * time.Minute
	resendWindow = time.Minute
)

// prepareCode 生成验证码并落库
// Redis 占位做重发间隔控制，MySQL 记录验证码本体和校验次数
// 先占位后落库，极高并发下不会绕过重发限制
func prepareCode(cache myredis.CacheService, repo mysql.VerificationRepository, telephone string) (string, error) {
	key := "auth_code_" + telephone
	existing, err := cache.Get(context.Background(), key)
	if err != nil {
		zap.L().Error("缓存频率检查异常", zap.Error(err), zap.String("phone", telephone))
		return "", errorx.ErrServerBusy
	}
	if existing != "" {
		return "", errorx.New(errorx.CodeInvalidParam, "目前还不能发送验证码，请稍后重试或输入已发送的验证码")
	}

	code := strconv.Itoa(random.GetRandomInt(6))
	if err := cache.Set(context.Background(), key, code, resendWindow); err != nil {
		zap.L().Error("缓存写入验证码失败", zap.Error(err))
		return "", errorx.ErrServerBusy
	}
	if err := repo.SaveCode(telephone, code, time.Now().Add(codeTTL)); err != nil {
		_ = cache.Delete(context.Background(), key)
		return "", err
	}
	return code, nil
}

// localSmsService 本地 Mock 实现
// 验证码打到控制台，不调用第三方短信
type localSmsService struct {
	cache myredis.CacheService
	repo  mysql.VerificationRepository
}

func (s *localSmsService) SendVerificationCode(telephone string) error {
	code, err := prepareCode(s.cache, s.repo, telephone)
	if err != nil {
		return err
	}
	fmt.Printf("【MockSMS】手机号: %s, 验证码: %s\n", telephone, code)
	return nil
}

func shouldUseMock(auth config.AuthCodeConfig) bool {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("KYTECHAT_SMS_MODE")))
	if mode == "mock" || mode == "local" || mode == "test" {
		return true
	}
	// 没配真实 AK 时默认走 mock，便于本机跑通注册/短信登录链路
	ak := strings.ToLower(strings.TrimSpace(auth.AccessKeyID))
	ask := strings.ToLower(strings.TrimSpace(auth.AccessKeySecret))
	if ak == "" || ask == "" {
		return true
	}
	if strings.Contains(ak, "your accesskey") || strings.Contains(ask, "your accesskey") {
		return true
	}
	return false
}

// aliyunSmsService 阿里云短信服务实现
type aliyunSmsService struct {
	client *dysmsapi20170525.Client
	cache  myredis.CacheService
	repo   mysql.VerificationRepository
}

// Init 初始化短信服务
// cacheService: 重发间隔控制
// repo: 验证码存储
// 未配置阿里云 AK 时返回本地 Mock 实现
func Init(cacheService myredis.CacheService, repo mysql.VerificationRepository) (SmsService, error) {
	authCfg := config.GetConfig().AuthCodeConfig
	if shouldUseMock(authCfg) {
		zap.L().Warn("SMS Service 使用本地 Mock 模式（验证码打印到控制台，不调用第三方短信）")
		return &localSmsService{cache: cacheService, repo: repo}, nil
	}

	conf := &openapi.Config{
		AccessKeyId:     tea.String(authCfg.AccessKeyID),
		AccessKeySecret: tea.String(authCfg.AccessKeySecret),
	}
	conf.Endpoint = tea.String("dysmsapi.aliyuncs.com")
	client, err := dysmsapi20170525.NewClient(conf)
	if err != nil {
		zap.L().Error("Aliyun SMS Client Init Failed", zap.Error(err))
		return nil, err
	}

	return &aliyunSmsService{client: client, cache: cacheService, repo: repo}, nil
}

// SendVerificationCode 发送验证码核心逻辑
// 包含：重发间隔检查、验证码生成落库、阿里云 API 调用以及失败回滚
func (s *aliyunSmsService) SendVerificationCode(telephone string) error {
	if s.client == nil {
		zap.L().Error("短信服务调用失败：smsClient 未初始化")
		return errorx.New(errorx.CodeServerBusy, "短信服务未初始化")
	}

	code, err := prepareCode(s.cache, s.repo, telephone)
	if err != nil {
		return err
	}

	// 未配置签名和模板时使用阿里云测试模板
	authConfig := config.GetConfig().AuthCodeConfig
	signName := authConfig.SignName
	if signName == "" {
		signName = "阿里云短信测试"
	}
	templateCode := authConfig.TemplateCode
	if templateCode == "" {
		templateCode = "SMS_154950909"
	}

	sendSmsRequest := &dysmsapi20170525.SendSmsRequest{
		SignName:     tea.String(signName),
		TemplateCode: tea.String(templateCode),
		PhoneNumbers: tea.String(telephone),
		// 对应模板中的变量 ${code}
		TemplateParam: tea.String("{\"code\":\"" + code + "\"}"),
	}

	runtime := &util.RuntimeOptions{}
	rsp, err := s.client.SendSmsWithOptions(sendSmsRequest, runtime)
	if err != nil {
		zap.L().Error("调用阿里云短信接口发生系统级错误", zap.Error(err))
		// 发送失败必须删除占位 Key，否则一分钟内无法重新触发
		_ = s.cache.Delete(context.Background(), "auth_code_"+telephone)
		return errorx.ErrServerBusy
	}

	// err 为 nil 也要看 rsp.Body.Code 是否为 "OK"
	zap.L().Info("短信发送接口响应", zap.String("response", *util.ToJSONString(rsp)))

	return nil
}
