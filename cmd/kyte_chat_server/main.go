package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kyte_chat_server/internal/config"
	dao "kyte_chat_server/internal/dao/mysql"
	myredis "kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/internal/handler"
	"kyte_chat_server/internal/https_server"
	"kyte_chat_server/internal/infrastructure/ai"
	"kyte_chat_server/internal/infrastructure/logger"
	"kyte_chat_server/internal/infrastructure/push"
	"kyte_chat_server/internal/infrastructure/ratelimit"
	"kyte_chat_server/internal/infrastructure/sms"
	"kyte_chat_server/internal/router"
	"kyte_chat_server/internal/service"
	"kyte_chat_server/internal/service/hub"
	"kyte_chat_server/pkg/util/jwt"
	"kyte_chat_server/pkg/util/snowflake"

	"go.uber.org/zap"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()

	// 2. 初始化日志
	if err := logger.Init(&conf.LogConfig, conf.MainConfig.Mode); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	zap.L().Info("日志初始化成功")

	// 3. 初始化雪花节点，消息 ID 依赖它
	snowflake.Init()

	// 4. 初始化 JWT
	jwt.Init(conf.JWTConfig.Secret, conf.JWTConfig.AccessTokenExpiry, conf.JWTConfig.RefreshTokenExpiry)
	zap.L().Info("JWT 初始化成功")

	// 5. 初始化数据库
	repos := dao.Init()
	zap.L().Info("数据库初始化成功")

	// 6. 初始化 Redis
	myredis.Init()
	cache := myredis.GetCacheService()
	zap.L().Info("Redis 初始化成功")

	// 7. 初始化 SMS Service
	smsService, err := sms.Init(cache, repos.Verification)
	if err != nil {
		zap.L().Fatal("SMS Service 初始化失败", zap.Error(err))
	}
	zap.L().Info("SMS Service 初始化成功")

	// 8. 初始化离线推送和 AI 客户端
	notifier := push.Init()
	completer := ai.Init()

	// 9. 初始化 ChatServer
	// channel 模式单进程内存转发，kafka 模式经消息队列广播
	wsHub := hub.NewHub()
	var broker hub.MessageBroker
	var kafkaClient *hub.KafkaClient
	if conf.KafkaConfig.MessageMode == "kafka" {
		kafkaClient = hub.NewKafkaClient()
		kafkaClient.KafkaInit()
		broker = hub.NewKafkaBroker(wsHub, kafkaClient)
	} else {
		broker = hub.NewChannelBroker(wsHub)
	}
	chatServer := hub.NewChatServer(wsHub, broker, repos.Participant, repos.User, cache)
	zap.L().Info("ChatServer 初始化成功", zap.String("mode", conf.KafkaConfig.MessageMode))

	// 10. 初始化 Service 层（依赖注入）
	service.InitServices(repos, cache, smsService, notifier, completer, chatServer)
	zap.L().Info("Service 层初始化成功")

	// 11. 组装 Handler、限流器和路由
	handlers := handler.NewHandlers(service.Svc, chatServer)
	if err := handler.InitTrans("zh"); err != nil {
		zap.L().Fatal("validator 翻译器初始化失败", zap.Error(err))
	}
	window := conf.RateLimitConfig.Window * time.Second
	authLimiter := ratelimit.NewLimiter(cache, ratelimit.SystemClock(), window, conf.RateLimitConfig.AuthPerWindow)
	smsLimiter := ratelimit.NewLimiter(cache, ratelimit.SystemClock(), window, conf.RateLimitConfig.SmsPerWindow)
	rt := router.NewRouter(handlers, authLimiter, smsLimiter)

	engine := https_server.Init(rt)
	zap.L().Info("HTTP 服务器初始化成功")

	// 12. 启动广播循环和 HTTP 服务
	go chatServer.Start()

	go func() {
		addr := fmt.Sprintf("%s:%d", conf.MainConfig.Host, conf.MainConfig.Port)
		if err := engine.Run(addr); err != nil {
			zap.L().Fatal("server running fault", zap.Error(err))
		}
	}()

	// 13. 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zap.L().Info("关闭服务器...")

	if kafkaClient != nil {
		kafkaClient.KafkaClose()
	}
	chatServer.Close()

	zap.L().Info("服务器已关闭")
}
