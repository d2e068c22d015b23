// Package ratelimit 提供固定窗口限流器
// 计数存 Redis，多节点部署时共享同一份配额
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"kyte_chat_server/internal/dao/redis"
	"kyte_chat_server/pkg/errorx"
)

// Clock 时钟接口，测试时注入假时钟控制窗口翻转
type Clock interface {
	Now() time.Time
}

// systemClock 真实时钟
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock 返回真实时钟实例
func SystemClock() Clock { return systemClock{} }

// Limiter 固定窗口限流器
// 同一 (scope, subject) 在一个窗口内最多放行 limit 次
type Limiter struct {
	cache  redis.CacheService
	clock  Clock
	window time.Duration
	limit  int
}

// NewLimiter 创建限流器
// cache: 计数存储
// clock: 时钟，生产传 SystemClock()
// window: 窗口长度
// limit: 窗口内最大放行次数
func NewLimiter(cache redis.CacheService, clock Clock, window time.Duration, limit int) *Limiter {
	return &Limiter{cache: cache, clock: clock, window: window, limit: limit}
}

// Allow 判断是否放行
// scope 区分限流维度（如 "auth"、"sms"），subject 是被限对象（IP 或手机号）
// 超限返回 CodeRateLimited 错误
func (l *Limiter) Allow(ctx context.Context, scope, subject string) error {
	// 窗口编号取当前时间整除窗口长度，所有节点对齐到同一窗口边界
	windowNo := l.clock.Now().UnixNano() / int64(l.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", scope, subject, windowNo)

	count, err := l.cache.IncrementWindow(ctx, key, l.window)
	if err != nil {
		// 限流器故障时放行，不让 Redis 抖动放大成全站不可用
		return nil
	}
	if count > int64(l.limit) {
		return errorx.Newf(errorx.CodeRateLimited, "请求过于频繁，请稍后重试")
	}
	return nil
}
