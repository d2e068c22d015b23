package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"kyte_chat_server/pkg/errorx"
)

// fakeClock 手动拨动的时钟
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

// fakeCache 只实现计数的内存缓存，failing 置位时模拟 Redis 故障
type fakeCache struct {
	counts  map[string]int64
	failing bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{counts: make(map[string]int64)}
}

func (f *fakeCache) IncrementWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.failing {
		return 0, errors.New("connection refused")
	}
	f.counts[key]++
	return f.counts[key], nil
}

func (f *fakeCache) Set(context.Context, string, string, time.Duration) error { return nil }
func (f *fakeCache) Get(context.Context, string) (string, error)              { return "", nil }
func (f *fakeCache) GetOrError(context.Context, string) (string, error)       { return "", nil }
func (f *fakeCache) Delete(context.Context, string) error                     { return nil }
func (f *fakeCache) DeleteByPattern(context.Context, string) error            { return nil }
func (f *fakeCache) AddToSet(context.Context, string, ...interface{}) error   { return nil }
func (f *fakeCache) GetSetMembers(context.Context, string) ([]string, error)  { return nil, nil }
func (f *fakeCache) RemoveFromSet(context.Context, string, ...interface{}) error {
	return nil
}

func TestLimiterAllowWithinLimit(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewLimiter(newFakeCache(), clock, time.Minute, 3)

	for i := 0; i < 3; i++ {
		if err := limiter.Allow(context.Background(), "auth", "1.2.3.4"); err != nil {
			t.Fatalf("第 %d 次请求被限流: %v", i+1, err)
		}
	}
}

func TestLimiterBlocksBeyondLimit(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewLimiter(newFakeCache(), clock, time.Minute, 2)

	_ = limiter.Allow(context.Background(), "sms", "13000000000")
	_ = limiter.Allow(context.Background(), "sms", "13000000000")

	err := limiter.Allow(context.Background(), "sms", "13000000000")
	if err == nil {
		t.Fatal("超限请求没有被拦截")
	}
	if errorx.GetCode(err) != errorx.CodeRateLimited {
		t.Fatalf("错误码 = %d, want %d", errorx.GetCode(err), errorx.CodeRateLimited)
	}
}

func TestLimiterWindowRollover(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewLimiter(newFakeCache(), clock, time.Minute, 1)

	if err := limiter.Allow(context.Background(), "auth", "1.2.3.4"); err != nil {
		t.Fatalf("首次请求被限流: %v", err)
	}
	if err := limiter.Allow(context.Background(), "auth", "1.2.3.4"); err == nil {
		t.Fatal("同窗口第二次请求没有被拦截")
	}

	// 时间进入下一个窗口，额度恢复
	clock.now = clock.now.Add(time.Minute)
	if err := limiter.Allow(context.Background(), "auth", "1.2.3.4"); err != nil {
		t.Fatalf("窗口翻转后请求被限流: %v", err)
	}
}

func TestLimiterIsolatesSubjects(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	limiter := NewLimiter(newFakeCache(), clock, time.Minute, 1)

	_ = limiter.Allow(context.Background(), "auth", "1.2.3.4")
	if err := limiter.Allow(context.Background(), "auth", "5.6.7.8"); err != nil {
		t.Fatalf("别的主体被误伤: %v", err)
	}
}

func TestLimiterFailsOpenOnCacheError(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	cache := newFakeCache()
	cache.failing = true
	limiter := NewLimiter(cache, clock, time.Minute, 1)

	// 缓存故障时放行，限流器不能成为单点
	for i := 0; i < 5; i++ {
		if err := limiter.Allow(context.Background(), "auth", "1.2.3.4"); err != nil {
			t.Fatalf("缓存故障时请求被拦截: %v", err)
		}
	}
}
