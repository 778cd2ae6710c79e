package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"stride/backend/pkg/redis"
	"stride/backend/pkg/response"
)

// RateLimit 基于 Redis 滑动窗口的速率限制中间件
// limit: 窗口内允许的最大请求数
// window: 滑动窗口时长
// rdb 为 nil 或 Redis 出错时降级为进程内令牌桶（按 owner 或 IP 区分）
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	local := newLocalLimiter(limit, window)

	return func(c *gin.Context) {
		if limit <= 0 || window <= 0 {
			c.Next()
			return
		}

		subject := rateLimitSubject(c)
		allowed := false
		if rdb != nil {
			key := fmt.Sprintf("rate_limit:%s:%s", subject, c.FullPath())
			ok, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
			if err == nil {
				allowed = ok
			} else {
				logger.Warn("Redis 限流失败，降级为进程内限流", zap.Error(err))
				allowed = local.allow(subject + ":" + c.FullPath())
			}
		} else {
			allowed = local.allow(subject + ":" + c.FullPath())
		}

		if !allowed {
			response.TooManyRequests(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// rateLimitSubject 已认证请求按 owner 限流，否则按客户端 IP
func rateLimitSubject(c *gin.Context) string {
	if v, ok := c.Get(ContextKeyOwnerID); ok {
		if s, ok := v.(string); ok && s != "" {
			return "owner:" + s
		}
	}
	return "ip:" + c.ClientIP()
}

// ── 进程内令牌桶 ──

// 空闲超过一个窗口的令牌桶已重新装满，删除后再创建的行为相同
type localLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localEntry
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type localEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func newLocalLimiter(limit int, window time.Duration) *localLimiter {
	l := &localLimiter{
		limiters: make(map[string]*localEntry),
		burst:    limit,
		idle:     window,
		now:      time.Now,
	}
	if limit > 0 && window > 0 {
		l.every = rate.Every(window / time.Duration(limit))
	}
	return l
}

func (l *localLimiter) allow(key string) bool {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.idle {
		l.sweep(now)
	}
	e, ok := l.limiters[key]
	if !ok {
		e = &localEntry{lim: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.lim.AllowN(now, 1)
}

// sweep 删除空闲超过一个窗口的主体，调用方持有锁
func (l *localLimiter) sweep(now time.Time) {
	for key, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idle {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}
