package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"stride/backend/config"
)

// Client Redis 客户端封装
// 当前用于逆向规划结果缓存与生成接口限流
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 逆向规划缓存 ──

const retroplanPrefix = "retroplan:goal:"

// RetroplanKey 返回目标对应的缓存键
func RetroplanKey(goalID string) string { return retroplanPrefix + goalID }

// GetRetroplan 读取缓存的计划（JSON）；未命中返回 nil, nil
func (c *Client) GetRetroplan(ctx context.Context, goalID string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, RetroplanKey(goalID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// SetRetroplan 覆盖写入计划缓存（后写者胜出，不做版本比较）
func (c *Client) SetRetroplan(ctx context.Context, goalID string, payload []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, RetroplanKey(goalID), payload, ttl).Err()
}

// DeleteRetroplan 失效计划缓存
func (c *Client) DeleteRetroplan(ctx context.Context, goalID string) error {
	return c.rdb.Del(ctx, RetroplanKey(goalID)).Err()
}

// ── 限流 ──

// CheckRateLimit 基于有序集合的滑动窗口限流，返回本次请求是否放行
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).UnixMilli()
	member := strconv.FormatInt(now.UnixNano(), 10) + "-" + uuid.NewString()

	var card *goredis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))
		card = pipe.ZCard(ctx, key)
		pipe.ZAdd(ctx, key, goredis.Z{Score: float64(now.UnixMilli()), Member: member})
		pipe.Expire(ctx, key, window)
		return nil
	})
	if err != nil {
		return false, err
	}

	return card.Val() < int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
