package redis

import (
	"testing"

	"go.uber.org/zap"

	"stride/backend/config"
)

func TestRetroplanKey(t *testing.T) {
	if got := RetroplanKey("goal-1"); got != "retroplan:goal:goal-1" {
		t.Errorf("缓存键不符: %s", got)
	}
}

func TestNewClient_Unreachable(t *testing.T) {
	// 保留端口 1 不会有 Redis 监听
	_, err := NewClient(&config.RedisConfig{Addr: "127.0.0.1:1"}, zap.NewNop())
	if err == nil {
		t.Fatal("无法连接时 NewClient 应返回错误")
	}
}
