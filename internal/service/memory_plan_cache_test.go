package service

import (
	"context"
	"encoding/json"
	"sync"

	"stride/backend/internal/dto"
)

// ── 进程内 ──

type memoryPlanCache struct {
	mu    sync.RWMutex
	plans map[string][]byte
}

// NewMemoryPlanCache 进程内缓存；以 JSON 保存副本，调用方修改返回值不影响缓存
func NewMemoryPlanCache() PlanCache {
	return &memoryPlanCache{plans: make(map[string][]byte)}
}

func (c *memoryPlanCache) Get(_ context.Context, goalID string) (*dto.Retroplan, error) {
	c.mu.RLock()
	payload, ok := c.plans[goalID]
	c.mu.RUnlock()
	if !ok {
		return nil, ErrPlanCacheMiss
	}
	var plan dto.Retroplan
	if err := json.Unmarshal(payload, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *memoryPlanCache) Set(_ context.Context, plan *dto.Retroplan) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.plans[plan.GoalID] = payload
	c.mu.Unlock()
	return nil
}

func (c *memoryPlanCache) Invalidate(_ context.Context, goalID string) error {
	c.mu.Lock()
	delete(c.plans, goalID)
	c.mu.Unlock()
	return nil
}
