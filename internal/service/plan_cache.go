package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"stride/backend/internal/dto"
	"stride/backend/internal/model"
	"stride/backend/internal/repository"
	"stride/backend/pkg/redis"
)

// ErrPlanCacheMiss 缓存中没有该目标的计划
var ErrPlanCacheMiss = errors.New("计划缓存未命中")

// PlanCache 逆向规划结果缓存。
// 每个目标只保留最近一次生成的结果，写入为整体覆盖（后写者胜出）。
type PlanCache interface {
	Get(ctx context.Context, goalID string) (*dto.Retroplan, error)
	Set(ctx context.Context, plan *dto.Retroplan) error
	Invalidate(ctx context.Context, goalID string) error
}

// ── Redis + 数据库 ──

type storePlanCache struct {
	rdb    *redis.Client // 可为 nil，此时只读写数据库
	repo   repository.RetroplanRepository
	ttl    time.Duration
	logger *zap.Logger
}

// NewPlanCache 创建以 retroplans 表为持久层、Redis 为读缓存的 PlanCache
func NewPlanCache(rdb *redis.Client, repo repository.RetroplanRepository, ttl time.Duration, logger *zap.Logger) PlanCache {
	return &storePlanCache{rdb: rdb, repo: repo, ttl: ttl, logger: logger}
}

func (c *storePlanCache) Get(ctx context.Context, goalID string) (*dto.Retroplan, error) {
	if c.rdb != nil {
		payload, err := c.rdb.GetRetroplan(ctx, goalID)
		if err != nil {
			c.logger.Warn("读取 Redis 计划缓存失败，回退数据库", zap.String("goal_id", goalID), zap.Error(err))
		} else if payload != nil {
			var plan dto.Retroplan
			if err := json.Unmarshal(payload, &plan); err == nil {
				return &plan, nil
			}
			c.logger.Warn("Redis 计划缓存内容损坏，回退数据库", zap.String("goal_id", goalID))
		}
	}

	row, err := c.repo.GetByGoalID(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPlanCacheMiss
		}
		return nil, err
	}
	plan, err := retroplanFromModel(row)
	if err != nil {
		return nil, err
	}

	c.writeRedis(ctx, plan)
	return plan, nil
}

func (c *storePlanCache) Set(ctx context.Context, plan *dto.Retroplan) error {
	row, err := retroplanToModel(plan)
	if err != nil {
		return err
	}
	if err := c.repo.Upsert(ctx, row); err != nil {
		return err
	}
	c.writeRedis(ctx, plan)
	return nil
}

func (c *storePlanCache) Invalidate(ctx context.Context, goalID string) error {
	if err := c.repo.DeleteByGoalID(ctx, goalID); err != nil {
		return err
	}
	if c.rdb != nil {
		if err := c.rdb.DeleteRetroplan(ctx, goalID); err != nil {
			c.logger.Warn("删除 Redis 计划缓存失败", zap.String("goal_id", goalID), zap.Error(err))
		}
	}
	return nil
}

// writeRedis Redis 失败只记日志，数据库仍是权威来源
func (c *storePlanCache) writeRedis(ctx context.Context, plan *dto.Retroplan) {
	if c.rdb == nil {
		return
	}
	payload, err := json.Marshal(plan)
	if err != nil {
		c.logger.Warn("序列化计划失败", zap.String("goal_id", plan.GoalID), zap.Error(err))
		return
	}
	if err := c.rdb.SetRetroplan(ctx, plan.GoalID, payload, c.ttl); err != nil {
		c.logger.Warn("写入 Redis 计划缓存失败", zap.String("goal_id", plan.GoalID), zap.Error(err))
	}
}

// ── 模型转换 ──

func retroplanToModel(plan *dto.Retroplan) (*model.Retroplan, error) {
	milestones, err := json.Marshal(plan.Milestones)
	if err != nil {
		return nil, fmt.Errorf("序列化里程碑失败: %w", err)
	}
	counts, err := json.Marshal(plan.WeekCategoryCounts)
	if err != nil {
		return nil, fmt.Errorf("序列化分类统计失败: %w", err)
	}
	risks, err := json.Marshal(plan.RiskFactors)
	if err != nil {
		return nil, fmt.Errorf("序列化风险因素失败: %w", err)
	}

	return &model.Retroplan{
		RetroplanID:           plan.ID,
		GoalID:                plan.GoalID,
		OwnerID:               plan.OwnerID,
		StartDate:             plan.StartDate,
		Deadline:              plan.Deadline,
		GeneratedAt:           plan.GeneratedAt,
		GoalAmount:            plan.GoalAmount,
		TotalEarned:           plan.TotalEarned,
		HourlyRate:            plan.HourlyRate,
		SavingsContribution:   plan.SavingsContribution,
		TotalWeeks:            plan.TotalWeeks,
		WeeksRemaining:        plan.WeeksRemaining,
		EffectiveGoalForWork:  plan.EffectiveGoalForWork,
		FeasibilityScore:      plan.FeasibilityScore,
		FrontLoadedPercentage: plan.FrontLoadedPercentage,
		Milestones:            datatypes.JSON(milestones),
		WeekCategoryCounts:    datatypes.JSON(counts),
		RiskFactors:           datatypes.JSON(risks),
	}, nil
}

func retroplanFromModel(row *model.Retroplan) (*dto.Retroplan, error) {
	plan := &dto.Retroplan{
		ID:                    row.RetroplanID,
		GoalID:                row.GoalID,
		OwnerID:               row.OwnerID,
		StartDate:             row.StartDate,
		Deadline:              row.Deadline,
		GeneratedAt:           row.GeneratedAt,
		GoalAmount:            row.GoalAmount,
		TotalEarned:           row.TotalEarned,
		HourlyRate:            row.HourlyRate,
		SavingsContribution:   row.SavingsContribution,
		EffectiveGoalForWork:  row.EffectiveGoalForWork,
		TotalWeeks:            row.TotalWeeks,
		WeeksRemaining:        row.WeeksRemaining,
		FeasibilityScore:      row.FeasibilityScore,
		FrontLoadedPercentage: row.FrontLoadedPercentage,
	}
	if err := json.Unmarshal(row.Milestones, &plan.Milestones); err != nil {
		return nil, fmt.Errorf("解析里程碑失败: %w", err)
	}
	if err := json.Unmarshal(row.WeekCategoryCounts, &plan.WeekCategoryCounts); err != nil {
		return nil, fmt.Errorf("解析分类统计失败: %w", err)
	}
	if err := json.Unmarshal(row.RiskFactors, &plan.RiskFactors); err != nil {
		return nil, fmt.Errorf("解析风险因素失败: %w", err)
	}
	return plan, nil
}
