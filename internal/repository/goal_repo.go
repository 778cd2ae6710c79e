package repository

import (
	"context"

	"gorm.io/gorm"

	"stride/backend/internal/model"
)

// GoalRepository 储蓄目标数据访问接口（目标 CRUD 由目标模块负责，这里只读）
type GoalRepository interface {
	GetByID(ctx context.Context, id string) (*model.Goal, error)
}

type goalRepo struct {
	db *gorm.DB
}

// NewGoalRepo 创建 GoalRepository 实例
func NewGoalRepo(db *gorm.DB) GoalRepository {
	return &goalRepo{db: db}
}

func (r *goalRepo) GetByID(ctx context.Context, id string) (*model.Goal, error) {
	var goal model.Goal
	err := r.db.WithContext(ctx).Where("goal_id = ?", id).First(&goal).Error
	if err != nil {
		return nil, err
	}
	return &goal, nil
}
