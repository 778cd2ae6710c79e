package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stride/backend/internal/model"
)

// RetroplanRepository 逆向规划结果数据访问接口
type RetroplanRepository interface {
	GetByGoalID(ctx context.Context, goalID string) (*model.Retroplan, error)
	// Upsert 按 goal_id 整行覆盖（后写者胜出，不做乐观锁）
	Upsert(ctx context.Context, plan *model.Retroplan) error
	DeleteByGoalID(ctx context.Context, goalID string) error
}

type retroplanRepo struct {
	db *gorm.DB
}

// NewRetroplanRepo 创建 RetroplanRepository 实例
func NewRetroplanRepo(db *gorm.DB) RetroplanRepository {
	return &retroplanRepo{db: db}
}

func (r *retroplanRepo) GetByGoalID(ctx context.Context, goalID string) (*model.Retroplan, error) {
	var plan model.Retroplan
	err := r.db.WithContext(ctx).Where("goal_id = ?", goalID).First(&plan).Error
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *retroplanRepo) Upsert(ctx context.Context, plan *model.Retroplan) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "goal_id"}},
		UpdateAll: true,
	}).Create(plan).Error
}

func (r *retroplanRepo) DeleteByGoalID(ctx context.Context, goalID string) error {
	return r.db.WithContext(ctx).
		Where("goal_id = ?", goalID).
		Delete(&model.Retroplan{}).Error
}
