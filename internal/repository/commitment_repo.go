package repository

import (
	"context"

	"gorm.io/gorm"

	"stride/backend/internal/model"
)

// CommitmentRepository 每周固定投入数据访问接口（引擎只读）
type CommitmentRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.Commitment, error)
}

type commitmentRepo struct {
	db *gorm.DB
}

// NewCommitmentRepo 创建 CommitmentRepository 实例
func NewCommitmentRepo(db *gorm.DB) CommitmentRepository {
	return &commitmentRepo{db: db}
}

func (r *commitmentRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.Commitment, error) {
	commitments := []model.Commitment{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("hours_per_week DESC, name ASC").
		Find(&commitments).Error
	return commitments, err
}
