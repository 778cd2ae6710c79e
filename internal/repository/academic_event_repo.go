package repository

import (
	"context"

	"gorm.io/gorm"

	"stride/backend/internal/model"
	"stride/backend/pkg/caldate"
)

// AcademicEventRepository 学业事件数据访问接口
type AcademicEventRepository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.AcademicEvent, error)
	// ListByOwnerInRange 返回与 [from, to] 有重叠的事件；零值边界表示不限
	ListByOwnerInRange(ctx context.Context, ownerID string, from, to caldate.Date) ([]model.AcademicEvent, error)
	// ReplaceImported 在事务中替换指定来源的事件：先删除旧数据，再批量插入新数据
	ReplaceImported(ctx context.Context, ownerID, source string, events []model.AcademicEvent) error
}

type academicEventRepo struct {
	db *gorm.DB
}

// NewAcademicEventRepo 创建 AcademicEventRepository 实例
func NewAcademicEventRepo(db *gorm.DB) AcademicEventRepository {
	return &academicEventRepo{db: db}
}

func (r *academicEventRepo) ListByOwner(ctx context.Context, ownerID string) ([]model.AcademicEvent, error) {
	events := []model.AcademicEvent{}
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("start_date ASC, end_date ASC").
		Find(&events).Error
	return events, err
}

func (r *academicEventRepo) ListByOwnerInRange(ctx context.Context, ownerID string, from, to caldate.Date) ([]model.AcademicEvent, error) {
	events := []model.AcademicEvent{}
	q := r.db.WithContext(ctx).Where("owner_id = ?", ownerID)
	// 区间重叠：start <= to AND end >= from
	if !to.IsZero() {
		q = q.Where("start_date <= ?", to)
	}
	if !from.IsZero() {
		q = q.Where("end_date >= ?", from)
	}
	err := q.Order("start_date ASC, end_date ASC").Find(&events).Error
	return events, err
}

func (r *academicEventRepo) ReplaceImported(ctx context.Context, ownerID, source string, events []model.AcademicEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 硬删除旧的导入数据（替换场景，无需软删除审计）
		if err := tx.Unscoped().Where("owner_id = ? AND source = ?", ownerID, source).
			Delete(&model.AcademicEvent{}).Error; err != nil {
			return err
		}
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
