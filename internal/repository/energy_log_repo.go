package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stride/backend/internal/model"
	"stride/backend/pkg/caldate"
)

// EnergyLogRepository 状态自评数据访问接口
type EnergyLogRepository interface {
	// ListRecentByOwner 按日期倒序返回最近 limit 条
	ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]model.EnergyLog, error)
	GetByOwnerAndDate(ctx context.Context, ownerID string, date caldate.Date) (*model.EnergyLog, error)
	// Upsert 以 (owner_id, log_date) 为键写入，已存在则覆盖
	Upsert(ctx context.Context, log *model.EnergyLog) error
}

type energyLogRepo struct {
	db *gorm.DB
}

// NewEnergyLogRepo 创建 EnergyLogRepository 实例
func NewEnergyLogRepo(db *gorm.DB) EnergyLogRepository {
	return &energyLogRepo{db: db}
}

func (r *energyLogRepo) ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]model.EnergyLog, error) {
	logs := []model.EnergyLog{}
	q := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("log_date DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&logs).Error
	return logs, err
}

func (r *energyLogRepo) GetByOwnerAndDate(ctx context.Context, ownerID string, date caldate.Date) (*model.EnergyLog, error) {
	var log model.EnergyLog
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND log_date = ?", ownerID, date).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *energyLogRepo) Upsert(ctx context.Context, log *model.EnergyLog) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "owner_id"}, {Name: "log_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"energy_level", "mood_score", "stress_level", "hours_slept", "notes", "updated_at", "updated_by",
		}),
	}).Create(log).Error
}
