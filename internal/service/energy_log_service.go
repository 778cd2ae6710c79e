package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stride/backend/internal/dto"
	"stride/backend/internal/model"
	"stride/backend/internal/repository"
	"stride/backend/pkg/caldate"
)

// ── 状态自评模块业务错误 ──

var (
	ErrEnergyLogInvalid = errors.New("状态自评数据无效")
)

const defaultEnergyLogListLimit = 14

// EnergyLogService 状态自评业务接口
type EnergyLogService interface {
	// Upsert 写入某日自评；同一天重复写入覆盖旧值
	Upsert(ctx context.Context, req *dto.UpsertEnergyLogRequest, ownerID string) (*dto.EnergyLogResponse, error)
	// ListRecent 最近记录（日期倒序）
	ListRecent(ctx context.Context, ownerID string, limit int) ([]dto.EnergyLogResponse, error)
}

type energyLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewEnergyLogService 创建 EnergyLogService 实例
func NewEnergyLogService(repo *repository.Repository, logger *zap.Logger) EnergyLogService {
	return &energyLogService{repo: repo, logger: logger}
}

// ────────── Upsert ──────────

func (s *energyLogService) Upsert(ctx context.Context, req *dto.UpsertEnergyLogRequest, ownerID string) (*dto.EnergyLogResponse, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	date, err := caldate.Parse(req.Date)
	if err != nil {
		return nil, ErrEnergyLogInvalid
	}
	for _, v := range []int{req.EnergyLevel, req.MoodScore, req.StressLevel} {
		if v < 1 || v > 5 {
			return nil, ErrEnergyLogInvalid
		}
	}

	log := &model.EnergyLog{
		OwnerID:     ownerID,
		LogDate:     date,
		EnergyLevel: req.EnergyLevel,
		MoodScore:   req.MoodScore,
		StressLevel: req.StressLevel,
		HoursSlept:  req.HoursSlept,
		Notes:       req.Notes,
	}
	log.CreatedBy = &ownerID
	log.UpdatedBy = &ownerID
	log.UpdatedAt = time.Now()

	if err := s.repo.EnergyLog.Upsert(ctx, log); err != nil {
		s.logger.Error("写入状态自评失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	// 冲突更新时内存中的主键并非库中主键，重新读取
	saved, err := s.repo.EnergyLog.GetByOwnerAndDate(ctx, ownerID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return toEnergyLogResponse(log), nil
		}
		return nil, err
	}
	return toEnergyLogResponse(saved), nil
}

// ────────── ListRecent ──────────

func (s *energyLogService) ListRecent(ctx context.Context, ownerID string, limit int) ([]dto.EnergyLogResponse, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if limit <= 0 {
		limit = defaultEnergyLogListLimit
	}
	logs, err := s.repo.EnergyLog.ListRecentByOwner(ctx, ownerID, limit)
	if err != nil {
		s.logger.Error("查询状态自评失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	list := make([]dto.EnergyLogResponse, 0, len(logs))
	for i := range logs {
		list = append(list, *toEnergyLogResponse(&logs[i]))
	}
	return list, nil
}

func toEnergyLogResponse(l *model.EnergyLog) *dto.EnergyLogResponse {
	resp := &dto.EnergyLogResponse{
		ID:          l.EnergyLogID,
		Date:        l.LogDate.String(),
		EnergyLevel: l.EnergyLevel,
		MoodScore:   l.MoodScore,
		StressLevel: l.StressLevel,
		HoursSlept:  l.HoursSlept,
		Notes:       l.Notes,
	}
	if !l.UpdatedAt.IsZero() {
		resp.UpdatedAt = l.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
