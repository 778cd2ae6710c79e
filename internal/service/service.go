package service

import (
	"go.uber.org/zap"

	"stride/backend/config"
	"stride/backend/internal/repository"
	"stride/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Retroplan     RetroplanService
	EnergyLog     EnergyLogService
	AcademicEvent AcademicEventService
	Commitment    CommitmentService
	Export        ExportService
}

// NewService 创建 Service 聚合；rdb 为 nil 时计划只缓存在数据库中
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	cache := NewPlanCache(rdb, repo.Retroplan, cfg.Retroplan.CacheTTL, logger)
	retroplan := NewRetroplanService(&cfg.Retroplan, repo, cache, logger)
	return &Service{
		Retroplan:     retroplan,
		EnergyLog:     NewEnergyLogService(repo, logger),
		AcademicEvent: NewAcademicEventService(repo, cfg.Feature.ICSImportEnabled, logger),
		Commitment:    NewCommitmentService(repo, logger),
		Export:        NewExportService(retroplan, logger),
	}
}
