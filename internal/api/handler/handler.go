package handler

import (
	"go.uber.org/zap"

	"stride/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Retroplan     *RetroplanHandler
	EnergyLog     *EnergyLogHandler
	AcademicEvent *AcademicEventHandler
	Commitment    *CommitmentHandler
	Export        *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, logger *zap.Logger) *Handler {
	return &Handler{
		Retroplan:     NewRetroplanHandler(svc.Retroplan, logger),
		EnergyLog:     NewEnergyLogHandler(svc.EnergyLog),
		AcademicEvent: NewAcademicEventHandler(svc.AcademicEvent),
		Commitment:    NewCommitmentHandler(svc.Commitment),
		Export:        NewExportHandler(svc.Export),
	}
}
