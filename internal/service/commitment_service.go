package service

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stride/backend/internal/dto"
	"stride/backend/internal/repository"
)

// CommitmentService 每周固定投入业务接口（只读；增删改由资料模块负责）
type CommitmentService interface {
	List(ctx context.Context, ownerID string) (*dto.CommitmentListResponse, error)
}

type commitmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCommitmentService 创建 CommitmentService 实例
func NewCommitmentService(repo *repository.Repository, logger *zap.Logger) CommitmentService {
	return &commitmentService{repo: repo, logger: logger}
}

func (s *commitmentService) List(ctx context.Context, ownerID string) (*dto.CommitmentListResponse, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	commitments, err := s.repo.Commitment.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("查询固定投入失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	total := decimal.Zero
	list := make([]dto.CommitmentResponse, 0, len(commitments))
	for _, c := range commitments {
		list = append(list, dto.CommitmentResponse{
			ID:           c.CommitmentID,
			Type:         c.Type,
			Name:         c.Name,
			HoursPerWeek: c.HoursPerWeek,
			Flexible:     c.Flexible,
			Priority:     c.Priority,
		})
		total = total.Add(decimal.NewFromFloat(c.HoursPerWeek))
	}

	return &dto.CommitmentListResponse{
		List:       list,
		TotalHours: total.Round(2).InexactFloat64(),
	}, nil
}
