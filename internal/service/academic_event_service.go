package service

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"stride/backend/internal/dto"
	"stride/backend/internal/model"
	"stride/backend/internal/repository"
	"stride/backend/pkg/caldate"
)

// ── 学业事件模块业务错误 ──

var (
	ErrAcademicEventRangeInvalid = errors.New("日期区间无效")
	ErrICSParseFailed            = errors.New("ICS 文件解析失败")
	ErrICSEmpty                  = errors.New("ICS 文件中未发现可识别的学业事件")
	ErrICSImportDisabled         = errors.New("ICS 导入功能未开启")
	ErrICSFetchFailed            = errors.New("ICS 链接获取失败")
)

// AcademicEventService 学业事件业务接口
type AcademicEventService interface {
	// List 列出与 [from, to] 有重叠的事件；无匹配时返回空列表
	List(ctx context.Context, ownerID string, q *dto.ListAcademicEventsQuery) ([]dto.AcademicEventResponse, error)
	// ImportICS 从 ICS 内容导入，替换此前所有 ICS 来源的事件
	ImportICS(ctx context.Context, reader io.Reader, ownerID string) (*dto.ImportICSResponse, error)
	// ImportICSFromURL 从订阅链接导入
	ImportICSFromURL(ctx context.Context, url string, ownerID string) (*dto.ImportICSResponse, error)
}

type academicEventService struct {
	repo       *repository.Repository
	icsEnabled bool
	logger     *zap.Logger
}

// NewAcademicEventService 创建 AcademicEventService 实例
func NewAcademicEventService(repo *repository.Repository, icsEnabled bool, logger *zap.Logger) AcademicEventService {
	return &academicEventService{repo: repo, icsEnabled: icsEnabled, logger: logger}
}

// ────────── List ──────────

func (s *academicEventService) List(ctx context.Context, ownerID string, q *dto.ListAcademicEventsQuery) ([]dto.AcademicEventResponse, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	var from, to caldate.Date
	if q != nil {
		var err error
		if q.From != "" {
			if from, err = caldate.Parse(q.From); err != nil {
				return nil, ErrAcademicEventRangeInvalid
			}
		}
		if q.To != "" {
			if to, err = caldate.Parse(q.To); err != nil {
				return nil, ErrAcademicEventRangeInvalid
			}
		}
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, ErrAcademicEventRangeInvalid
	}

	events, err := s.repo.AcademicEvent.ListByOwnerInRange(ctx, ownerID, from, to)
	if err != nil {
		s.logger.Error("查询学业事件失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}
	return toAcademicEventResponses(events), nil
}

// ════════════════════════════════════════════════════════════
// ImportICS — 导入学校日历
// ════════════════════════════════════════════════════════════
//
// 全量替换 source=ics 的事件，手动录入的事件不受影响。

func (s *academicEventService) ImportICS(ctx context.Context, reader io.Reader, ownerID string) (*dto.ImportICSResponse, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if !s.icsEnabled {
		return nil, ErrICSImportDisabled
	}

	events, skipped, err := ParseAcademicICS(reader, ownerID)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, ErrICSParseFailed
	}
	if len(events) == 0 {
		return nil, ErrICSEmpty
	}
	for i := range events {
		events[i].CreatedBy = &ownerID
	}

	if err := s.repo.AcademicEvent.ReplaceImported(ctx, ownerID, icsSource, events); err != nil {
		s.logger.Error("学业事件导入事务失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("学业事件导入完成",
		zap.String("owner_id", ownerID),
		zap.Int("imported", len(events)),
		zap.Int("skipped", skipped),
	)
	return &dto.ImportICSResponse{
		ImportedCount: len(events),
		SkippedCount:  skipped,
		Events:        toAcademicEventResponses(events),
	}, nil
}

func (s *academicEventService) ImportICSFromURL(ctx context.Context, url string, ownerID string) (*dto.ImportICSResponse, error) {
	if !s.icsEnabled {
		return nil, ErrICSImportDisabled
	}
	body, err := FetchICSContent(url)
	if err != nil {
		s.logger.Warn("获取 ICS 链接失败", zap.String("url", url), zap.Error(err))
		return nil, ErrICSFetchFailed
	}
	defer body.Close()
	return s.ImportICS(ctx, body, ownerID)
}

func toAcademicEventResponses(events []model.AcademicEvent) []dto.AcademicEventResponse {
	list := make([]dto.AcademicEventResponse, 0, len(events))
	for _, e := range events {
		list = append(list, dto.AcademicEventResponse{
			ID:             e.AcademicEventID,
			Type:           e.Type,
			Name:           e.Name,
			StartDate:      e.StartDate.String(),
			EndDate:        e.EndDate.String(),
			CapacityImpact: e.CapacityImpact,
			Priority:       e.Priority,
			Source:         e.Source,
		})
	}
	return list
}
