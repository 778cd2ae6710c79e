package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"stride/backend/config"
	"stride/backend/internal/dto"
	"stride/backend/internal/model"
	"stride/backend/internal/repository"
	"stride/backend/pkg/caldate"
	apperrors "stride/backend/pkg/errors"
)

// ── 逆向规划模块业务错误 ──

var (
	ErrRetroplanInvalidInput   = errors.New("逆向规划参数无效")
	ErrRetroplanNotFound       = errors.New("该目标尚未生成逆向规划")
	ErrRetroplanGenerateFailed = errors.New("生成逆向规划失败")
	ErrRetroplanInternal       = errors.New("逆向规划服务内部错误")
	ErrGoalNotFound            = errors.New("目标不存在")
	ErrOwnerRequired           = errors.New("缺少用户身份")
)

const (
	defaultLookaheadWeeks = 4
	reduceTargetHours     = 10
)

// ── RetroplanService 接口 ─────────────────────────────────
//
// 设计说明：
//   - 生成流程：一次性并发读取事件/固定投入/自评 → 逐周计算产能 → 分摊里程碑 → 评分 → 写缓存
//   - 相同输入（含模拟日期）总是得到相同的里程碑与评分；计划 ID 由目标 ID 派生
//   - owner_id 必须由调用方提供，不存在默认用户
// ─────────────────────────────────────────────────────────────

// RetroplanService 逆向规划业务接口
type RetroplanService interface {
	// Generate 按请求参数生成并缓存计划
	Generate(ctx context.Context, req *dto.GenerateRetroplanRequest, ownerID string) (*dto.Retroplan, error)
	// Regenerate 读取已保存的目标并重新生成
	Regenerate(ctx context.Context, goalID, ownerID, simulatedDate string) (*dto.Retroplan, error)
	// Get 读取最近一次生成的计划
	Get(ctx context.Context, goalID, ownerID string) (*dto.Retroplan, error)
	// Invalidate 删除缓存的计划
	Invalidate(ctx context.Context, goalID, ownerID string) error
	// GetWeekCapacity 任意日期所在 ISO 周的产能预览，与目标无关
	GetWeekCapacity(ctx context.Context, ownerID string, q *dto.WeekCapacityQuery) (*dto.WeekCapacity, error)
	// GetPredictions 基于已生成计划的低产能周预警
	GetPredictions(ctx context.Context, goalID, ownerID string, q *dto.PredictionsQuery) (*dto.PredictionsResponse, error)
}

type retroplanService struct {
	cfg    config.RetroplanConfig
	repo   *repository.Repository
	cache  PlanCache
	logger *zap.Logger
	now    func() time.Time
}

// NewRetroplanService 创建 RetroplanService 实例
func NewRetroplanService(cfg *config.RetroplanConfig, repo *repository.Repository, cache PlanCache, logger *zap.Logger) RetroplanService {
	return &retroplanService{
		cfg:    *cfg,
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// generateInput 校验并归一化后的生成参数
type generateInput struct {
	goalID         string
	ownerID        string
	goalAmount     float64
	totalEarned    float64
	hourlyRate     float64
	today          caldate.Date
	start          caldate.Date
	deadline       caldate.Date
	savings        SavingsInput
	availableHours *float64
}

// ownerInputs 一次性预取的产能计算数据
type ownerInputs struct {
	events      []model.AcademicEvent
	commitments []model.Commitment
	energyLogs  []model.EnergyLog
}

// ════════════════════════════════════════════════════════════
// Generate — 生成逆向规划
// ════════════════════════════════════════════════════════════

func (s *retroplanService) Generate(ctx context.Context, req *dto.GenerateRetroplanRequest, ownerID string) (*dto.Retroplan, error) {
	in, err := s.parseGenerateRequest(req, ownerID)
	if err != nil {
		return nil, err
	}
	if err := s.checkGoalOwner(ctx, in.goalID, in.ownerID); err != nil {
		return nil, err
	}

	inputs, err := s.fetchOwnerInputs(ctx, in.ownerID, func(ctx context.Context) ([]model.AcademicEvent, error) {
		return s.repo.AcademicEvent.ListByOwner(ctx, in.ownerID)
	})
	if err != nil {
		s.logger.Error("读取产能数据失败",
			zap.String("owner_id", in.ownerID), zap.String("goal_id", in.goalID), zap.Error(err))
		return nil, ErrRetroplanGenerateFailed
	}

	plan := s.buildPlan(in, inputs)

	// 缓存失败不影响本次结果
	if err := s.cache.Set(ctx, plan); err != nil {
		s.logger.Warn("写入计划缓存失败", zap.String("goal_id", plan.GoalID), zap.Error(err))
	}

	s.logger.Info("逆向规划已生成",
		zap.String("owner_id", plan.OwnerID),
		zap.String("goal_id", plan.GoalID),
		zap.Int("total_weeks", plan.TotalWeeks),
		zap.Int("weeks_remaining", plan.WeeksRemaining),
		zap.Float64("feasibility_score", plan.FeasibilityScore),
	)
	return plan, nil
}

func (s *retroplanService) buildPlan(in *generateInput, inputs *ownerInputs) *dto.Retroplan {
	totalWeeks := weeksBetween(in.start, in.deadline)
	if totalWeeks < 1 {
		totalWeeks = 1
	}
	weeksRemaining := weeksBetween(in.today, in.deadline)
	if weeksRemaining < 0 {
		weeksRemaining = 0
	}
	if weeksRemaining > totalWeeks {
		weeksRemaining = totalWeeks
	}

	// 1. 逐周产能：第 1 周从目标开始日起算，不对齐周一
	capacities := make([]dto.WeekCapacity, 0, totalWeeks)
	counts := dto.WeekCategoryCounts{}
	for i := 1; i <= totalWeeks; i++ {
		wc := CalculateWeekCapacity(CapacityInput{
			WeekNumber:            i,
			WeekStart:             in.start.AddDays(7 * (i - 1)),
			Events:                inputs.events,
			Commitments:           inputs.commitments,
			EnergyLogs:            inputs.energyLogs,
			HourlyRate:            in.hourlyRate,
			AvailableHoursPerWeek: in.availableHours,
		})
		counts.Add(wc.Category)
		capacities = append(capacities, wc)
	}

	// 2. 里程碑
	contribution := SavingsContribution(in.savings, totalWeeks)
	effectiveGoal := EffectiveGoalForWork(in.goalAmount, contribution)
	milestones := AllocateMilestones(capacities, effectiveGoal)

	// 3. 评分
	result := ScoreFeasibility(FeasibilityInput{
		GoalAmount:          in.goalAmount,
		TotalEarned:         in.totalEarned,
		TotalWeeks:          totalWeeks,
		WeeksRemaining:      weeksRemaining,
		Milestones:          milestones,
		SavingsContribution: contribution,
		Counts:              counts,
	})

	return &dto.Retroplan{
		ID:                    RetroplanID(in.goalID),
		GoalID:                in.goalID,
		OwnerID:               in.ownerID,
		StartDate:             in.start,
		Deadline:              in.deadline,
		GeneratedAt:           s.now().UTC(),
		GoalAmount:            in.goalAmount,
		TotalEarned:           in.totalEarned,
		HourlyRate:            in.hourlyRate,
		SavingsContribution:   contribution,
		EffectiveGoalForWork:  effectiveGoal,
		TotalWeeks:            totalWeeks,
		WeeksRemaining:        weeksRemaining,
		Milestones:            milestones,
		WeekCategoryCounts:    counts,
		FeasibilityScore:      result.Score,
		FrontLoadedPercentage: FrontLoadedPercentage(milestones, effectiveGoal),
		RiskFactors:           result.RiskFactors,
	}
}

// ════════════════════════════════════════════════════════════
// Regenerate — 按已保存的目标重新生成
// ════════════════════════════════════════════════════════════

func (s *retroplanService) Regenerate(ctx context.Context, goalID, ownerID, simulatedDate string) (*dto.Retroplan, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	goal, err := s.repo.Goal.GetByID(ctx, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		s.logger.Error("查询目标失败", zap.String("goal_id", goalID), zap.Error(err))
		return nil, ErrRetroplanGenerateFailed
	}
	// 他人的目标按不存在处理
	if goal.OwnerID != ownerID {
		return nil, ErrGoalNotFound
	}

	amount := goal.Amount.InexactFloat64()
	req := &dto.GenerateRetroplanRequest{
		GoalID:        goal.GoalID,
		GoalAmount:    &amount,
		Deadline:      goal.Deadline.String(),
		SimulatedDate: simulatedDate,
		GoalStartDate: goal.StartDate.String(),
		TotalEarned:   goal.TotalEarned.InexactFloat64(),
	}
	if goal.HourlyRate.Valid {
		rate := goal.HourlyRate.Decimal.InexactFloat64()
		req.HourlyRate = &rate
	}
	if goal.MonthlyMargin.Valid {
		margin := goal.MonthlyMargin.Decimal.InexactFloat64()
		req.MonthlyMargin = &margin
	}
	return s.Generate(ctx, req, ownerID)
}

// checkGoalOwner 目标或已缓存计划属于他人时按目标不存在处理。
// 目标表中查不到的临时目标 ID 允许直接生成。
func (s *retroplanService) checkGoalOwner(ctx context.Context, goalID, ownerID string) error {
	goal, err := s.repo.Goal.GetByID(ctx, goalID)
	switch {
	case err == nil:
		if goal.OwnerID != ownerID {
			s.logger.Warn("拒绝为他人目标生成计划", zap.String("owner_id", ownerID), zap.String("goal_id", goalID))
			return ErrGoalNotFound
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		s.logger.Error("查询目标失败", zap.String("goal_id", goalID), zap.Error(err))
		return ErrRetroplanGenerateFailed
	}

	cached, err := s.cache.Get(ctx, goalID)
	switch {
	case err == nil:
		if cached.OwnerID != ownerID {
			s.logger.Warn("拒绝覆盖他人的计划", zap.String("owner_id", ownerID), zap.String("goal_id", goalID))
			return ErrGoalNotFound
		}
	case errors.Is(err, ErrPlanCacheMiss):
	default:
		s.logger.Error("读取计划缓存失败", zap.String("goal_id", goalID), zap.Error(err))
		return ErrRetroplanGenerateFailed
	}
	return nil
}

// ────────── Get ──────────

func (s *retroplanService) Get(ctx context.Context, goalID, ownerID string) (*dto.Retroplan, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	plan, err := s.cache.Get(ctx, goalID)
	if err != nil {
		if errors.Is(err, ErrPlanCacheMiss) {
			return nil, ErrRetroplanNotFound
		}
		s.logger.Error("读取计划缓存失败", zap.String("goal_id", goalID), zap.Error(err))
		return nil, ErrRetroplanInternal
	}
	if plan.OwnerID != ownerID {
		return nil, ErrRetroplanNotFound
	}
	return plan, nil
}

// ────────── Invalidate ──────────

func (s *retroplanService) Invalidate(ctx context.Context, goalID, ownerID string) error {
	if _, err := s.Get(ctx, goalID, ownerID); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, goalID); err != nil {
		s.logger.Error("删除计划缓存失败", zap.String("goal_id", goalID), zap.Error(err))
		return ErrRetroplanInternal
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// GetWeekCapacity — 单周产能预览
// ════════════════════════════════════════════════════════════

func (s *retroplanService) GetWeekCapacity(ctx context.Context, ownerID string, q *dto.WeekCapacityQuery) (*dto.WeekCapacity, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if q == nil {
		q = &dto.WeekCapacityQuery{}
	}

	day := caldate.Today(s.now())
	if q.Date != "" {
		d, err := caldate.Parse(q.Date)
		if err != nil {
			return nil, invalidInput("date", "日期格式应为 YYYY-MM-DD")
		}
		day = d
	}
	rate := s.cfg.DefaultHourlyRate
	if q.HourlyRate != nil && *q.HourlyRate > 0 {
		rate = *q.HourlyRate
	}

	weekStart := day.StartOfISOWeek()
	weekEnd := weekStart.AddDays(6)
	inputs, err := s.fetchOwnerInputs(ctx, ownerID, func(ctx context.Context) ([]model.AcademicEvent, error) {
		return s.repo.AcademicEvent.ListByOwnerInRange(ctx, ownerID, weekStart, weekEnd)
	})
	if err != nil {
		s.logger.Error("读取产能数据失败", zap.String("owner_id", ownerID), zap.Error(err))
		return nil, ErrRetroplanInternal
	}

	wc := CalculateWeekCapacity(CapacityInput{
		WeekNumber:  weekStart.ISOWeek(),
		WeekStart:   weekStart,
		Events:      inputs.events,
		Commitments: inputs.commitments,
		EnergyLogs:  inputs.energyLogs,
		HourlyRate:  rate,
	})
	return &wc, nil
}

// ════════════════════════════════════════════════════════════
// GetPredictions — 低产能周预警
// ════════════════════════════════════════════════════════════
//
// 从当前周开始向后 lookahead 周，筛选 protected / low 周：
//   - protected → add-protection
//   - low 且有效工时 < 10 → reduce-target
//   - 其他 low → front-load

func (s *retroplanService) GetPredictions(ctx context.Context, goalID, ownerID string, q *dto.PredictionsQuery) (*dto.PredictionsResponse, error) {
	if q == nil {
		q = &dto.PredictionsQuery{}
	}
	plan, err := s.Get(ctx, goalID, ownerID)
	if err != nil {
		return nil, err
	}

	lookahead := q.LookaheadWeeks
	if lookahead <= 0 {
		lookahead = defaultLookaheadWeeks
	}
	if s.cfg.MaxLookaheadWeeks > 0 && lookahead > s.cfg.MaxLookaheadWeeks {
		lookahead = s.cfg.MaxLookaheadWeeks
	}

	today := caldate.Today(s.now())
	if q.SimulatedDate != "" {
		d, err := caldate.Parse(q.SimulatedDate)
		if err != nil {
			return nil, invalidInput("simulated_date", "日期格式应为 YYYY-MM-DD")
		}
		today = d
	}
	currentWeek := int(math.Floor(float64(plan.StartDate.DaysUntil(today))/7)) + 1

	alerts := []dto.Alert{}
	for _, m := range plan.Milestones {
		if m.WeekNumber < currentWeek || m.WeekNumber >= currentWeek+lookahead {
			continue
		}
		if alert, ok := alertForMilestone(m); ok {
			alerts = append(alerts, alert)
		}
	}

	return &dto.PredictionsResponse{
		GoalID:         plan.GoalID,
		CurrentWeek:    currentWeek,
		LookaheadWeeks: lookahead,
		Alerts:         alerts,
	}, nil
}

func alertForMilestone(m dto.Milestone) (dto.Alert, bool) {
	c := m.Capacity
	alert := dto.Alert{
		WeekNumber:     m.WeekNumber,
		WeekStartDate:  c.WeekStartDate,
		Category:       c.Category,
		CapacityScore:  c.CapacityScore,
		EffectiveHours: c.EffectiveHours,
		AdjustedTarget: m.AdjustedTarget,
	}
	switch {
	case c.Category == dto.CategoryProtected:
		alert.Severity = "high"
		alert.Action = dto.AlertActionAddProtection
		alert.Message = fmt.Sprintf("第 %d 周为保护周（产能 %d），建议不安排工作，专注学业与休息", m.WeekNumber, c.CapacityScore)
	case c.Category == dto.CategoryLow && c.EffectiveHours < reduceTargetHours:
		alert.Severity = "medium"
		alert.Action = dto.AlertActionReduceTarget
		alert.Message = fmt.Sprintf("第 %d 周仅约 %d 小时可用，建议下调本周目标", m.WeekNumber, c.EffectiveHours)
	case c.Category == dto.CategoryLow:
		alert.Severity = "medium"
		alert.Action = dto.AlertActionFrontLoad
		alert.Message = fmt.Sprintf("第 %d 周产能偏低（%d），建议提前在之前的周多挣一些", m.WeekNumber, c.CapacityScore)
	default:
		return dto.Alert{}, false
	}
	return alert, true
}

// ── 辅助函数 ──

// RetroplanID 由目标 ID 派生的确定性计划 ID
func RetroplanID(goalID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("retroplan:"+goalID)).String()
}

// fetchOwnerInputs 三个读取相互独立，并发执行后再开始逐周计算
func (s *retroplanService) fetchOwnerInputs(
	ctx context.Context,
	ownerID string,
	loadEvents func(ctx context.Context) ([]model.AcademicEvent, error),
) (*ownerInputs, error) {
	out := &ownerInputs{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		events, err := loadEvents(gctx)
		out.events = events
		return err
	})
	g.Go(func() error {
		commitments, err := s.repo.Commitment.ListByOwner(gctx, ownerID)
		out.commitments = commitments
		return err
	})
	g.Go(func() error {
		logs, err := s.repo.EnergyLog.ListRecentByOwner(gctx, ownerID, s.cfg.EnergyLogWindow)
		out.energyLogs = logs
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *retroplanService) parseGenerateRequest(req *dto.GenerateRetroplanRequest, ownerID string) (*generateInput, error) {
	if ownerID == "" {
		return nil, ErrOwnerRequired
	}
	if req == nil {
		return nil, invalidInput("", "请求体不能为空")
	}

	goalID := strings.TrimSpace(req.GoalID)
	if goalID == "" {
		return nil, invalidInput("goal_id", "不能为空")
	}
	if req.GoalAmount == nil || math.IsNaN(*req.GoalAmount) || *req.GoalAmount <= 0 {
		return nil, invalidInput("goal_amount", "必须大于 0")
	}
	if req.Deadline == "" {
		return nil, invalidInput("deadline", "不能为空")
	}
	deadline, err := caldate.Parse(req.Deadline)
	if err != nil {
		return nil, invalidInput("deadline", "日期格式应为 YYYY-MM-DD")
	}
	if req.TotalEarned < 0 || math.IsNaN(req.TotalEarned) {
		return nil, invalidInput("total_earned", "不能为负数")
	}
	if req.AvailableHoursPerWeek != nil && (*req.AvailableHoursPerWeek < 0 || *req.AvailableHoursPerWeek > hoursPerWeek) {
		return nil, invalidInput("available_hours_per_week", "必须在 0-168 之间")
	}

	today := caldate.Today(s.now())
	if req.SimulatedDate != "" {
		if today, err = caldate.Parse(req.SimulatedDate); err != nil {
			return nil, invalidInput("simulated_date", "日期格式应为 YYYY-MM-DD")
		}
	}
	start := today
	if req.GoalStartDate != "" {
		if start, err = caldate.Parse(req.GoalStartDate); err != nil {
			return nil, invalidInput("goal_start_date", "日期格式应为 YYYY-MM-DD")
		}
	}

	rate := s.cfg.DefaultHourlyRate
	if req.HourlyRate != nil && *req.HourlyRate > 0 {
		rate = *req.HourlyRate
	}

	return &generateInput{
		goalID:      goalID,
		ownerID:     ownerID,
		goalAmount:  *req.GoalAmount,
		totalEarned: req.TotalEarned,
		hourlyRate:  rate,
		today:       today,
		start:       start,
		deadline:    deadline,
		savings: SavingsInput{
			ProjectedSavingsBasis: req.ProjectedSavingsBasis,
			ActualTotalSavings:    req.ActualTotalSavings,
			MonthlyMargin:         req.MonthlyMargin,
		},
		availableHours: req.AvailableHoursPerWeek,
	}, nil
}

func invalidInput(field, message string) error {
	return fmt.Errorf("%w: %w", ErrRetroplanInvalidInput, apperrors.NewValidation(field, message))
}

// weeksBetween 向上取整的周数，b 早于 a 时为负数或 0
func weeksBetween(a, b caldate.Date) int {
	return int(math.Ceil(float64(a.DaysUntil(b)) / 7))
}
