package dto

import (
	"time"

	"stride/backend/pkg/caldate"
)

// ── 周产能 ──

// 产能分类（由 capacity_score 固定阈值推导）
const (
	CategoryProtected = "protected"
	CategoryLow       = "low"
	CategoryMedium    = "medium"
	CategoryHigh      = "high"
	CategoryBoosted   = "boosted"
)

// 里程碑难度（与产能分类一一对应）
const (
	DifficultyEasy        = "easy"
	DifficultyModerate    = "moderate"
	DifficultyChallenging = "challenging"
	DifficultyProtected   = "protected"
)

// ContributingEvent 与某周重叠的学业事件摘要
type ContributingEvent struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	CapacityImpact float64 `json:"capacity_impact"`
}

// WeekCapacity 单周产能（派生值，不单独持久化）
type WeekCapacity struct {
	WeekNumber          int                 `json:"week_number"`
	WeekStartDate       caldate.Date        `json:"week_start_date"`
	WeekEndDate         caldate.Date        `json:"week_end_date"`
	CapacityScore       int                 `json:"capacity_score"`
	Category            string              `json:"category"`
	EffectiveHours      int                 `json:"effective_hours"`
	AcademicMultiplier  float64             `json:"academic_multiplier"`
	EnergyMultiplier    float64             `json:"energy_multiplier"`
	ContributingEvents  []ContributingEvent `json:"contributing_events"`
	MaxEarningPotential float64             `json:"max_earning_potential"`
}

// ── 里程碑与计划 ──

// Milestone 每周目标
type Milestone struct {
	WeekNumber       int          `json:"week_number"`
	BaseTarget       float64      `json:"base_target"`
	AdjustedTarget   float64      `json:"adjusted_target"`
	CumulativeTarget float64      `json:"cumulative_target"`
	Difficulty       string       `json:"difficulty"`
	Capacity         WeekCapacity `json:"capacity"`
}

// WeekCategoryCounts 各产能分类的周数
type WeekCategoryCounts struct {
	Protected int `json:"protected"`
	Low       int `json:"low"`
	Medium    int `json:"medium"`
	High      int `json:"high"`
	Boosted   int `json:"boosted"`
}

// Add 按分类计数
func (c *WeekCategoryCounts) Add(category string) {
	switch category {
	case CategoryProtected:
		c.Protected++
	case CategoryLow:
		c.Low++
	case CategoryMedium:
		c.Medium++
	case CategoryBoosted:
		c.Boosted++
	default:
		c.High++
	}
}

// Retroplan 逆向规划结果
type Retroplan struct {
	ID                    string             `json:"id"`
	GoalID                string             `json:"goal_id"`
	OwnerID               string             `json:"owner_id"`
	StartDate             caldate.Date       `json:"start_date"`
	Deadline              caldate.Date       `json:"deadline"`
	GeneratedAt           time.Time          `json:"generated_at"`
	GoalAmount            float64            `json:"goal_amount"`
	TotalEarned           float64            `json:"total_earned"`
	HourlyRate            float64            `json:"hourly_rate"`
	SavingsContribution   float64            `json:"savings_contribution"`
	EffectiveGoalForWork  float64            `json:"effective_goal_for_work"`
	TotalWeeks            int                `json:"total_weeks"`
	WeeksRemaining        int                `json:"weeks_remaining"`
	Milestones            []Milestone        `json:"milestones"`
	WeekCategoryCounts    WeekCategoryCounts `json:"week_category_counts"`
	FeasibilityScore      float64            `json:"feasibility_score"`
	FrontLoadedPercentage float64            `json:"front_loaded_percentage"`
	RiskFactors           []string           `json:"risk_factors"`
}

// ── 请求 ──

// GenerateRetroplanRequest 生成逆向规划请求（owner 由认证上下文提供）
type GenerateRetroplanRequest struct {
	GoalID                string   `json:"goal_id"                  binding:"required"`
	GoalAmount            *float64 `json:"goal_amount"              binding:"required,gt=0"`
	Deadline              string   `json:"deadline"                 binding:"required,caldate"`
	HourlyRate            *float64 `json:"hourly_rate"`                                           // 缺省或非正数时使用默认时薪
	SimulatedDate         string   `json:"simulated_date"           binding:"omitempty,caldate"` // 测试用的"当前日期"
	GoalStartDate         string   `json:"goal_start_date"          binding:"omitempty,caldate"` // 缺省为当前日期
	MonthlyMargin         *float64 `json:"monthly_margin"`                                        // 可为负数
	ProjectedSavingsBasis *float64 `json:"projected_savings_basis"`
	ActualTotalSavings    *float64 `json:"actual_total_savings"`
	TotalEarned           float64  `json:"total_earned"             binding:"gte=0"`
	AvailableHoursPerWeek *float64 `json:"available_hours_per_week" binding:"omitempty,gte=0,lte=168"`
}

// WeekCapacityQuery 单周产能预览查询
type WeekCapacityQuery struct {
	Date       string   `form:"date"        binding:"omitempty,caldate"`
	HourlyRate *float64 `form:"hourly_rate" binding:"omitempty,gt=0"`
}

// PredictionsQuery 预警查询
type PredictionsQuery struct {
	LookaheadWeeks int    `form:"lookahead"      binding:"omitempty,min=1"`
	SimulatedDate  string `form:"simulated_date" binding:"omitempty,caldate"`
}

// ── 预警 ──

// 建议动作
const (
	AlertActionFrontLoad     = "front-load"
	AlertActionAddProtection = "add-protection"
	AlertActionReduceTarget  = "reduce-target"
)

// Alert 即将到来的低产能周预警
type Alert struct {
	WeekNumber     int          `json:"week_number"`
	WeekStartDate  caldate.Date `json:"week_start_date"`
	Category       string       `json:"category"`
	CapacityScore  int          `json:"capacity_score"`
	EffectiveHours int          `json:"effective_hours"`
	AdjustedTarget float64      `json:"adjusted_target"`
	Severity       string       `json:"severity"` // high | medium
	Action         string       `json:"action"`
	Message        string       `json:"message"`
}

// PredictionsResponse 预警响应
type PredictionsResponse struct {
	GoalID         string  `json:"goal_id"`
	CurrentWeek    int     `json:"current_week"`
	LookaheadWeeks int     `json:"lookahead_weeks"`
	Alerts         []Alert `json:"alerts"`
}
