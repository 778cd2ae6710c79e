package model

import (
	"time"

	"gorm.io/datatypes"

	"stride/backend/pkg/caldate"
)

// Retroplan 逆向规划结果表 — 对应 retroplans
// 仅作为最近一次计算的缓存：每个目标一行，重新生成时整行覆盖
type Retroplan struct {
	RetroplanID           string         `gorm:"type:uuid;primaryKey"               json:"retroplan_id"`
	GoalID                string         `gorm:"type:uuid;not null;uniqueIndex"     json:"goal_id"`
	OwnerID               string         `gorm:"type:uuid;not null"                 json:"owner_id"`
	StartDate             caldate.Date   `gorm:"type:date;not null"                 json:"start_date"`
	Deadline              caldate.Date   `gorm:"type:date;not null"                 json:"deadline"`
	GeneratedAt           time.Time      `gorm:"not null"                           json:"generated_at"`
	GoalAmount            float64        `gorm:"not null"                           json:"goal_amount"`
	TotalEarned           float64        `gorm:"not null;default:0"                 json:"total_earned"`
	HourlyRate            float64        `gorm:"not null"                           json:"hourly_rate"`
	SavingsContribution   float64        `gorm:"not null;default:0"                 json:"savings_contribution"`
	TotalWeeks            int            `gorm:"not null"                           json:"total_weeks"`
	WeeksRemaining        int            `gorm:"not null"                           json:"weeks_remaining"`
	EffectiveGoalForWork  float64        `gorm:"not null"                           json:"effective_goal_for_work"`
	FeasibilityScore      float64        `gorm:"not null"                           json:"feasibility_score"`
	FrontLoadedPercentage float64        `gorm:"not null"                           json:"front_loaded_percentage"`
	Milestones            datatypes.JSON `gorm:"type:jsonb;not null"                json:"milestones"`
	WeekCategoryCounts    datatypes.JSON `gorm:"type:jsonb;not null"                json:"week_category_counts"`
	RiskFactors           datatypes.JSON `gorm:"type:jsonb;not null"                json:"risk_factors"`
	BaseModel
}

// TableName 指定表名
func (Retroplan) TableName() string { return "retroplans" }
