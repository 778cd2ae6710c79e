package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stride/backend/pkg/caldate"
)

// Goal 储蓄目标表 — 对应 goals（由目标模块维护，引擎只读）
type Goal struct {
	GoalID        string              `gorm:"type:uuid;primaryKey"                      json:"goal_id"`
	OwnerID       string              `gorm:"type:uuid;not null;index"                  json:"owner_id"`
	Name          string              `gorm:"type:varchar(200);not null"                json:"name"`
	Amount        decimal.Decimal     `gorm:"type:numeric(12,2);not null"               json:"amount"`
	TotalEarned   decimal.Decimal     `gorm:"type:numeric(12,2);not null;default:0"     json:"total_earned"`
	StartDate     caldate.Date        `gorm:"type:date"                                 json:"start_date"`
	Deadline      caldate.Date        `gorm:"type:date;not null"                        json:"deadline"`
	HourlyRate    decimal.NullDecimal `gorm:"type:numeric(8,2)"                         json:"hourly_rate"`
	MonthlyMargin decimal.NullDecimal `gorm:"type:numeric(12,2)"                        json:"monthly_margin"`
	Status        string              `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // active | completed | archived
	SoftDeleteModel
}

// TableName 指定表名
func (Goal) TableName() string { return "goals" }

// BeforeCreate 生成主键
func (g *Goal) BeforeCreate(_ *gorm.DB) error {
	ensureID(&g.GoalID)
	return nil
}
