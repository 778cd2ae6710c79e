package model

import (
	"gorm.io/gorm"

	"stride/backend/pkg/caldate"
)

// EnergyLog 每日状态自评表 — 对应 energy_logs
// 每个 (owner_id, log_date) 至多一条，重复写入覆盖
type EnergyLog struct {
	EnergyLogID string       `gorm:"type:uuid;primaryKey"                                 json:"energy_log_id"`
	OwnerID     string       `gorm:"type:uuid;not null;uniqueIndex:uk_energy_logs_owner_date,priority:1" json:"owner_id"`
	LogDate     caldate.Date `gorm:"type:date;not null;uniqueIndex:uk_energy_logs_owner_date,priority:2" json:"date"`
	EnergyLevel int          `gorm:"type:smallint;not null"                               json:"energy_level"` // 1-5
	MoodScore   int          `gorm:"type:smallint;not null"                               json:"mood_score"`   // 1-5
	StressLevel int          `gorm:"type:smallint;not null"                               json:"stress_level"` // 1-5
	HoursSlept  *float64     `json:"hours_slept,omitempty"`
	Notes       *string      `gorm:"type:text"                                            json:"notes,omitempty"`
	BaseModel
}

// TableName 指定表名
func (EnergyLog) TableName() string { return "energy_logs" }

// BeforeCreate 生成主键
func (l *EnergyLog) BeforeCreate(_ *gorm.DB) error {
	ensureID(&l.EnergyLogID)
	return nil
}
