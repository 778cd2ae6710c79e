package model

import (
	"gorm.io/gorm"

	"stride/backend/pkg/caldate"
)

// 学业事件类型
const (
	EventTypeExamPeriod        = "exam_period"
	EventTypeClassIntensive    = "class_intensive"
	EventTypeVacation          = "vacation"
	EventTypeVacationRest      = "vacation_rest"
	EventTypeVacationAvailable = "vacation_available"
	EventTypeInternship        = "internship"
	EventTypeProjectDeadline   = "project_deadline"
)

// 学业事件优先级
const (
	EventPriorityCritical = "critical"
	EventPriorityHigh     = "high"
	EventPriorityNormal   = "normal"
)

// defaultCapacityImpact 各事件类型的默认产能系数（<1 限制，>1 提升）
var defaultCapacityImpact = map[string]float64{
	EventTypeExamPeriod:        0.2,
	EventTypeClassIntensive:    0.7,
	EventTypeVacation:          1.5,
	EventTypeVacationRest:      0.3,
	EventTypeVacationAvailable: 1.5,
	EventTypeInternship:        0.5,
	EventTypeProjectDeadline:   0.6,
}

// DefaultCapacityImpact 返回事件类型的默认产能系数，未知类型为 1.0
func DefaultCapacityImpact(eventType string) float64 {
	if v, ok := defaultCapacityImpact[eventType]; ok {
		return v
	}
	return 1.0
}

// IsValidEventType 校验事件类型
func IsValidEventType(eventType string) bool {
	_, ok := defaultCapacityImpact[eventType]
	return ok
}

// AcademicEvent 学业事件表 — 对应 academic_events
// 区间实体：同一周内可能与多个事件重叠
type AcademicEvent struct {
	AcademicEventID string       `gorm:"type:uuid;primaryKey"                        json:"academic_event_id"`
	OwnerID         string       `gorm:"type:uuid;not null;index"                    json:"owner_id"`
	Type            string       `gorm:"type:varchar(30);not null"                   json:"type"`
	Name            string       `gorm:"type:varchar(200);not null"                  json:"name"`
	StartDate       caldate.Date `gorm:"type:date;not null"                          json:"start_date"`
	EndDate         caldate.Date `gorm:"type:date;not null"                          json:"end_date"`
	CapacityImpact  float64      `gorm:"not null;default:1"                          json:"capacity_impact"`
	Priority        string       `gorm:"type:varchar(20);not null;default:'normal'"  json:"priority"` // critical | high | normal
	Source          string       `gorm:"type:varchar(20);not null;default:'manual'"  json:"source"`   // manual | ics
	SoftDeleteModel
}

// TableName 指定表名
func (AcademicEvent) TableName() string { return "academic_events" }

// BeforeCreate 生成主键
func (e *AcademicEvent) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.AcademicEventID)
	return nil
}
