package model

import "gorm.io/gorm"

// 固定投入类型
const (
	CommitmentTypeClass      = "class"
	CommitmentTypeSport      = "sport"
	CommitmentTypeClub       = "club"
	CommitmentTypeInternship = "internship"
	CommitmentTypeFamily     = "family"
	CommitmentTypeHealth     = "health"
	CommitmentTypeVolunteer  = "volunteer"
	CommitmentTypeOther      = "other"
)

// Commitment 每周固定投入表 — 对应 commitments
// 不绑定日期，每周按 HoursPerWeek 固定扣减可用时间
type Commitment struct {
	CommitmentID string  `gorm:"type:uuid;primaryKey"                          json:"commitment_id"`
	OwnerID      string  `gorm:"type:uuid;not null;index"                      json:"owner_id"`
	Type         string  `gorm:"type:varchar(20);not null"                     json:"type"`
	Name         string  `gorm:"type:varchar(200);not null"                    json:"name"`
	HoursPerWeek float64 `gorm:"not null;default:0"                            json:"hours_per_week"`
	Flexible     bool    `gorm:"not null;default:false"                        json:"flexible"`
	Priority     string  `gorm:"type:varchar(20);not null;default:'important'" json:"priority"` // essential | important | nice_to_have
	SoftDeleteModel
}

// TableName 指定表名
func (Commitment) TableName() string { return "commitments" }

// BeforeCreate 生成主键
func (c *Commitment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.CommitmentID)
	return nil
}
