package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	AcademicEvent AcademicEventRepository
	Commitment    CommitmentRepository
	EnergyLog     EnergyLogRepository
	Goal          GoalRepository
	Retroplan     RetroplanRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		AcademicEvent: NewAcademicEventRepo(db),
		Commitment:    NewCommitmentRepo(db),
		EnergyLog:     NewEnergyLogRepo(db),
		Goal:          NewGoalRepo(db),
		Retroplan:     NewRetroplanRepo(db),
	}
}
