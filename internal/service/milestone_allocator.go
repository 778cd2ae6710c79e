package service

import (
	"math"

	"stride/backend/internal/dto"
)

// weeksPerMonth 月度结余换算为周期内总额时使用
const weeksPerMonth = 4.33

// SavingsInput 非工作收入来源；按 ProjectedSavingsBasis > ActualTotalSavings > MonthlyMargin 的优先级取值
type SavingsInput struct {
	ProjectedSavingsBasis *float64
	ActualTotalSavings    *float64
	MonthlyMargin         *float64 // 可为负数，负数会加重工作负担
}

// SavingsContribution 计算计划周期内的储蓄贡献
func SavingsContribution(in SavingsInput, totalWeeks int) float64 {
	switch {
	case in.ProjectedSavingsBasis != nil:
		return round2(*in.ProjectedSavingsBasis)
	case in.ActualTotalSavings != nil:
		return round2(*in.ActualTotalSavings)
	case in.MonthlyMargin != nil:
		months := float64(totalWeeks) / weeksPerMonth
		return round2(*in.MonthlyMargin * months)
	default:
		return 0
	}
}

// EffectiveGoalForWork 需通过工作挣得的部分，不低于 0
func EffectiveGoalForWork(goalAmount, contribution float64) float64 {
	return round2(math.Max(0, goalAmount-contribution))
}

// AllocateMilestones 按产能分数比例把目标金额分摊到各周。
// 总分为 0 时退化为按周数平均分摊。
func AllocateMilestones(capacities []dto.WeekCapacity, effectiveGoalForWork float64) []dto.Milestone {
	milestones := make([]dto.Milestone, 0, len(capacities))
	if len(capacities) == 0 {
		return milestones
	}

	n := float64(len(capacities))
	totalScore := 0
	for _, c := range capacities {
		totalScore += c.CapacityScore
	}

	baseTarget := roundHalfUp(effectiveGoalForWork / n)
	perPoint := 0.0
	if totalScore > 0 {
		perPoint = effectiveGoalForWork / float64(totalScore)
	}

	cumulative := 0.0
	for _, c := range capacities {
		var adjusted float64
		if totalScore > 0 {
			adjusted = roundHalfUp(float64(c.CapacityScore) * perPoint)
		} else {
			adjusted = baseTarget
		}
		cumulative += adjusted
		milestones = append(milestones, dto.Milestone{
			WeekNumber:       c.WeekNumber,
			BaseTarget:       baseTarget,
			AdjustedTarget:   adjusted,
			CumulativeTarget: cumulative,
			Difficulty:       DifficultyForCategory(c.Category),
			Capacity:         c,
		})
	}
	return milestones
}

// DifficultyForCategory 产能分类到里程碑难度的一一映射
func DifficultyForCategory(category string) string {
	switch category {
	case dto.CategoryProtected:
		return dto.DifficultyProtected
	case dto.CategoryLow:
		return dto.DifficultyChallenging
	case dto.CategoryMedium:
		return dto.DifficultyModerate
	default:
		return dto.DifficultyEasy
	}
}

// FrontLoadedPercentage 前半程（ceil(n/2) 周）分摊金额占比，整数百分比
func FrontLoadedPercentage(milestones []dto.Milestone, effectiveGoalForWork float64) float64 {
	if len(milestones) == 0 || effectiveGoalForWork <= 0 {
		return 0
	}
	half := (len(milestones) + 1) / 2
	sum := 0.0
	for _, m := range milestones[:half] {
		sum += m.AdjustedTarget
	}
	return roundHalfUp(sum / effectiveGoalForWork * 100)
}
