package service

import (
	"math"

	"stride/backend/internal/dto"
	"stride/backend/internal/model"
	"stride/backend/pkg/caldate"
)

// ── 产能计算 ──────────────────────────────────────────────
//
// 单周产能 = 学业系数 × 状态系数：
//   - 学业系数：与本周重叠的事件中，只要存在限制型（<1）就取最小值，否则取提升型（>1）的最大值
//   - 状态系数：最近若干条自评的 精力 + 心情 + (6-压力) 均值之和，映射到 0.6 ~ 1.4
//   - 有效工时：显式给出每周可用时长时不乘状态系数
// ─────────────────────────────────────────────────────────────

const (
	hoursPerWeek        = 168.0
	sleepHoursPerWeek   = 56.0
	bufferHoursPerWeek  = 21.0
	workConversionRatio = 0.3

	energyFloor = 0.6
	energySpan  = 0.8
	energyScale = 15.0
)

// 产能分类阈值（作用于 capacity_score）
const (
	protectedBelow = 30
	lowBelow       = 60
	mediumBelow    = 85
	boostedAbove   = 110
)

// CapacityInput 单周产能计算输入；事件、固定投入、自评记录由调用方一次性预取
type CapacityInput struct {
	WeekNumber            int
	WeekStart             caldate.Date
	Events                []model.AcademicEvent
	Commitments           []model.Commitment
	EnergyLogs            []model.EnergyLog // 最近在前，调用方已截取窗口
	HourlyRate            float64
	AvailableHoursPerWeek *float64
}

// CalculateWeekCapacity 计算单周产能
func CalculateWeekCapacity(in CapacityInput) dto.WeekCapacity {
	weekEnd := in.WeekStart.AddDays(6)

	academic, contributing := academicMultiplier(in.WeekStart, weekEnd, in.Events)
	energy := energyMultiplier(in.EnergyLogs)
	score := int(roundHalfUp(academic * energy * 100))

	var hours int
	if in.AvailableHoursPerWeek != nil {
		hours = int(roundHalfUp(math.Max(0, *in.AvailableHoursPerWeek) * academic))
	} else {
		base := math.Max(0, hoursPerWeek-sleepHoursPerWeek-totalCommitmentHours(in.Commitments)-bufferHoursPerWeek)
		hours = int(roundHalfUp(base * academic * energy * workConversionRatio))
	}

	return dto.WeekCapacity{
		WeekNumber:          in.WeekNumber,
		WeekStartDate:       in.WeekStart,
		WeekEndDate:         weekEnd,
		CapacityScore:       score,
		Category:            CategoryForScore(score),
		EffectiveHours:      hours,
		AcademicMultiplier:  academic,
		EnergyMultiplier:    round2(energy),
		ContributingEvents:  contributing,
		MaxEarningPotential: round2(float64(hours) * in.HourlyRate),
	}
}

// CategoryForScore 由 capacity_score 推导产能分类
func CategoryForScore(score int) string {
	switch {
	case score < protectedBelow:
		return dto.CategoryProtected
	case score < lowBelow:
		return dto.CategoryLow
	case score < mediumBelow:
		return dto.CategoryMedium
	case score > boostedAbove:
		return dto.CategoryBoosted
	default:
		return dto.CategoryHigh
	}
}

// academicMultiplier 限制优先：同一周内限制型事件总是压过提升型事件
func academicMultiplier(weekStart, weekEnd caldate.Date, events []model.AcademicEvent) (float64, []dto.ContributingEvent) {
	contributing := []dto.ContributingEvent{}
	minRestrict, maxBoost := 1.0, 1.0
	hasRestrict, hasBoost := false, false

	for _, e := range events {
		if !overlapsWeek(e, weekStart, weekEnd) {
			continue
		}
		contributing = append(contributing, dto.ContributingEvent{
			ID:             e.AcademicEventID,
			Name:           e.Name,
			Type:           e.Type,
			CapacityImpact: e.CapacityImpact,
		})
		switch {
		case e.CapacityImpact < 1.0:
			if !hasRestrict || e.CapacityImpact < minRestrict {
				minRestrict = e.CapacityImpact
			}
			hasRestrict = true
		case e.CapacityImpact > 1.0:
			if !hasBoost || e.CapacityImpact > maxBoost {
				maxBoost = e.CapacityImpact
			}
			hasBoost = true
		}
	}

	switch {
	case hasRestrict:
		return math.Max(0, minRestrict), contributing
	case hasBoost:
		return maxBoost, contributing
	default:
		return 1.0, contributing
	}
}

// overlapsWeek 按日历日字符串比较：start <= weekEnd && end >= weekStart
func overlapsWeek(e model.AcademicEvent, weekStart, weekEnd caldate.Date) bool {
	if e.StartDate.IsZero() {
		return false
	}
	end := e.EndDate
	if end.IsZero() {
		end = e.StartDate
	}
	return !e.StartDate.After(weekEnd) && !end.Before(weekStart)
}

// energyMultiplier 无自评记录时为 1.0
func energyMultiplier(logs []model.EnergyLog) float64 {
	if len(logs) == 0 {
		return 1.0
	}
	var energy, mood, calm float64
	for _, l := range logs {
		energy += float64(l.EnergyLevel)
		mood += float64(l.MoodScore)
		calm += float64(6 - l.StressLevel)
	}
	n := float64(len(logs))
	composite := energy/n + mood/n + calm/n
	return energyFloor + (composite/energyScale)*energySpan
}

func totalCommitmentHours(commitments []model.Commitment) float64 {
	total := 0.0
	for _, c := range commitments {
		if c.HoursPerWeek > 0 {
			total += c.HoursPerWeek
		}
	}
	return total
}

// ── 数值辅助 ──

// roundHalfUp 四舍五入，.5 一律向正无穷方向进位
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// round2 保留两位小数
func round2(x float64) float64 {
	return roundHalfUp(x*100) / 100
}
