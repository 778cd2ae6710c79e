package service

import (
	"fmt"
	"math"

	"stride/backend/internal/dto"
)

// ── 可行性评分 ────────────────────────────────────────────
//
// score = 基础分 × 紧迫度 × 强度惩罚 × 进度惩罚 × 次级衰减
//   - 已达成（剩余目标 <= 0）直接返回 1.0，不再计算其他因子
//   - 未达成时结果保留两位小数并限制在 [0.01, 0.99]
// ─────────────────────────────────────────────────────────────

const (
	scoreFloor          = 0.01
	scoreCeilUnachieved = 0.99

	penaltyStartProgress = 0.2
	penaltyFullProgress  = 0.8
	maxPerformanceCut    = 0.5

	urgencyFullWeeks  = 8.0
	shortTimelineWeek = 4

	protectedShareLimit = 0.3
	lowShareLimit       = 0.4
)

// FeasibilityInput 评分输入
type FeasibilityInput struct {
	GoalAmount          float64
	TotalEarned         float64
	TotalWeeks          int
	WeeksRemaining      int
	Milestones          []dto.Milestone
	SavingsContribution float64
	Counts              dto.WeekCategoryCounts
}

// FeasibilityResult 评分结果；RiskFactors 按产生顺序排列
type FeasibilityResult struct {
	Score       float64
	RiskFactors []string
}

// ScoreFeasibility 评估剩余目标在剩余周内能否完成
func ScoreFeasibility(in FeasibilityInput) FeasibilityResult {
	remainingGoal := math.Max(0, in.GoalAmount-in.TotalEarned)
	if remainingGoal <= 0 {
		return FeasibilityResult{
			Score:       1.0,
			RiskFactors: []string{"🎉 目标已达成，继续保持！"},
		}
	}

	risks := []string{}
	totalWeeks := in.TotalWeeks
	if totalWeeks < 1 {
		totalWeeks = 1
	}
	weeksRemaining := in.WeeksRemaining
	if weeksRemaining < 0 {
		weeksRemaining = 0
	}
	if weeksRemaining > totalWeeks {
		weeksRemaining = totalWeeks
	}

	// 1. 实际进度惩罚
	performance := performancePenalty(remainingGoal, in.TotalEarned, totalWeeks, weeksRemaining, &risks)

	// 2. 紧迫度
	urgency := math.Min(1.0, 0.5+0.5*math.Min(1, float64(weeksRemaining)/urgencyFullWeeks))
	if weeksRemaining <= shortTimelineWeek {
		risks = append(risks, fmt.Sprintf("时间紧迫：距截止日期仅剩 %d 周", weeksRemaining))
	}

	// 3. 剩余周的强度
	remaining := remainingMilestones(in.Milestones, weeksRemaining)
	intensity := intensityPenalty(remaining, &risks)

	// 4. 基础分
	effectiveMax := 0.0
	for _, m := range remaining {
		effectiveMax += m.Capacity.MaxEarningPotential
	}
	effectiveMax += in.SavingsContribution * float64(weeksRemaining) / float64(totalWeeks)
	base := baseScore(remainingGoal, effectiveMax, &risks)

	score := base * urgency * intensity * performance

	// 5. 次级衰减
	if float64(in.Counts.Protected) > protectedShareLimit*float64(totalWeeks) {
		score *= 0.9
		risks = append(risks, fmt.Sprintf("%d 周处于保护期（考试等），可工作时间有限", in.Counts.Protected))
	}
	if float64(in.Counts.Low) > lowShareLimit*float64(totalWeeks) {
		score *= 0.95
		risks = append(risks, fmt.Sprintf("%d 周产能偏低", in.Counts.Low))
	}

	score = round2(score)
	if math.IsNaN(score) || score < scoreFloor {
		score = scoreFloor
	}
	if score > scoreCeilUnachieved {
		score = scoreCeilUnachieved
	}
	return FeasibilityResult{Score: score, RiskFactors: risks}
}

// performancePenalty 进度达到 20% 后开始生效，80% 时完全生效，之间线性插值
func performancePenalty(remainingGoal, totalEarned float64, totalWeeks, weeksRemaining int, risks *[]string) float64 {
	elapsed := totalWeeks - weeksRemaining
	if elapsed < 1 {
		elapsed = 1
	}
	progress := float64(elapsed) / float64(totalWeeks)
	if progress < penaltyStartProgress {
		return 1.0
	}

	actualRate := totalEarned / float64(elapsed)
	requiredRate := remainingGoal / math.Max(1, float64(weeksRemaining))
	if requiredRate <= 0 {
		return 1.0
	}
	ratio := actualRate / requiredRate
	if ratio >= 1.0 {
		return 1.0
	}

	scale := math.Min(1, (progress-penaltyStartProgress)/(penaltyFullProgress-penaltyStartProgress))
	reduction := maxPerformanceCut * (1 - ratio) * scale

	pct := int(roundHalfUp(ratio * 100))
	switch {
	case ratio < 0.3:
		*risks = append(*risks, fmt.Sprintf("实际收入进度严重落后：仅为所需速度的 %d%%", pct))
	case ratio < 0.6:
		*risks = append(*risks, fmt.Sprintf("实际收入进度落后：为所需速度的 %d%%", pct))
	case ratio < 0.9:
		*risks = append(*risks, fmt.Sprintf("实际收入进度略慢：为所需速度的 %d%%", pct))
	}
	return 1 - reduction
}

// intensityPenalty 剩余周平均所需金额 / 平均可挣金额
func intensityPenalty(remaining []dto.Milestone, risks *[]string) float64 {
	if len(remaining) == 0 {
		return 1.0
	}
	var required, capacity float64
	for _, m := range remaining {
		required += m.AdjustedTarget
		capacity += m.Capacity.MaxEarningPotential
	}
	n := float64(len(remaining))
	avgRequired, avgCapacity := required/n, capacity/n

	if avgRequired <= 0 {
		return 1.0
	}
	if avgCapacity <= 0 {
		*risks = append(*risks, "剩余周几乎没有可工作时间，每周所需金额无法覆盖")
		return 0.6
	}

	ratio := avgRequired / avgCapacity
	switch {
	case ratio > 1.0:
		*risks = append(*risks, fmt.Sprintf("每周所需金额超出可挣上限（%d%%）", int(roundHalfUp(ratio*100))))
		return 0.6
	case ratio > 0.7:
		return 1.0 - (ratio-0.7)/0.3*0.2
	default:
		return 1.0
	}
}

// baseScore 由 剩余目标 / 可挣上限 推导
func baseScore(remainingGoal, effectiveMax float64, risks *[]string) float64 {
	if effectiveMax <= 0 {
		*risks = append(*risks, fmt.Sprintf("剩余时间内无法产生收入，缺口 %.0f", remainingGoal))
		return scoreFloor
	}
	ratio := remainingGoal / effectiveMax
	switch {
	case ratio <= 0.5:
		return 1.0
	case ratio <= 0.7:
		return 0.95 - (ratio-0.5)/0.2*0.10
	case ratio <= 1.0:
		return 0.85 - (ratio-0.7)/0.3*0.35
	default:
		*risks = append(*risks, fmt.Sprintf("按当前产能最多可挣 %.0f，距剩余目标还差 %.0f", effectiveMax, remainingGoal-effectiveMax))
		return effectiveMax / remainingGoal
	}
}

// remainingMilestones 取计划末尾的 weeksRemaining 周
func remainingMilestones(milestones []dto.Milestone, weeksRemaining int) []dto.Milestone {
	if weeksRemaining <= 0 {
		return nil
	}
	if weeksRemaining >= len(milestones) {
		return milestones
	}
	return milestones[len(milestones)-weeksRemaining:]
}
