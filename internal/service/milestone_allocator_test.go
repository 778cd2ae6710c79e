package service

import (
	"math"
	"testing"

	"stride/backend/internal/dto"
	"stride/backend/pkg/caldate"
)

func capacitiesWithScores(scores ...int) []dto.WeekCapacity {
	start := caldate.MustParse("2025-03-03")
	out := make([]dto.WeekCapacity, 0, len(scores))
	for i, s := range scores {
		out = append(out, dto.WeekCapacity{
			WeekNumber:    i + 1,
			WeekStartDate: start.AddDays(7 * i),
			CapacityScore: s,
			Category:      CategoryForScore(s),
		})
	}
	return out
}

func TestAllocateMilestones_EqualCapacity(t *testing.T) {
	ms := AllocateMilestones(capacitiesWithScores(100, 100, 100, 100), 1000)
	if len(ms) != 4 {
		t.Fatalf("期望 4 个里程碑，实际 %d", len(ms))
	}
	for i, m := range ms {
		if m.AdjustedTarget != 250 || m.BaseTarget != 250 {
			t.Errorf("第 %d 周期望 250/250，实际 %v/%v", i+1, m.AdjustedTarget, m.BaseTarget)
		}
		if m.CumulativeTarget != float64(250*(i+1)) {
			t.Errorf("第 %d 周累计目标错误: %v", i+1, m.CumulativeTarget)
		}
		if m.Difficulty != dto.DifficultyEasy {
			t.Errorf("high 周难度应为 easy，实际 %s", m.Difficulty)
		}
	}
}

func TestAllocateMilestones_ProportionalAndMonotonic(t *testing.T) {
	ms := AllocateMilestones(capacitiesWithScores(20, 100, 45, 150, 70), 1234)

	prev := 0.0
	sum := 0.0
	for _, m := range ms {
		if m.CumulativeTarget < prev {
			t.Errorf("累计目标应单调不减: %v < %v", m.CumulativeTarget, prev)
		}
		prev = m.CumulativeTarget
		sum += m.AdjustedTarget
	}
	if math.Abs(prev-1234) > float64(len(ms)) {
		t.Errorf("最终累计目标应约等于 1234，实际 %v", prev)
	}
	if sum != prev {
		t.Errorf("分摊之和应等于最终累计目标: %v vs %v", sum, prev)
	}
	if ms[0].AdjustedTarget >= ms[1].AdjustedTarget {
		t.Error("保护周的目标应低于高产能周")
	}
	if ms[0].Difficulty != dto.DifficultyProtected || ms[2].Difficulty != dto.DifficultyChallenging || ms[4].Difficulty != dto.DifficultyModerate {
		t.Errorf("难度映射错误: %s %s %s", ms[0].Difficulty, ms[2].Difficulty, ms[4].Difficulty)
	}
}

func TestAllocateMilestones_ZeroCapacityFallsBackToEvenSplit(t *testing.T) {
	ms := AllocateMilestones(capacitiesWithScores(0, 0, 0), 900)
	for _, m := range ms {
		if m.AdjustedTarget != 300 {
			t.Errorf("总产能为 0 时应平均分摊，期望 300，实际 %v", m.AdjustedTarget)
		}
		if math.IsNaN(m.AdjustedTarget) || math.IsInf(m.AdjustedTarget, 0) {
			t.Fatal("不应出现 NaN/Inf")
		}
	}
}

func TestAllocateMilestones_Empty(t *testing.T) {
	if ms := AllocateMilestones(nil, 1000); len(ms) != 0 {
		t.Errorf("无周时应返回空列表，实际 %d", len(ms))
	}
}

func TestSavingsContribution_Priority(t *testing.T) {
	tests := []struct {
		name string
		in   SavingsInput
		want float64
	}{
		{"预计储蓄优先", SavingsInput{ProjectedSavingsBasis: f64(300), ActualTotalSavings: f64(100), MonthlyMargin: f64(50)}, 300},
		{"其次实际储蓄", SavingsInput{ActualTotalSavings: f64(100), MonthlyMargin: f64(50)}, 100},
		{"最后月度结余", SavingsInput{MonthlyMargin: f64(100)}, 300.23},
		{"负结余", SavingsInput{MonthlyMargin: f64(-100)}, -300.23},
		{"无数据", SavingsInput{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SavingsContribution(tt.in, 13); !almostEqual(got, tt.want) {
				t.Errorf("期望 %v，实际 %v", tt.want, got)
			}
		})
	}
}

func TestEffectiveGoalForWork(t *testing.T) {
	if got := EffectiveGoalForWork(1000, -300.23); !almostEqual(got, 1300.23) {
		t.Errorf("负贡献应增加工作目标，实际 %v", got)
	}
	if got := EffectiveGoalForWork(1000, 2000); got != 0 {
		t.Errorf("贡献超过目标时应为 0，实际 %v", got)
	}
}

func TestFrontLoadedPercentage(t *testing.T) {
	ms := AllocateMilestones(capacitiesWithScores(100, 100, 100, 100), 1000)
	if got := FrontLoadedPercentage(ms, 1000); got != 50 {
		t.Errorf("均匀分摊时前半程应为 50%%，实际 %v", got)
	}

	ms = AllocateMilestones(capacitiesWithScores(150, 150, 20, 20), 1000)
	if got := FrontLoadedPercentage(ms, 1000); got <= 50 {
		t.Errorf("前高后低时前半程应超过 50%%，实际 %v", got)
	}

	if got := FrontLoadedPercentage(ms, 0); got != 0 {
		t.Errorf("目标为 0 时应返回 0，实际 %v", got)
	}
}
