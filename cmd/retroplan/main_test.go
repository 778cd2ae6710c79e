//go:build cgo

package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

func init() {
	color.NoColor = true
}

func TestRunScenario_ScenarioA(t *testing.T) {
	sc, err := LoadScenario("testdata/scenario_a.yaml")
	if err != nil {
		t.Fatalf("LoadScenario 应成功: %v", err)
	}

	plan, alerts, err := RunScenario(context.Background(), sc, 4, zap.NewNop())
	if err != nil {
		t.Fatalf("RunScenario 应成功: %v", err)
	}
	if plan.TotalWeeks != 4 || len(plan.Milestones) != 4 {
		t.Fatalf("期望 4 周，实际 %d / %d", plan.TotalWeeks, len(plan.Milestones))
	}
	if plan.FeasibilityScore != 0.64 {
		t.Errorf("期望可行性 0.64，实际 %v", plan.FeasibilityScore)
	}
	if alerts == nil || len(alerts.Alerts) != 0 {
		t.Errorf("无学业事件时不应有预警: %+v", alerts)
	}

	var buf bytes.Buffer
	PrintReport(&buf, plan, alerts)
	out := buf.String()
	for _, want := range []string{"=== Retroplan", "Feasibility:   64%", "€1000.00", "No low-capacity weeks ahead"} {
		if !strings.Contains(out, want) {
			t.Errorf("报告缺少 %q:\n%s", want, out)
		}
	}
}

func TestRunScenario_ExamWeekProtected(t *testing.T) {
	sc, err := LoadScenario("testdata/scenario_exam.yaml")
	if err != nil {
		t.Fatalf("LoadScenario 应成功: %v", err)
	}

	plan, alerts, err := RunScenario(context.Background(), sc, 4, zap.NewNop())
	if err != nil {
		t.Fatalf("RunScenario 应成功: %v", err)
	}
	week2 := plan.Milestones[1]
	if week2.Capacity.Category != "protected" {
		t.Errorf("考试周应为 protected，实际 %s (score %d)", week2.Capacity.Category, week2.Capacity.CapacityScore)
	}
	if len(week2.Capacity.ContributingEvents) != 1 || week2.Capacity.ContributingEvents[0].Name != "Partiels S2" {
		t.Errorf("考试周应关联 Partiels S2: %+v", week2.Capacity.ContributingEvents)
	}
	if plan.SavingsContribution <= 0 {
		t.Errorf("月度结余为正时应有储蓄贡献，实际 %v", plan.SavingsContribution)
	}

	found := false
	for _, a := range alerts.Alerts {
		if a.WeekNumber == 2 && a.Action == "add-protection" {
			found = true
		}
	}
	if !found {
		t.Errorf("第 2 周应产生 add-protection 预警: %+v", alerts.Alerts)
	}

	var buf bytes.Buffer
	PrintReport(&buf, plan, alerts)
	if !strings.Contains(buf.String(), "Partiels S2") {
		t.Errorf("报告应列出贡献事件:\n%s", buf.String())
	}
}

func TestParseScenario_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"金额缺失", "goal: {deadline: \"2025-03-31\"}\n"},
		{"截止日期非法", "goal: {amount: 10, deadline: \"31/03/2025\"}\n"},
		{"未知事件类型", "goal: {amount: 10, deadline: \"2025-03-31\"}\nevents:\n  - {type: party, name: x, start: \"2025-03-03\"}\n"},
		{"未知字段", "goal: {amount: 10, deadline: \"2025-03-31\"}\nbudget: 3\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario(strings.NewReader(tt.yaml)); err == nil {
				t.Error("期望解析失败")
			}
		})
	}
}
