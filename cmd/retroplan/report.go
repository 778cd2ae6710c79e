package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"stride/backend/internal/dto"
)

// PrintReport 终端报告：概览、逐周里程碑、风险因素与预警
func PrintReport(w io.Writer, plan *dto.Retroplan, alerts *dto.PredictionsResponse) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(w, "\n%s\n\n", cyan("=== Retroplan "+plan.GoalID+" ==="))

	fmt.Fprintf(w, "%s\n", yellow("Overview:"))
	fmt.Fprintf(w, "  Period:        %s → %s (%d weeks, %d remaining)\n",
		plan.StartDate, plan.Deadline, plan.TotalWeeks, plan.WeeksRemaining)
	fmt.Fprintf(w, "  Goal:          %s (earned %s, hourly rate %s)\n",
		money(plan.GoalAmount), money(plan.TotalEarned), money(plan.HourlyRate))
	fmt.Fprintf(w, "  Savings:       %s → work target %s\n",
		money(plan.SavingsContribution), money(plan.EffectiveGoalForWork))
	fmt.Fprintf(w, "  Feasibility:   %s\n", feasibilityColor(plan.FeasibilityScore)(fmt.Sprintf("%.0f%%", plan.FeasibilityScore*100)))
	fmt.Fprintf(w, "  Front-loaded:  %.0f%%\n", plan.FrontLoadedPercentage)
	c := plan.WeekCategoryCounts
	fmt.Fprintf(w, "  Weeks:         %d protected · %d low · %d medium · %d high · %d boosted\n",
		c.Protected, c.Low, c.Medium, c.High, c.Boosted)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "%s\n", yellow("Milestones:"))
	fmt.Fprintf(w, "  %s\n", gray(fmt.Sprintf("%-4s %-10s %-10s %5s %5s %9s %9s %10s  %s",
		"Wk", "Start", "Category", "Score", "Hours", "Potential", "Target", "Cumulative", "Events")))
	for _, m := range plan.Milestones {
		wc := m.Capacity
		names := make([]string, 0, len(wc.ContributingEvents))
		for _, e := range wc.ContributingEvents {
			names = append(names, e.Name)
		}
		line := fmt.Sprintf("%-4d %-10s %-10s %5d %5d %9s %9s %10s  %s",
			m.WeekNumber, wc.WeekStartDate, wc.Category, wc.CapacityScore, wc.EffectiveHours,
			money(wc.MaxEarningPotential), money(m.AdjustedTarget), money(m.CumulativeTarget),
			strings.Join(names, ", "))
		fmt.Fprintf(w, "  %s\n", categoryColor(wc.Category)(line))
	}
	fmt.Fprintln(w)

	if len(plan.RiskFactors) > 0 {
		fmt.Fprintf(w, "%s\n", yellow("Risk factors:"))
		for _, r := range plan.RiskFactors {
			fmt.Fprintf(w, "  • %s\n", r)
		}
		fmt.Fprintln(w)
	}

	if alerts == nil {
		return
	}
	fmt.Fprintf(w, "%s\n", yellow(fmt.Sprintf("Alerts (week %d, next %d weeks):", alerts.CurrentWeek, alerts.LookaheadWeeks)))
	if len(alerts.Alerts) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("No low-capacity weeks ahead"))
		return
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	for _, a := range alerts.Alerts {
		icon := yellow("⚠")
		if a.Severity == "high" {
			icon = red("🚨")
		}
		fmt.Fprintf(w, "  %s week %d (%s) [%s] %s\n", icon, a.WeekNumber, a.WeekStartDate, a.Action, a.Message)
	}
}

func categoryColor(category string) func(a ...interface{}) string {
	switch category {
	case dto.CategoryProtected:
		return color.New(color.FgRed).SprintFunc()
	case dto.CategoryLow:
		return color.New(color.FgYellow).SprintFunc()
	case dto.CategoryHigh:
		return color.New(color.FgGreen).SprintFunc()
	case dto.CategoryBoosted:
		return color.New(color.FgCyan).SprintFunc()
	default:
		return fmt.Sprint
	}
}

func feasibilityColor(score float64) func(a ...interface{}) string {
	switch {
	case score >= 0.8:
		return color.New(color.FgGreen, color.Bold).SprintFunc()
	case score >= 0.5:
		return color.New(color.FgYellow, color.Bold).SprintFunc()
	default:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	}
}

func money(v float64) string {
	return "€" + decimal.NewFromFloat(v).StringFixed(2)
}
