package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"stride/backend/internal/dto"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 计划导出为 Excel (.xlsx)：「里程碑」逐周明细 + 「概览」汇总与风险因素
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRetroplan 导出已生成的计划
	ExportRetroplan(ctx context.Context, goalID, ownerID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	retroplan RetroplanService
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(retroplan RetroplanService, logger *zap.Logger) ExportService {
	return &exportService{retroplan: retroplan, logger: logger}
}

func (s *exportService) ExportRetroplan(ctx context.Context, goalID, ownerID string) (*bytes.Buffer, string, error) {
	plan, err := s.retroplan.Get(ctx, goalID, ownerID)
	if err != nil {
		return nil, "", err
	}
	buf, err := RenderRetroplanXLSX(plan)
	if err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("goal_id", goalID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	return buf, RetroplanFilename(plan), nil
}

// RetroplanFilename 建议的导出文件名
func RetroplanFilename(plan *dto.Retroplan) string {
	return fmt.Sprintf("retroplan_%s_%s.xlsx", plan.Deadline.String(), shortID(plan.GoalID))
}

// ════════════════════════════════════════════════════════════
// RenderRetroplanXLSX — 计划写入 Excel
// ════════════════════════════════════════════════════════════
//
// Sheet「里程碑」：| 周 | 开始 | 结束 | 分类 | 产能 | 工时 | 可挣上限 | 本周目标 | 累计目标 | 难度 |
// Sheet「概览」：目标、已挣、时薪、储蓄贡献、可行性、前置比例、各分类周数与风险因素

func RenderRetroplanXLSX(plan *dto.Retroplan) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const milestoneSheet = "里程碑"
	const summarySheet = "概览"

	idx, err := f.NewSheet(milestoneSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	protectedStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F8CBAD"}, Pattern: 1},
	})
	lowStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE699"}, Pattern: 1},
	})

	// ── 里程碑 ──
	headers := []string{"周", "开始", "结束", "分类", "产能", "工时", "可挣上限", "本周目标", "累计目标", "难度"}
	for i, h := range headers {
		f.SetCellValue(milestoneSheet, cell(colName(i), 1), h)
	}
	f.SetCellStyle(milestoneSheet, "A1", cell(colName(len(headers)-1), 1), headerStyle)
	f.SetColWidth(milestoneSheet, "A", "A", 6)
	f.SetColWidth(milestoneSheet, "B", "C", 12)
	f.SetColWidth(milestoneSheet, "D", "J", 12)

	for i, m := range plan.Milestones {
		row := i + 2
		c := m.Capacity
		values := []interface{}{
			m.WeekNumber,
			c.WeekStartDate.String(),
			c.WeekEndDate.String(),
			c.Category,
			c.CapacityScore,
			c.EffectiveHours,
			money(c.MaxEarningPotential),
			money(m.AdjustedTarget),
			money(m.CumulativeTarget),
			m.Difficulty,
		}
		for j, v := range values {
			f.SetCellValue(milestoneSheet, cell(colName(j), row), v)
		}
		switch c.Category {
		case dto.CategoryProtected:
			f.SetCellStyle(milestoneSheet, cell("A", row), cell(colName(len(headers)-1), row), protectedStyle)
		case dto.CategoryLow:
			f.SetCellStyle(milestoneSheet, cell("A", row), cell(colName(len(headers)-1), row), lowStyle)
		}
	}

	// ── 概览 ──
	f.SetColWidth(summarySheet, "A", "A", 22)
	f.SetColWidth(summarySheet, "B", "B", 60)
	summary := [][2]interface{}{
		{"目标 ID", plan.GoalID},
		{"开始日期", plan.StartDate.String()},
		{"截止日期", plan.Deadline.String()},
		{"目标金额", money(plan.GoalAmount)},
		{"已挣金额", money(plan.TotalEarned)},
		{"时薪", money(plan.HourlyRate)},
		{"储蓄贡献", money(plan.SavingsContribution)},
		{"需工作挣得", money(plan.EffectiveGoalForWork)},
		{"总周数", plan.TotalWeeks},
		{"剩余周数", plan.WeeksRemaining},
		{"可行性", fmt.Sprintf("%.0f%%", plan.FeasibilityScore*100)},
		{"前半程分摊", fmt.Sprintf("%.0f%%", plan.FrontLoadedPercentage)},
		{"保护周 / 低产能周", fmt.Sprintf("%d / %d", plan.WeekCategoryCounts.Protected, plan.WeekCategoryCounts.Low)},
		{"中 / 高 / 提升", fmt.Sprintf("%d / %d / %d", plan.WeekCategoryCounts.Medium, plan.WeekCategoryCounts.High, plan.WeekCategoryCounts.Boosted)},
	}
	row := 1
	for _, kv := range summary {
		f.SetCellValue(summarySheet, cell("A", row), kv[0])
		f.SetCellValue(summarySheet, cell("B", row), kv[1])
		row++
	}
	row++
	f.SetCellValue(summarySheet, cell("A", row), "风险因素")
	f.SetCellStyle(summarySheet, cell("A", row), cell("A", row), headerStyle)
	for _, r := range plan.RiskFactors {
		row++
		f.SetCellValue(summarySheet, cell("B", row), r)
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ── 辅助函数 ──

// money 金额按两位小数定点写入，避免浮点尾差出现在表格中
func money(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
