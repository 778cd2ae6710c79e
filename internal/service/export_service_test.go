package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func TestExportService_ExportRetroplan_NotGenerated(t *testing.T) {
	svc, _ := setupTestRetroplanService()
	export := NewExportService(svc, zap.NewNop())

	_, _, err := export.ExportRetroplan(context.Background(), "goal-001", testOwner)
	if !errors.Is(err, ErrRetroplanNotFound) {
		t.Errorf("期望 ErrRetroplanNotFound，实际: %v", err)
	}
}

func TestExportService_ExportRetroplan_Success(t *testing.T) {
	svc, _ := setupTestRetroplanService()
	if _, err := svc.Generate(context.Background(), scenarioARequest(), testOwner); err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	export := NewExportService(svc, zap.NewNop())

	buf, filename, err := export.ExportRetroplan(context.Background(), "goal-001", testOwner)
	if err != nil {
		t.Fatalf("ExportRetroplan 应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") || !strings.Contains(filename, "2025-03-31") {
		t.Errorf("文件名不正确: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应可被解析: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "里程碑" || sheets[1] != "概览" {
		t.Errorf("Sheet 列表不正确: %v", sheets)
	}
	rows, err := f.GetRows("里程碑")
	if err != nil {
		t.Fatalf("读取里程碑失败: %v", err)
	}
	// 表头 + 4 周
	if len(rows) != 5 {
		t.Fatalf("期望 5 行，实际 %d", len(rows))
	}
	if rows[1][0] != "1" || rows[1][7] != "250" || rows[4][8] != "1000" {
		t.Errorf("里程碑内容不正确: %v / %v", rows[1], rows[4])
	}
}
