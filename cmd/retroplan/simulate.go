package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"stride/backend/config"
	"stride/backend/internal/dto"
	"stride/backend/internal/model"
	"stride/backend/internal/repository"
	"stride/backend/internal/service"
	"stride/backend/pkg/caldate"
)

var (
	simulateFile      string
	simulateXLSX      string
	simulateLookahead int
	simulateVerbose   bool
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Generate a retroplan from a YAML scenario",
	Long: `Load a scenario (goal, academic events, commitments, energy logs) into an
in-memory store, run the retroplanning engine and print a coloured weekly report.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := LoadScenario(simulateFile)
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		if simulateVerbose {
			if logger, err = zap.NewDevelopment(); err != nil {
				return err
			}
		}

		caldate.SetLogger(logger)

		plan, alerts, err := RunScenario(cmd.Context(), sc, simulateLookahead, logger)
		if err != nil {
			return err
		}

		PrintReport(os.Stdout, plan, alerts)

		if simulateXLSX != "" {
			buf, err := service.RenderRetroplanXLSX(plan)
			if err != nil {
				return err
			}
			if err := os.WriteFile(simulateXLSX, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("写入 xlsx 失败: %w", err)
			}
			fmt.Printf("\n已导出: %s\n", simulateXLSX)
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVarP(&simulateFile, "file", "f", "", "scenario YAML file")
	simulateCmd.Flags().StringVar(&simulateXLSX, "xlsx", "", "also export the plan to this .xlsx path")
	simulateCmd.Flags().IntVar(&simulateLookahead, "lookahead", 4, "weeks of low-capacity alerts to show")
	simulateCmd.Flags().BoolVarP(&simulateVerbose, "verbose", "v", false, "log engine internals")
	_ = simulateCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(simulateCmd)
}

// RunScenario 把场景写入内存 SQLite，生成计划并计算预警
func RunScenario(ctx context.Context, sc *Scenario, lookahead int, logger *zap.Logger) (*dto.Retroplan, *dto.PredictionsResponse, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := openMemoryDB()
	if err != nil {
		return nil, nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	events, commitments, logs := sc.Models()
	if err := db.Transaction(func(tx *gorm.DB) error {
		if len(events) > 0 {
			if err := tx.Create(&events).Error; err != nil {
				return err
			}
		}
		if len(commitments) > 0 {
			if err := tx.Create(&commitments).Error; err != nil {
				return err
			}
		}
		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return nil, nil, fmt.Errorf("写入场景数据失败: %w", err)
	}

	cfg := config.Default()
	svc := service.NewService(cfg, repository.NewRepository(db), nil, logger)

	plan, err := svc.Retroplan.Generate(ctx, sc.Request(), sc.OwnerID)
	if err != nil {
		return nil, nil, err
	}

	if lookahead <= 0 {
		return plan, nil, nil
	}
	alerts, err := svc.Retroplan.GetPredictions(ctx, plan.GoalID, sc.OwnerID, &dto.PredictionsQuery{
		LookaheadWeeks: lookahead,
		SimulatedDate:  sc.Today,
	})
	if err != nil {
		return nil, nil, err
	}
	return plan, alerts, nil
}

func openMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("打开内存数据库失败: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&model.AcademicEvent{},
		&model.Commitment{},
		&model.EnergyLog{},
		&model.Goal{},
		&model.Retroplan{},
	); err != nil {
		return nil, fmt.Errorf("初始化内存数据库失败: %w", err)
	}
	return db, nil
}
