package main

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"stride/backend/internal/dto"
	"stride/backend/internal/model"
	"stride/backend/pkg/caldate"
)

// Scenario 离线模拟输入
type Scenario struct {
	OwnerID               string           `yaml:"owner_id"`
	Today                 string           `yaml:"today"`
	Goal                  ScenarioGoal     `yaml:"goal"`
	AvailableHoursPerWeek *float64         `yaml:"available_hours_per_week,omitempty"`
	Events                []ScenarioEvent  `yaml:"events"`
	Commitments           []ScenarioCommit `yaml:"commitments"`
	EnergyLogs            []ScenarioEnergy `yaml:"energy_logs"`
	Savings               *ScenarioSavings `yaml:"savings,omitempty"`
}

// ScenarioGoal 目标参数
type ScenarioGoal struct {
	ID          string   `yaml:"id"`
	Amount      float64  `yaml:"amount"`
	Deadline    string   `yaml:"deadline"`
	StartDate   string   `yaml:"start_date,omitempty"`
	HourlyRate  *float64 `yaml:"hourly_rate,omitempty"`
	TotalEarned float64  `yaml:"total_earned,omitempty"`
}

// ScenarioEvent 学业事件；capacity_impact 缺省时取类型默认值
type ScenarioEvent struct {
	Type           string   `yaml:"type"`
	Name           string   `yaml:"name"`
	Start          string   `yaml:"start"`
	End            string   `yaml:"end"`
	CapacityImpact *float64 `yaml:"capacity_impact,omitempty"`
}

// ScenarioCommit 每周固定投入
type ScenarioCommit struct {
	Type         string  `yaml:"type"`
	Name         string  `yaml:"name"`
	HoursPerWeek float64 `yaml:"hours_per_week"`
}

// ScenarioEnergy 每日自评
type ScenarioEnergy struct {
	Date   string `yaml:"date"`
	Energy int    `yaml:"energy"`
	Mood   int    `yaml:"mood"`
	Stress int    `yaml:"stress"`
}

// ScenarioSavings 储蓄贡献来源
type ScenarioSavings struct {
	MonthlyMargin  *float64 `yaml:"monthly_margin,omitempty"`
	ProjectedBasis *float64 `yaml:"projected_basis,omitempty"`
	ActualTotal    *float64 `yaml:"actual_total,omitempty"`
}

// LoadScenario 读取并校验 YAML 场景文件
func LoadScenario(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开场景文件失败: %w", err)
	}
	defer f.Close()
	return ParseScenario(f)
}

// ParseScenario 解析 YAML 场景
func ParseScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, fmt.Errorf("解析场景失败: %w", err)
	}
	if sc.OwnerID == "" {
		sc.OwnerID = "00000000-0000-0000-0000-000000000001"
	}
	if sc.Goal.ID == "" {
		sc.Goal.ID = "00000000-0000-0000-0000-0000000000a1"
	}
	if sc.Goal.Amount <= 0 {
		return nil, fmt.Errorf("goal.amount 必须大于 0")
	}
	if _, err := caldate.Parse(sc.Goal.Deadline); err != nil {
		return nil, fmt.Errorf("goal.deadline: %w", err)
	}
	for i, e := range sc.Events {
		if !model.IsValidEventType(e.Type) {
			return nil, fmt.Errorf("events[%d]: 未知事件类型 %q", i, e.Type)
		}
		if _, err := caldate.Parse(e.Start); err != nil {
			return nil, fmt.Errorf("events[%d].start: %w", i, err)
		}
	}
	return &sc, nil
}

// Models 转换为可写入存储的实体
func (sc *Scenario) Models() ([]model.AcademicEvent, []model.Commitment, []model.EnergyLog) {
	events := make([]model.AcademicEvent, 0, len(sc.Events))
	for _, e := range sc.Events {
		impact := model.DefaultCapacityImpact(e.Type)
		if e.CapacityImpact != nil {
			impact = *e.CapacityImpact
		}
		start := caldate.MustParse(e.Start)
		end := start
		if e.End != "" {
			if d, err := caldate.Parse(e.End); err == nil {
				end = d
			}
		}
		events = append(events, model.AcademicEvent{
			OwnerID: sc.OwnerID, Type: e.Type, Name: e.Name,
			StartDate: start, EndDate: end,
			CapacityImpact: impact, Priority: model.EventPriorityNormal, Source: "manual",
		})
	}

	commitments := make([]model.Commitment, 0, len(sc.Commitments))
	for _, c := range sc.Commitments {
		commitments = append(commitments, model.Commitment{
			OwnerID: sc.OwnerID, Type: c.Type, Name: c.Name, HoursPerWeek: c.HoursPerWeek, Priority: "important",
		})
	}

	logs := make([]model.EnergyLog, 0, len(sc.EnergyLogs))
	for _, l := range sc.EnergyLogs {
		d, err := caldate.Parse(l.Date)
		if err != nil {
			continue
		}
		logs = append(logs, model.EnergyLog{
			OwnerID: sc.OwnerID, LogDate: d, EnergyLevel: l.Energy, MoodScore: l.Mood, StressLevel: l.Stress,
		})
	}
	return events, commitments, logs
}

// Request 转换为生成请求
func (sc *Scenario) Request() *dto.GenerateRetroplanRequest {
	amount := sc.Goal.Amount
	req := &dto.GenerateRetroplanRequest{
		GoalID:                sc.Goal.ID,
		GoalAmount:            &amount,
		Deadline:              sc.Goal.Deadline,
		HourlyRate:            sc.Goal.HourlyRate,
		SimulatedDate:         sc.Today,
		GoalStartDate:         sc.Goal.StartDate,
		TotalEarned:           sc.Goal.TotalEarned,
		AvailableHoursPerWeek: sc.AvailableHoursPerWeek,
	}
	if sc.Savings != nil {
		req.MonthlyMargin = sc.Savings.MonthlyMargin
		req.ProjectedSavingsBasis = sc.Savings.ProjectedBasis
		req.ActualTotalSavings = sc.Savings.ActualTotal
	}
	return req
}
