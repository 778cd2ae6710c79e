package dto

import "encoding/json"

// ActionRequest 文本动作入口：{"action": "...", "payload": {...}}
// 仅在 HTTP 边界出现，进入服务层前即被解码为强类型命令
type ActionRequest struct {
	Action  string          `json:"action"  binding:"required"`
	Payload json.RawMessage `json:"payload"`
}

// GoalRef 只携带目标 ID 的动作负载
type GoalRef struct {
	GoalID        string `json:"goal_id"`
	SimulatedDate string `json:"simulated_date,omitempty"`
}

// WeekCapacityPayload week_capacity 动作负载
type WeekCapacityPayload struct {
	Date       string   `json:"date"`
	HourlyRate *float64 `json:"hourly_rate,omitempty"`
}

// PredictionsPayload predictions 动作负载
type PredictionsPayload struct {
	GoalID         string `json:"goal_id"`
	LookaheadWeeks int    `json:"lookahead_weeks"`
	SimulatedDate  string `json:"simulated_date,omitempty"`
}
