package dto

// ── 状态自评 DTO ──

// UpsertEnergyLogRequest 写入（或覆盖）某日状态自评
type UpsertEnergyLogRequest struct {
	Date        string   `json:"date"         binding:"required,caldate"`
	EnergyLevel int      `json:"energy_level" binding:"required,min=1,max=5"`
	MoodScore   int      `json:"mood_score"   binding:"required,min=1,max=5"`
	StressLevel int      `json:"stress_level" binding:"required,min=1,max=5"`
	HoursSlept  *float64 `json:"hours_slept"  binding:"omitempty,gte=0,lte=24"`
	Notes       *string  `json:"notes"        binding:"omitempty,max=2000"`
}

// ListEnergyLogsQuery 最近记录查询
type ListEnergyLogsQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=90"`
}

// EnergyLogResponse 状态自评响应
type EnergyLogResponse struct {
	ID          string   `json:"id"`
	Date        string   `json:"date"`
	EnergyLevel int      `json:"energy_level"`
	MoodScore   int      `json:"mood_score"`
	StressLevel int      `json:"stress_level"`
	HoursSlept  *float64 `json:"hours_slept,omitempty"`
	Notes       *string  `json:"notes,omitempty"`
	UpdatedAt   string   `json:"updated_at"`
}
