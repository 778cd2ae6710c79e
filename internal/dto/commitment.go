package dto

// CommitmentResponse 每周固定投入响应
type CommitmentResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Name         string  `json:"name"`
	HoursPerWeek float64 `json:"hours_per_week"`
	Flexible     bool    `json:"flexible"`
	Priority     string  `json:"priority"`
}

// CommitmentListResponse 固定投入列表及每周总时长
type CommitmentListResponse struct {
	List       []CommitmentResponse `json:"list"`
	TotalHours float64              `json:"total_hours"`
}
