package dto

// ── 学业事件 DTO ──

// ListAcademicEventsQuery 日期区间查询（均可省略）
type ListAcademicEventsQuery struct {
	From string `form:"from" binding:"omitempty,caldate"`
	To   string `form:"to"   binding:"omitempty,caldate"`
}

// AcademicEventResponse 学业事件响应
type AcademicEventResponse struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Name           string  `json:"name"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	CapacityImpact float64 `json:"capacity_impact"`
	Priority       string  `json:"priority"`
	Source         string  `json:"source"`
}

// ImportICSRequest ICS 导入请求（URL 方式）
type ImportICSRequest struct {
	URL string `json:"url" binding:"required,url"`
}

// ImportICSResponse ICS 导入响应
type ImportICSResponse struct {
	ImportedCount int                     `json:"imported_count"`
	SkippedCount  int                     `json:"skipped_count"`
	Events        []AcademicEventResponse `json:"events"`
}
