package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"stride/backend/internal/dto"
	"stride/backend/internal/service"
	apperrors "stride/backend/pkg/errors"
	"stride/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
	RegisterValidators()
}

const testOwnerID = "owner-001"

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock RetroplanService ──

type mockRetroplanService struct {
	plan        *dto.Retroplan
	err         error
	capacity    *dto.WeekCapacity
	predictions *dto.PredictionsResponse
	panicOnGet  bool

	lastOwnerID       string
	lastGoalID        string
	lastSimulatedDate string
	lastGenerate      *dto.GenerateRetroplanRequest
	lastCapacityQuery *dto.WeekCapacityQuery
	lastPredictQuery  *dto.PredictionsQuery
}

func (m *mockRetroplanService) Generate(_ context.Context, req *dto.GenerateRetroplanRequest, ownerID string) (*dto.Retroplan, error) {
	m.lastGenerate, m.lastOwnerID = req, ownerID
	return m.plan, m.err
}
func (m *mockRetroplanService) Regenerate(_ context.Context, goalID, ownerID, simulatedDate string) (*dto.Retroplan, error) {
	m.lastGoalID, m.lastOwnerID, m.lastSimulatedDate = goalID, ownerID, simulatedDate
	return m.plan, m.err
}
func (m *mockRetroplanService) Get(_ context.Context, goalID, ownerID string) (*dto.Retroplan, error) {
	if m.panicOnGet {
		panic("boom")
	}
	m.lastGoalID, m.lastOwnerID = goalID, ownerID
	return m.plan, m.err
}
func (m *mockRetroplanService) Invalidate(_ context.Context, goalID, ownerID string) error {
	m.lastGoalID, m.lastOwnerID = goalID, ownerID
	return m.err
}
func (m *mockRetroplanService) GetWeekCapacity(_ context.Context, ownerID string, q *dto.WeekCapacityQuery) (*dto.WeekCapacity, error) {
	m.lastOwnerID, m.lastCapacityQuery = ownerID, q
	return m.capacity, m.err
}
func (m *mockRetroplanService) GetPredictions(_ context.Context, goalID, ownerID string, q *dto.PredictionsQuery) (*dto.PredictionsResponse, error) {
	m.lastGoalID, m.lastOwnerID, m.lastPredictQuery = goalID, ownerID, q
	return m.predictions, m.err
}

// ── Mock EnergyLogService ──

type mockEnergyLogService struct {
	log       *dto.EnergyLogResponse
	logs      []dto.EnergyLogResponse
	err       error
	lastLimit int
}

func (m *mockEnergyLogService) Upsert(_ context.Context, _ *dto.UpsertEnergyLogRequest, _ string) (*dto.EnergyLogResponse, error) {
	return m.log, m.err
}
func (m *mockEnergyLogService) ListRecent(_ context.Context, _ string, limit int) ([]dto.EnergyLogResponse, error) {
	m.lastLimit = limit
	return m.logs, m.err
}

// ── Mock AcademicEventService ──

type mockAcademicEventService struct {
	events     []dto.AcademicEventResponse
	importResp *dto.ImportICSResponse
	err        error
	lastBody   string
	lastURL    string
}

func (m *mockAcademicEventService) List(_ context.Context, _ string, _ *dto.ListAcademicEventsQuery) ([]dto.AcademicEventResponse, error) {
	return m.events, m.err
}
func (m *mockAcademicEventService) ImportICS(_ context.Context, r io.Reader, _ string) (*dto.ImportICSResponse, error) {
	b, _ := io.ReadAll(r)
	m.lastBody = string(b)
	return m.importResp, m.err
}
func (m *mockAcademicEventService) ImportICSFromURL(_ context.Context, url string, _ string) (*dto.ImportICSResponse, error) {
	m.lastURL = url
	return m.importResp, m.err
}

// ── Mock CommitmentService ──

type mockCommitmentService struct {
	resp *dto.CommitmentListResponse
	err  error
}

func (m *mockCommitmentService) List(_ context.Context, _ string) (*dto.CommitmentListResponse, error) {
	return m.resp, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportRetroplan(_ context.Context, _, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

// withOwner 模拟 JWT 中间件注入 owner_id
func withOwner(c *gin.Context) {
	c.Set(ContextKeyOwnerID, testOwnerID)
	c.Next()
}

func newEngine(auth bool) *gin.Engine {
	r := gin.New()
	if auth {
		r.Use(withOwner)
	}
	return r
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func doJSON(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func parseEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("响应不是合法 JSON: %v (%s)", err, w.Body.String())
	}
	return env
}

func validGenerateBody() map[string]interface{} {
	return map[string]interface{}{
		"goal_id":        "goal-001",
		"goal_amount":    1000,
		"deadline":       "2025-03-31",
		"hourly_rate":    15,
		"simulated_date": "2025-03-03",
	}
}

// ═══════════════════════════════════════════════════════════
// RetroplanHandler Tests
// ═══════════════════════════════════════════════════════════

func TestRetroplanHandler_Generate_Success(t *testing.T) {
	mock := &mockRetroplanService{plan: &dto.Retroplan{ID: "plan-1", GoalID: "goal-001", FeasibilityScore: 0.64}}
	h := NewRetroplanHandler(mock, zap.NewNop())

	r := newEngine(true)
	r.POST("/retroplans", h.GenerateRetroplan)
	w := doJSON(r, http.MethodPost, "/retroplans", jsonBody(validGenerateBody()))

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	env := parseEnvelope(t, w)
	if !env.Success || env.Code != 0 {
		t.Errorf("期望成功响应，实际 %+v", env)
	}
	var plan dto.Retroplan
	if err := json.Unmarshal(env.Data, &plan); err != nil {
		t.Fatalf("data 解析失败: %v", err)
	}
	if plan.FeasibilityScore != 0.64 {
		t.Errorf("期望可行性 0.64，实际 %v", plan.FeasibilityScore)
	}
	if mock.lastOwnerID != testOwnerID {
		t.Errorf("owner 应来自认证上下文，实际 %q", mock.lastOwnerID)
	}
	if mock.lastGenerate == nil || *mock.lastGenerate.GoalAmount != 1000 || mock.lastGenerate.Deadline != "2025-03-31" {
		t.Errorf("请求体未正确传入服务层: %+v", mock.lastGenerate)
	}
}

func TestRetroplanHandler_Generate_BindingErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"缺少 goal_id", func(b map[string]interface{}) { delete(b, "goal_id") }},
		{"金额为 0", func(b map[string]interface{}) { b["goal_amount"] = 0 }},
		{"金额为负", func(b map[string]interface{}) { b["goal_amount"] = -5 }},
		{"截止日期格式错误", func(b map[string]interface{}) { b["deadline"] = "31/03/2025" }},
		{"截止日期月份非法", func(b map[string]interface{}) { b["deadline"] = "2025-13-01" }},
		{"模拟日期带时刻", func(b map[string]interface{}) { b["simulated_date"] = "2025-03-03T10:00:00Z" }},
		{"可用时长超过一周", func(b map[string]interface{}) { b["available_hours_per_week"] = 200 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockRetroplanService{}
			h := NewRetroplanHandler(mock, zap.NewNop())
			r := newEngine(true)
			r.POST("/retroplans", h.GenerateRetroplan)

			body := validGenerateBody()
			tt.mutate(body)
			w := doJSON(r, http.MethodPost, "/retroplans", jsonBody(body))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("期望 400，实际 %d", w.Code)
			}
			env := parseEnvelope(t, w)
			if env.Code != 10001 || env.Details == "" {
				t.Errorf("期望 10001 且附带字段明细，实际 %+v", env)
			}
			if mock.lastGenerate != nil {
				t.Error("校验失败时不应调用服务层")
			}
		})
	}
}

func TestRetroplanHandler_Generate_Unauthenticated(t *testing.T) {
	h := NewRetroplanHandler(&mockRetroplanService{}, zap.NewNop())
	r := newEngine(false)
	r.POST("/retroplans", h.GenerateRetroplan)

	w := doJSON(r, http.MethodPost, "/retroplans", jsonBody(validGenerateBody()))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestRetroplanHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantHTTP int
		wantCode int
	}{
		{"参数无效", fmt.Errorf("%w: %w", service.ErrRetroplanInvalidInput, apperrors.NewValidation("deadline", "截止日期必须晚于开始日期")), http.StatusBadRequest, 10001},
		{"计划不存在", service.ErrRetroplanNotFound, http.StatusNotFound, 20002},
		{"目标不存在", service.ErrGoalNotFound, http.StatusNotFound, 20003},
		{"生成失败", service.ErrRetroplanGenerateFailed, http.StatusInternalServerError, 50000},
		{"内部错误", service.ErrRetroplanInternal, http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRetroplanHandler(&mockRetroplanService{err: tt.err}, zap.NewNop())
			r := newEngine(true)
			r.GET("/retroplans/:goal_id", h.GetRetroplan)

			w := doJSON(r, http.MethodGet, "/retroplans/goal-001", nil)
			if w.Code != tt.wantHTTP {
				t.Fatalf("期望 HTTP %d，实际 %d", tt.wantHTTP, w.Code)
			}
			env := parseEnvelope(t, w)
			if env.Code != tt.wantCode || env.Success {
				t.Errorf("期望 code %d，实际 %+v", tt.wantCode, env)
			}
		})
	}
}

func TestRetroplanHandler_InvalidInputDetails(t *testing.T) {
	err := fmt.Errorf("%w: %w", service.ErrRetroplanInvalidInput, apperrors.NewValidation("deadline", "截止日期必须晚于开始日期"))
	h := NewRetroplanHandler(&mockRetroplanService{err: err}, zap.NewNop())
	r := newEngine(true)
	r.POST("/retroplans", h.GenerateRetroplan)

	w := doJSON(r, http.MethodPost, "/retroplans", jsonBody(validGenerateBody()))
	env := parseEnvelope(t, w)
	if env.Details != "deadline: 截止日期必须晚于开始日期" {
		t.Errorf("details 应为字段明细，实际 %q", env.Details)
	}
}

func TestRetroplanHandler_RegenerateAndInvalidate(t *testing.T) {
	mock := &mockRetroplanService{plan: &dto.Retroplan{GoalID: "goal-009"}}
	h := NewRetroplanHandler(mock, zap.NewNop())
	r := newEngine(true)
	r.POST("/retroplans/:goal_id/regenerate", h.RegenerateRetroplan)
	r.DELETE("/retroplans/:goal_id", h.InvalidateRetroplan)

	w := doJSON(r, http.MethodPost, "/retroplans/goal-009/regenerate?simulated_date=2025-04-01", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("regenerate 期望 200，实际 %d", w.Code)
	}
	if mock.lastGoalID != "goal-009" || mock.lastSimulatedDate != "2025-04-01" {
		t.Errorf("参数未正确传递: goal=%q simulated=%q", mock.lastGoalID, mock.lastSimulatedDate)
	}

	w = doJSON(r, http.MethodDelete, "/retroplans/goal-009", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("invalidate 期望 200，实际 %d", w.Code)
	}
}

func TestRetroplanHandler_PredictionsQuery(t *testing.T) {
	mock := &mockRetroplanService{predictions: &dto.PredictionsResponse{GoalID: "goal-001", CurrentWeek: 2, LookaheadWeeks: 6, Alerts: []dto.Alert{}}}
	h := NewRetroplanHandler(mock, zap.NewNop())
	r := newEngine(true)
	r.GET("/retroplans/:goal_id/predictions", h.GetPredictions)

	w := doJSON(r, http.MethodGet, "/retroplans/goal-001/predictions?lookahead=6&simulated_date=2025-03-10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if mock.lastPredictQuery == nil || mock.lastPredictQuery.LookaheadWeeks != 6 || mock.lastPredictQuery.SimulatedDate != "2025-03-10" {
		t.Errorf("查询参数未正确绑定: %+v", mock.lastPredictQuery)
	}

	w = doJSON(r, http.MethodGet, "/retroplans/goal-001/predictions?lookahead=0", nil)
	if w.Code != http.StatusOK {
		t.Errorf("lookahead=0 视为缺省，期望 200，实际 %d", w.Code)
	}
	w = doJSON(r, http.MethodGet, "/retroplans/goal-001/predictions?lookahead=-1", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("负数 lookahead 期望 400，实际 %d", w.Code)
	}
}

func TestRetroplanHandler_WeekCapacity(t *testing.T) {
	mock := &mockRetroplanService{capacity: &dto.WeekCapacity{WeekNumber: 11, CapacityScore: 100, Category: dto.CategoryHigh}}
	h := NewRetroplanHandler(mock, zap.NewNop())
	r := newEngine(true)
	r.GET("/capacity/week", h.GetWeekCapacity)

	w := doJSON(r, http.MethodGet, "/capacity/week?date=2025-03-12&hourly_rate=20", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	q := mock.lastCapacityQuery
	if q == nil || q.Date != "2025-03-12" || q.HourlyRate == nil || *q.HourlyRate != 20 {
		t.Errorf("查询参数未正确绑定: %+v", q)
	}

	w = doJSON(r, http.MethodGet, "/capacity/week?date=12-03-2025", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法日期期望 400，实际 %d", w.Code)
	}
}

// ── 动作入口 ──

func TestRetroplanHandler_Action_Get(t *testing.T) {
	mock := &mockRetroplanService{plan: &dto.Retroplan{GoalID: "goal-001"}}
	h := NewRetroplanHandler(mock, zap.NewNop())
	r := newEngine(true)
	r.POST("/retroplan/actions", h.HandleAction)

	w := doJSON(r, http.MethodPost, "/retroplan/actions", strings.NewReader(`{"action":"get","payload":{"goal_id":"goal-001"}}`))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	env := parseEnvelope(t, w)
	var data struct {
		Action string        `json:"action"`
		Result dto.Retroplan `json:"result"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("data 解析失败: %v", err)
	}
	if data.Action != "get" || data.Result.GoalID != "goal-001" {
		t.Errorf("动作结果不正确: %+v", data)
	}
	if mock.lastOwnerID != testOwnerID {
		t.Errorf("命令应携带认证上下文中的 owner，实际 %q", mock.lastOwnerID)
	}
}

func TestRetroplanHandler_Action_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantHTTP int
		wantCode int
	}{
		{"未知动作", `{"action":"delete_everything","payload":{}}`, http.StatusBadRequest, 20004},
		{"缺少 goal_id", `{"action":"get","payload":{}}`, http.StatusBadRequest, 10001},
		{"未知负载字段", `{"action":"get","payload":{"goal_id":"g","extra":1}}`, http.StatusBadRequest, 10001},
		{"缺少 action", `{"payload":{}}`, http.StatusBadRequest, 10001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRetroplanHandler(&mockRetroplanService{}, zap.NewNop())
			r := newEngine(true)
			r.POST("/retroplan/actions", h.HandleAction)

			w := doJSON(r, http.MethodPost, "/retroplan/actions", strings.NewReader(tt.body))
			if w.Code != tt.wantHTTP {
				t.Fatalf("期望 HTTP %d，实际 %d: %s", tt.wantHTTP, w.Code, w.Body.String())
			}
			if env := parseEnvelope(t, w); env.Code != tt.wantCode {
				t.Errorf("期望 code %d，实际 %d", tt.wantCode, env.Code)
			}
		})
	}
}

func TestRetroplanHandler_Action_PanicRecovered(t *testing.T) {
	h := NewRetroplanHandler(&mockRetroplanService{panicOnGet: true}, zap.NewNop())
	r := newEngine(true)
	r.POST("/retroplan/actions", h.HandleAction)

	w := doJSON(r, http.MethodPost, "/retroplan/actions", strings.NewReader(`{"action":"get","payload":{"goal_id":"goal-001"}}`))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("panic 应转换为 500，实际 %d", w.Code)
	}
	if env := parseEnvelope(t, w); env.Code != 50000 {
		t.Errorf("期望 50000，实际 %d", env.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EnergyLogHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEnergyLogHandler_Upsert(t *testing.T) {
	mock := &mockEnergyLogService{log: &dto.EnergyLogResponse{ID: "log-1", Date: "2025-03-03", EnergyLevel: 4}}
	h := NewEnergyLogHandler(mock)
	r := newEngine(true)
	r.POST("/energy-logs", h.UpsertEnergyLog)

	w := doJSON(r, http.MethodPost, "/energy-logs", jsonBody(map[string]interface{}{
		"date": "2025-03-03", "energy_level": 4, "mood_score": 3, "stress_level": 2, "hours_slept": 7.5,
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/energy-logs", jsonBody(map[string]interface{}{
		"date": "2025-03-03", "energy_level": 6, "mood_score": 3, "stress_level": 2,
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("energy_level=6 期望 400，实际 %d", w.Code)
	}

	mock.err = service.ErrEnergyLogInvalid
	w = doJSON(r, http.MethodPost, "/energy-logs", jsonBody(map[string]interface{}{
		"date": "2025-03-03", "energy_level": 4, "mood_score": 3, "stress_level": 2,
	}))
	if env := parseEnvelope(t, w); w.Code != http.StatusBadRequest || env.Code != 21001 {
		t.Errorf("期望 400/21001，实际 %d/%d", w.Code, env.Code)
	}
}

func TestEnergyLogHandler_List(t *testing.T) {
	mock := &mockEnergyLogService{logs: []dto.EnergyLogResponse{{ID: "a"}, {ID: "b"}}}
	h := NewEnergyLogHandler(mock)
	r := newEngine(true)
	r.GET("/energy-logs", h.ListEnergyLogs)

	w := doJSON(r, http.MethodGet, "/energy-logs?limit=7", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.lastLimit != 7 {
		t.Errorf("limit 应为 7，实际 %d", mock.lastLimit)
	}

	w = doJSON(r, http.MethodGet, "/energy-logs?limit=500", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("limit 超限期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// AcademicEventHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAcademicEventHandler_List(t *testing.T) {
	h := NewAcademicEventHandler(&mockAcademicEventService{events: []dto.AcademicEventResponse{}})
	r := newEngine(true)
	r.GET("/academic-events", h.ListAcademicEvents)

	w := doJSON(r, http.MethodGet, "/academic-events?from=2025-01-01&to=2025-01-31", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("空结果也应返回 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"list":[]`) {
		t.Errorf("空列表应序列化为 []，实际 %s", w.Body.String())
	}

	h = NewAcademicEventHandler(&mockAcademicEventService{err: service.ErrAcademicEventRangeInvalid})
	r = newEngine(true)
	r.GET("/academic-events", h.ListAcademicEvents)
	w = doJSON(r, http.MethodGet, "/academic-events?from=2025-02-01&to=2025-01-01", nil)
	if env := parseEnvelope(t, w); w.Code != http.StatusBadRequest || env.Code != 22001 {
		t.Errorf("期望 400/22001，实际 %d/%d", w.Code, env.Code)
	}
}

func TestAcademicEventHandler_ImportFile(t *testing.T) {
	mock := &mockAcademicEventService{importResp: &dto.ImportICSResponse{ImportedCount: 1}}
	h := NewAcademicEventHandler(mock)
	r := newEngine(true)
	r.POST("/academic-events/import", h.ImportICS)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("file", "calendar.ics")
	fw.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/academic-events/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(mock.lastBody, "BEGIN:VCALENDAR") {
		t.Errorf("文件内容未传入服务层: %q", mock.lastBody)
	}
}

func TestAcademicEventHandler_ImportErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		body     string
		wantHTTP int
		wantCode int
	}{
		{"缺少文件与 URL", nil, `{}`, http.StatusBadRequest, 22000},
		{"功能关闭", service.ErrICSImportDisabled, `{"url":"https://example.com/a.ics"}`, http.StatusForbidden, 22004},
		{"链接获取失败", service.ErrICSFetchFailed, `{"url":"https://example.com/a.ics"}`, http.StatusBadGateway, 22005},
		{"无可识别事件", service.ErrICSEmpty, `{"url":"https://example.com/a.ics"}`, http.StatusBadRequest, 22003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAcademicEventHandler(&mockAcademicEventService{err: tt.err})
			r := newEngine(true)
			r.POST("/academic-events/import", h.ImportICS)

			w := doJSON(r, http.MethodPost, "/academic-events/import", strings.NewReader(tt.body))
			if w.Code != tt.wantHTTP {
				t.Fatalf("期望 HTTP %d，实际 %d", tt.wantHTTP, w.Code)
			}
			if env := parseEnvelope(t, w); env.Code != tt.wantCode {
				t.Errorf("期望 code %d，实际 %d", tt.wantCode, env.Code)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// CommitmentHandler / ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestCommitmentHandler_List(t *testing.T) {
	h := NewCommitmentHandler(&mockCommitmentService{resp: &dto.CommitmentListResponse{
		List:       []dto.CommitmentResponse{{ID: "c1", HoursPerWeek: 20}},
		TotalHours: 20,
	}})
	r := newEngine(true)
	r.GET("/commitments", h.ListCommitments)

	w := doJSON(r, http.MethodGet, "/commitments", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	var data dto.CommitmentListResponse
	json.Unmarshal(parseEnvelope(t, w).Data, &data)
	if data.TotalHours != 20 || len(data.List) != 1 {
		t.Errorf("响应内容不正确: %+v", data)
	}
}

func TestExportHandler_ExportRetroplan(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "retroplan_2025-03-31_abcdef12.xlsx"}
	h := NewExportHandler(mock)
	r := newEngine(true)
	r.GET("/retroplans/:goal_id/export", h.ExportRetroplan)

	w := doJSON(r, http.MethodGet, "/retroplans/goal-001/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 不正确: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "retroplan_2025-03-31_abcdef12.xlsx") {
		t.Errorf("Content-Disposition 不正确: %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("文件内容不正确: %q", w.Body.String())
	}
}

func TestExportHandler_Errors(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrRetroplanNotFound})
	r := newEngine(true)
	r.GET("/retroplans/:goal_id/export", h.ExportRetroplan)

	w := doJSON(r, http.MethodGet, "/retroplans/goal-001/export", nil)
	if env := parseEnvelope(t, w); w.Code != http.StatusNotFound || env.Code != 20002 {
		t.Errorf("期望 404/20002，实际 %d/%d", w.Code, env.Code)
	}

	h = NewExportHandler(&mockExportService{err: service.ErrExportGenerateFail})
	r = newEngine(true)
	r.GET("/retroplans/:goal_id/export", h.ExportRetroplan)
	w = doJSON(r, http.MethodGet, "/retroplans/goal-001/export", nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("期望 500，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// Helper Tests
// ═══════════════════════════════════════════════════════════

func TestMustGetOwnerID(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	if _, ok := MustGetOwnerID(c); ok {
		t.Error("未注入 owner_id 时应返回 false")
	}
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Code != 10002 {
		t.Errorf("期望 10002，实际 %d", resp.Code)
	}

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Set(ContextKeyOwnerID, "owner-xyz")
	if id, ok := MustGetOwnerID(c); !ok || id != "owner-xyz" {
		t.Errorf("期望 owner-xyz，实际 %q %v", id, ok)
	}
}
