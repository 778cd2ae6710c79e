package service

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"stride/backend/internal/model"
	"stride/backend/pkg/caldate"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将学校日历（iCalendar, RFC 5545）中的考试、假期、实习等区间事件转为 AcademicEvent。
//
//   - 类型由 SUMMARY 关键字推断，无法识别的事件跳过（普通课程不影响产能）
//   - 全天事件的 DTEND 为排他边界，结束日取 DTEND 前一天
//   - 无 DTEND 时视为单日事件
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
	icsSource       = "ics"
)

// icsKeywordRule SUMMARY 关键字 → 事件类型；按顺序匹配，先命中者生效
type icsKeywordRule struct {
	keywords  []string
	eventType string
	priority  string
}

var icsKeywordRules = []icsKeywordRule{
	{[]string{"exam", "examen", "partiel", "midterm", "考试"}, model.EventTypeExamPeriod, model.EventPriorityCritical},
	{[]string{"rattrapage", "resit"}, model.EventTypeExamPeriod, model.EventPriorityCritical},
	{[]string{"stage", "internship", "alternance", "实习"}, model.EventTypeInternship, model.EventPriorityHigh},
	{[]string{"projet", "project", "deadline", "rendu", "soutenance"}, model.EventTypeProjectDeadline, model.EventPriorityHigh},
	{[]string{"intensive", "intensif", "bootcamp"}, model.EventTypeClassIntensive, model.EventPriorityNormal},
	{[]string{"vacances", "vacation", "holiday", "break", "congé", "假期"}, model.EventTypeVacation, model.EventPriorityNormal},
}

// FetchICSContent 从 URL 获取 ICS 内容
func FetchICSContent(rawURL string) (io.ReadCloser, error) {
	// webcal:// → https://
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Get(u)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// ParseAcademicICS 解析 ICS 内容，返回可识别的学业事件以及被跳过的事件数
func ParseAcademicICS(reader io.Reader, ownerID string) ([]model.AcademicEvent, int, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	events := []model.AcademicEvent{}
	skipped := 0
	for _, comp := range cal.Events() {
		evt, ok := parseAcademicVEvent(comp, ownerID)
		if !ok {
			skipped++
			continue
		}
		events = append(events, evt)
	}
	return events, skipped, nil
}

// parseAcademicVEvent 解析单个 VEVENT
func parseAcademicVEvent(evt *ics.VEvent, ownerID string) (model.AcademicEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return model.AcademicEvent{}, false
	}
	name := strings.TrimSpace(summary.Value)

	rule, ok := classifyICSSummary(name)
	if !ok {
		return model.AcademicEvent{}, false
	}

	start, _, err := parseICSDate(evt, ics.ComponentPropertyDtStart)
	if err != nil {
		return model.AcademicEvent{}, false
	}
	end := start
	if dtEnd, allDay, err := parseICSDate(evt, ics.ComponentPropertyDtEnd); err == nil {
		end = dtEnd
		if allDay && end.After(start) {
			end = end.AddDays(-1)
		}
	}
	if end.Before(start) {
		end = start
	}

	if r := []rune(name); len(r) > 200 {
		name = string(r[:200])
	}
	return model.AcademicEvent{
		OwnerID:        ownerID,
		Type:           rule.eventType,
		Name:           name,
		StartDate:      start,
		EndDate:        end,
		CapacityImpact: model.DefaultCapacityImpact(rule.eventType),
		Priority:       rule.priority,
		Source:         icsSource,
	}, true
}

// classifyICSSummary 按关键字推断事件类型
func classifyICSSummary(summary string) (icsKeywordRule, bool) {
	lower := strings.ToLower(summary)
	for _, rule := range icsKeywordRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule, true
			}
		}
	}
	return icsKeywordRule{}, false
}

// parseICSDate 取日期属性的日历日；第二个返回值表示是否为全天（纯日期）值
func parseICSDate(evt *ics.VEvent, propName ics.ComponentProperty) (caldate.Date, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return caldate.Date{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := strings.TrimSpace(prop.Value)

	if t, err := time.Parse("20060102", val); err == nil {
		return caldate.FromTime(t), true, nil
	}

	// 检查 TZID 参数
	loc := time.UTC
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			if tzLoc, err := time.LoadLocation(v[0]); err == nil {
				loc = tzLoc
			}
		}
	}

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return caldate.FromTime(t), false, nil
	}
	if t, err := time.ParseInLocation("20060102T150405", val, loc); err == nil {
		return caldate.FromTime(t), false, nil
	}
	return caldate.Date{}, false, fmt.Errorf("无法解析日期: %s", val)
}
