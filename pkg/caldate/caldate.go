package caldate

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Layout 日历日的唯一字符串表示
const Layout = "2006-01-02"

// epochMillisThreshold 数值时间戳绝对值超过该值时按毫秒解释，否则按秒解释
const epochMillisThreshold = 1e11

var (
	ErrEmpty       = errors.New("日期为空")
	ErrUnsupported = errors.New("不支持的日期表示")
)

// scanLogger Scan 没有调用方上下文，告警写入包级日志器
var scanLogger atomic.Pointer[zap.Logger]

// SetLogger 设置 Scan 遇到异常日期形态时使用的日志器，nil 表示不记录
func SetLogger(logger *zap.Logger) {
	scanLogger.Store(logger)
}

// Date 日历日（无时刻、无时区），内部固定为 UTC 零点。
// 所有区间比较都基于 YYYY-MM-DD，避免时区导致的跨日偏移。
type Date struct {
	t time.Time
}

// New 由年月日构造日期
func New(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime 取 t 在其自身时区下的年月日
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return New(y, m, d)
}

// Today 当前时刻所在的日历日
func Today(now time.Time) Date { return FromTime(now) }

// Parse 解析字符串日期。
// 支持 YYYY-MM-DD 以及带时刻的 ISO 形式（只取日期前缀，不做时区换算）。
func Parse(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrEmpty
	}
	if len(s) >= len(Layout) {
		if t, err := time.Parse(Layout, s[:len(Layout)]); err == nil {
			return FromTime(t), nil
		}
	}
	return Date{}, fmt.Errorf("%w: %q", ErrUnsupported, s)
}

// MustParse 仅用于测试与常量初始化
func MustParse(s string) Date {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseStoredDate 存储层日期归一化入口。
// 存储层可能返回 time.Time、ISO 字符串（含或不含时刻）、[]byte，或秒/毫秒级数值时间戳。
func ParseStoredDate(raw interface{}) (Date, error) {
	switch v := raw.(type) {
	case nil:
		return Date{}, ErrEmpty
	case Date:
		return v, nil
	case *Date:
		if v == nil {
			return Date{}, ErrEmpty
		}
		return *v, nil
	case time.Time:
		if v.IsZero() {
			return Date{}, ErrEmpty
		}
		return FromTime(v), nil
	case *time.Time:
		if v == nil || v.IsZero() {
			return Date{}, ErrEmpty
		}
		return FromTime(*v), nil
	case string:
		return parseStoredString(v)
	case []byte:
		return parseStoredString(string(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrUnsupported, v.String())
		}
		return fromEpoch(f), nil
	case int:
		return fromEpoch(float64(v)), nil
	case int32:
		return fromEpoch(float64(v)), nil
	case int64:
		return fromEpoch(float64(v)), nil
	case uint32:
		return fromEpoch(float64(v)), nil
	case uint64:
		return fromEpoch(float64(v)), nil
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	default:
		return Date{}, fmt.Errorf("%w: %T", ErrUnsupported, raw)
	}
}

// ParseLenient 与 ParseStoredDate 相同，但遇到无法识别的形态时记录告警并退化为字符串解析，不返回错误。
// 退化解析仍失败时返回零值日期。
func ParseLenient(raw interface{}, logger *zap.Logger) Date {
	d, err := ParseStoredDate(raw)
	if err == nil {
		return d
	}
	if logger != nil {
		logger.Warn("无法识别的存储日期格式，按字符串强制转换",
			zap.String("type", fmt.Sprintf("%T", raw)),
			zap.Error(err),
		)
	}
	d, err = parseStoredString(fmt.Sprint(raw))
	if err != nil {
		return Date{}
	}
	return d
}

// parseStoredString 存储层字符串：ISO 日期，或以数字字符串保存的秒/毫秒时间戳
func parseStoredString(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if !isEpochDigits(s) {
		return Parse(s)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrUnsupported, s)
	}
	return fromEpoch(float64(n)), nil
}

// isEpochDigits 可带负号的纯数字串
func isEpochDigits(s string) bool {
	digits := strings.TrimPrefix(s, "-")
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func fromFloat(v float64) (Date, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Date{}, fmt.Errorf("%w: %v", ErrUnsupported, v)
	}
	return fromEpoch(v), nil
}

func fromEpoch(v float64) Date {
	var t time.Time
	if math.Abs(v) >= epochMillisThreshold {
		t = time.UnixMilli(int64(v))
	} else {
		t = time.Unix(int64(v), 0)
	}
	return FromTime(t.UTC())
}

// ── 运算 ──

func (d Date) String() string {
	if d.t.IsZero() {
		return ""
	}
	return d.t.Format(Layout)
}

func (d Date) IsZero() bool { return d.t.IsZero() }

// Time 返回 UTC 零点时刻
func (d Date) Time() time.Time { return d.t }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) Before(o Date) bool { return d.String() < o.String() }

func (d Date) After(o Date) bool { return d.String() > o.String() }

func (d Date) Equal(o Date) bool { return d.String() == o.String() }

// DaysUntil 返回从 d 到 o 的天数（o 早于 d 时为负数）
func (d Date) DaysUntil(o Date) int {
	return int(math.Round(o.t.Sub(d.t).Hours() / 24))
}

// StartOfISOWeek 返回 d 所在 ISO 周的周一
func (d Date) StartOfISOWeek() Date {
	offset := (int(d.t.Weekday()) + 6) % 7
	return d.AddDays(-offset)
}

// ISOWeek 返回 ISO 周次
func (d Date) ISOWeek() int {
	_, w := d.t.ISOWeek()
	return w
}

// ── 序列化 ──

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(d.String())), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStoredDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Scan 实现 sql.Scanner：数据库驱动返回的各种形态在此统一归一化。
// 无法识别的形态记录告警后按字符串强制转换，单行异常不会中断整批读取。
func (d *Date) Scan(src interface{}) error {
	if src == nil {
		*d = Date{}
		return nil
	}
	*d = ParseLenient(src, scanLogger.Load())
	return nil
}

// Value 实现 driver.Valuer，以 YYYY-MM-DD 写入
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// GormDataType 告诉 GORM 列类型为 date
func (Date) GormDataType() string { return "date" }
