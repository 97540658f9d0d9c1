// Package timex provides a time type that stores cleanly in every gorm dialect
// Package timex 提供在各数据库方言下均可存储的时间类型
package timex

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layout used for JSON and string columns
const Layout = time.RFC3339Nano

// Time wraps time.Time for database columns
// Time 用于数据库列的时间类型
type Time time.Time

// Now returns the current time truncated to milliseconds
func Now() Time {
	return Time(time.Now().Truncate(time.Millisecond))
}

func (t Time) Time() time.Time {
	return time.Time(t)
}

func (t Time) IsZero() bool {
	return time.Time(t).IsZero()
}

func (t Time) Unix() int64 {
	return time.Time(t).Unix()
}

func (t Time) UnixMilli() int64 {
	return time.Time(t).UnixMilli()
}

func (t Time) UnixMicro() int64 {
	return time.Time(t).UnixMicro()
}

func (t Time) UnixNano() int64 {
	return time.Time(t).UnixNano()
}

func (t Time) String() string {
	return time.Time(t).Format(Layout)
}

// MarshalJSON 序列化为 RFC3339 字符串
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(strconv.Quote(t.String())), nil
}

// UnmarshalJSON accepts an RFC3339 string, an empty string, null or unix milliseconds
// UnmarshalJSON 接受 RFC3339 字符串、空字符串、null 或毫秒时间戳
func (t *Time) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*t = Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*t = Time(time.UnixMilli(ms))
		return nil
	}
	unquoted, err := strconv.Unquote(s)
	if err != nil {
		return fmt.Errorf("timex: invalid time %s", s)
	}
	parsed, err := time.Parse(Layout, unquoted)
	if err != nil {
		return err
	}
	*t = Time(parsed)
	return nil
}

// Value implements driver.Valuer
func (t Time) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return time.Time(t), nil
}

// Scan implements sql.Scanner
func (t *Time) Scan(v any) error {
	switch value := v.(type) {
	case nil:
		*t = Time{}
	case time.Time:
		*t = Time(value)
	case string:
		return t.parseString(value)
	case []byte:
		return t.parseString(string(value))
	case int64:
		*t = Time(time.UnixMilli(value))
	default:
		return fmt.Errorf("timex: cannot scan %T", v)
	}
	return nil
}

func (t *Time) parseString(s string) error {
	for _, layout := range []string{Layout, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Time(parsed)
			return nil
		}
	}
	return fmt.Errorf("timex: cannot parse %q", s)
}
