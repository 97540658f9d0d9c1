package util

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout calendar day layout used in file names and activity keys
// DateLayout 文件名与活跃度统计使用的日期格式
const DateLayout = "2006-01-02"

// GetZeroTime gets 0:00 time of a certain day
// GetZeroTime 获取某一天的0点时间
func GetZeroTime(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
}

// GetWeekStart returns 0:00 on the Monday of d's week
// GetWeekStart 返回 d 所在周周一的0点
func GetWeekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return GetZeroTime(d).AddDate(0, 0, -offset)
}

// DaysBetween counts calendar days from a to b, in b's location
// DaysBetween 计算 a 到 b 相隔的自然日数
func DaysBetween(a, b time.Time) int {
	a = GetZeroTime(a.In(b.Location()))
	b = GetZeroTime(b)
	// AddDate keeps day arithmetic correct across DST shifts
	days := 0
	if a.After(b) {
		for a.After(b) {
			a = a.AddDate(0, 0, -1)
			days--
		}
		return days
	}
	for a.Before(b) {
		a = a.AddDate(0, 0, 1)
		days++
	}
	return days
}

// ParseDuration parses duration string, supports 'd' (day) suffix
// ParseDuration 解析时间字符串，支持 'd' (天) 后缀
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil {
			return 0, err
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	// 纯数字默认为秒
	if _, err := strconv.Atoi(s); err == nil {
		s += "s"
	}
	return time.ParseDuration(s)
}
