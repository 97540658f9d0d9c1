// Package convert holds small conversion helpers for request values and structs
// Package convert 请求参数与结构体的转换工具
package convert

import (
	"strconv"
	"strings"
)

type StrTo string

func (s StrTo) String() string {
	return string(s)
}

func (s StrTo) Int() (int, error) {
	return strconv.Atoi(strings.TrimSpace(s.String()))
}

func (s StrTo) MustInt() int {
	v, _ := s.Int()
	return v
}

func (s StrTo) Int64() (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s.String()), 10, 64)
}

func (s StrTo) MustInt64() int64 {
	v, _ := s.Int64()
	return v
}

// List splits a comma separated value, dropping blank items
// List 按逗号拆分，忽略空项
func (s StrTo) List() []string {
	var out []string
	for _, item := range strings.Split(s.String(), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
