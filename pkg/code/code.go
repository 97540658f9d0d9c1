// Package code defines the response codes returned by the HTTP API
// Package code 定义 HTTP API 返回的响应码
package code

import (
	"fmt"
	"net/http"
	"sort"
)

// Code a response code together with its payload
// Code 响应码及其附带的数据
type Code struct {
	code   int  // 状态码
	status bool // 是否成功
	Lang   lang // 多语言消息

	data     any
	haveData bool

	details     []string
	haveDetails bool

	context     string
	haveContext bool
}

var (
	errorCodes   = map[int]string{}
	successCodes = map[int]string{}
)

// NewError registers a failure code; registering the same number twice panics
// NewError 注册失败码，重复注册同一编号会 panic
func NewError(code int, l lang) *Code {
	if _, ok := errorCodes[code]; ok {
		panic(fmt.Sprintf("错误码 %d 已经存在，请更换一个", code))
	}
	errorCodes[code] = l.en
	return &Code{code: code, status: false, Lang: l}
}

// NewSuss registers a success code
// NewSuss 注册成功码
func NewSuss(code int, l lang) *Code {
	if _, ok := successCodes[code]; ok {
		panic(fmt.Sprintf("成功码 %d 已经存在，请更换一个", code))
	}
	successCodes[code] = l.en
	return &Code{code: code, status: true, Lang: l}
}

// Registered lists every registered code number in ascending order
func Registered() []int {
	out := make([]int, 0, len(errorCodes)+len(successCodes))
	for c := range successCodes {
		out = append(out, c)
	}
	for c := range errorCodes {
		out = append(out, c)
	}
	sort.Ints(out)
	return out
}

// Clone returns a copy without data, details or context
// Clone 创建一个不带数据、详情和上下文的副本
func (e *Code) Clone() *Code {
	return &Code{code: e.code, status: e.status, Lang: e.Lang}
}

func (e *Code) Error() string {
	return e.Msg()
}

func (e *Code) Code() int {
	return e.code
}

func (e *Code) Status() bool {
	return e.status
}

func (e *Code) Msg() string {
	return e.Lang.GetMessage()
}

func (e *Code) Details() []string {
	return e.details
}

func (e *Code) Data() any {
	return e.data
}

func (e *Code) Context() string {
	return e.context
}

func (e *Code) HaveDetails() bool {
	return e.haveDetails
}

func (e *Code) HaveData() bool {
	return e.haveData
}

func (e *Code) HaveContext() bool {
	return e.haveContext
}

// WithData returns a clone carrying data
// WithData 返回携带数据的副本
func (e *Code) WithData(data any) *Code {
	c := e.derive()
	c.haveData = true
	c.data = data
	return c
}

// WithDetails returns a clone carrying details
// WithDetails 返回携带详情的副本
func (e *Code) WithDetails(details ...string) *Code {
	c := e.derive()
	c.haveDetails = true
	c.details = append([]string{}, details...)
	return c
}

// WithContext returns a clone carrying a context string
func (e *Code) WithContext(context string) *Code {
	c := e.derive()
	c.haveContext = true
	c.context = context
	return c
}

// derive copies e including any payload already attached
func (e *Code) derive() *Code {
	c := *e
	return &c
}

// StatusCode business errors are reported in the body, the HTTP status stays 200
// StatusCode 业务错误通过响应体返回，HTTP 状态码始终为 200
func (e *Code) StatusCode() int {
	return http.StatusOK
}
