// Package errors turns service errors into API error responses
// Package errors 将服务层错误转换为 API 错误响应
package errors

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/haierkeys/flownote-service/internal/middleware"
	"github.com/haierkeys/flownote-service/pkg/code"
)

// AppError 统一应用错误结构体
// 包含错误码、消息、详情、追踪ID和时间戳
type AppError struct {
	// Code 错误码
	Code int `json:"code"`
	// Status 始终为 false
	Status bool `json:"status"`
	// Message 错误消息
	Message string `json:"message"`
	// Data 附带数据（可选）
	Data any `json:"data,omitempty"`
	// Details 错误详情（可选）
	Details []string `json:"details,omitempty"`
	// TraceID 请求追踪ID
	TraceID string `json:"traceId,omitempty"`
	// Cause 原始错误（不序列化到JSON）
	Cause error `json:"-"`
	// Timestamp 错误发生时间
	Timestamp time.Time `json:"timestamp"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap 实现 errors.Unwrap 接口，支持错误链路追踪
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError 从 Code 对象创建 AppError
func NewAppError(c *code.Code, cause error) *AppError {
	return &AppError{
		Code:      c.Code(),
		Message:   c.Msg(),
		Data:      c.Data(),
		Details:   c.Details(),
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

// Wrap attaches a response code to an infrastructure error
// Wrap 为底层错误附加响应码
func Wrap(c *code.Code, cause error) error {
	if cause == nil {
		return nil
	}
	return NewAppError(c, cause)
}

// WithTraceID 设置 TraceID 并返回自身（链式调用）
func (e *AppError) WithTraceID(traceID string) *AppError {
	e.TraceID = traceID
	return e
}

// WithDetails 设置详情并返回自身（链式调用）
func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = details
	return e
}

// ToAppError converts any error into an AppError
// *code.Code keeps its code; unknown errors become ErrorServerInternal
// ToAppError 将任意错误转换为 AppError
func ToAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return NewAppError(codeErr, nil)
	}

	return NewAppError(code.ErrorServerInternal, err)
}

// ErrorResponse 统一错误响应处理
// 从 gin.Context 获取 TraceID，将错误转换为 AppError 并返回 JSON 响应
func ErrorResponse(c *gin.Context, err error) {
	appErr := ToAppError(err)
	out := *appErr
	out.TraceID = middleware.GetTraceIDFromGin(c)
	out.Status = false
	c.Set("status_code", http.StatusOK)
	c.JSON(http.StatusOK, &out)
}

// IsCode reports whether err carries the given response code
// IsCode 判断错误是否携带指定响应码
func IsCode(err error, c *code.Code) bool {
	if err == nil {
		return false
	}
	var codeErr *code.Code
	if errors.As(err, &codeErr) {
		return codeErr.Code() == c.Code()
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == c.Code()
	}
	return false
}
