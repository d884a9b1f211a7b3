// Package apperr 定义服务内部统一的错误分类，由 handler 层映射为 HTTP 状态码。
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/lib/pq"
)

// Kind 错误类别
type Kind int

const (
	KindUnexpected Kind = iota
	KindValidation
	KindNotFound
	KindStore
	KindTimeout
)

// Error 带分类的错误
type Error struct {
	Kind    Kind
	Code    string
	Message string
	// Retry 为 true 表示瞬时故障，客户端可以重试
	Retry   bool
	Details any
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		if e.Message != "" {
			return e.Message + ": " + e.Err.Error()
		}
		return e.Err.Error()
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// Status 对应的 HTTP 状态码
func (e *Error) Status() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindStore:
		if e.Retry {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Validation 参数校验错误
func Validation(code, message string, details any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message, Details: details}
}

// NotFound 资源不存在
func NotFound(code, message string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: message}
}

// Unexpected 未分类的内部错误
func Unexpected(err error) *Error {
	return &Error{Kind: KindUnexpected, Code: "INTERNAL_ERROR", Message: "internal server error", Err: err}
}

// FromStore 将存储层错误归类：超时、可重试的瞬时故障或普通存储故障。
// 已经是 *Error 的直接返回。
func FromStore(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Code: "REQUEST_TIMEOUT", Message: "request timed out", Err: err}
	}
	if IsTransient(err) {
		return &Error{Kind: KindStore, Code: "STORE_UNAVAILABLE", Message: "storage temporarily unavailable", Retry: true, Err: err}
	}
	return &Error{Kind: KindStore, Code: "STORE_ERROR", Message: "storage error", Err: err}
}

// transientSQLStates Postgres 中可重试的 SQLSTATE
var transientSQLStates = map[pq.ErrorCode]struct{}{
	"40001": {}, // serialization_failure
	"40P01": {}, // deadlock_detected
	"53300": {}, // too_many_connections
	"55P03": {}, // lock_not_available
	"57P03": {}, // cannot_connect_now
}

// IsTransient 判断是否为数据库繁忙、锁冲突一类的瞬时故障
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		_, ok := transientSQLStates[pqErr.Code]
		return ok
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked") ||
		strings.Contains(msg, "sqlite_busy")
}

// Wrap 附加上下文信息
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
