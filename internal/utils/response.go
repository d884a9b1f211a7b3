package utils

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/giftgenius/internal/apperr"
)

// StartTimeKey 请求开始时间在 gin.Context 中的键，由日志中间件写入
const StartTimeKey = "request_start"

// ErrorResponse 统一错误响应结构
type ErrorResponse struct {
	Error            string `json:"error"`             // 稳定的错误码
	Message          string `json:"message"`           // 可读信息
	Retry            bool   `json:"retry,omitempty"`   // 可重试
	Details          any    `json:"details,omitempty"` // 字段级错误
	ProcessingTimeMs int64  `json:"processing_time_ms"`
	Timestamp        string `json:"timestamp"`
}

// StartTime 返回请求开始时间，没有中间件时退化为当前时间
func StartTime(c *gin.Context) time.Time {
	if v, ok := c.Get(StartTimeKey); ok {
		if t, ok := v.(time.Time); ok {
			return t
		}
	}
	return time.Now()
}

// ElapsedMs 请求已耗时（毫秒）
func ElapsedMs(c *gin.Context) int64 {
	return time.Since(StartTime(c)).Milliseconds()
}

// Timestamp 当前 UTC 时间（RFC3339）
func Timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Success 返回成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error 根据错误类型返回对应状态码。非 release 模式下内部错误会带上原始信息。
func Error(c *gin.Context, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Unexpected(err)
	}
	_ = c.Error(err)

	message := ae.Message
	if ae.Kind == apperr.KindUnexpected && ae.Err != nil && gin.Mode() != gin.ReleaseMode {
		message = ae.Err.Error()
	}
	c.AbortWithStatusJSON(ae.Status(), ErrorResponse{
		Error:            ae.Code,
		Message:          message,
		Retry:            ae.Retry,
		Details:          ae.Details,
		ProcessingTimeMs: ElapsedMs(c),
		Timestamp:        Timestamp(),
	})
}

// BadRequest 返回400错误
func BadRequest(c *gin.Context, code, message string) {
	Error(c, apperr.Validation(code, message, nil))
}

// NotFound 返回404错误
func NotFound(c *gin.Context, code, message string) {
	Error(c, apperr.NotFound(code, message))
}
