package xerr

import (
	"errors"
	"fmt"
)

// CodeError 自定义错误结构，Code 同时决定 HTTP 状态码
type CodeError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error 实现 error 接口
func (e *CodeError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// New 创建新的 CodeError
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Message: msg}
}

// As 从错误链中取出 CodeError
func As(err error) (*CodeError, bool) {
	var ce *CodeError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

// 常用通用错误码
const (
	OK                  = 200
	BadRequest          = 400
	Unauthorized        = 401
	Forbidden           = 403
	NotFound            = 404
	Conflict            = 409
	TooManyRequests     = 429
	InternalServerError = 500
)

// 常用预定义错误
var (
	ErrSuccess     = New(OK, "Success")
	ErrServerError = New(InternalServerError, "internal_error")
	ErrParam       = New(BadRequest, "invalid_input")

	ErrUnauthorized      = New(Unauthorized, "unauthorized")
	ErrInvalidCredential = New(Unauthorized, "invalid_credentials")
	ErrNotFound          = New(NotFound, "not_found")
	ErrRateLimited       = New(TooManyRequests, "too_many_requests")

	ErrMissingBotID     = New(BadRequest, "missing_botId")
	ErrMissingTenant    = New(BadRequest, "missing_tenant")
	ErrNothingToUpdate  = New(BadRequest, "nothing_to_update")
	ErrBotNotFound      = New(NotFound, "bot_not_found")
	ErrPresetNotFound   = New(NotFound, "preset_not_found")
	ErrDocNotFound      = New(NotFound, "doc_not_found")
	ErrMissingOpenAIKey = New(BadRequest, "missing_openai_key")
	ErrMissingToken     = New(BadRequest, "missing_access_token")
)
