package service

import "net/http"

// FieldError 校验失败的逐字段说明，按 {path, message} 返回给前端
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error 业务错误：带 HTTP 状态码，HTTP 边界只做一次统一映射
type Error struct {
	Code   int
	Msg    string
	Fields []FieldError
	Err    error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "service error"
}

func (e *Error) Unwrap() error { return e.Err }

func BadRequest(msg string) error {
	return &Error{Code: http.StatusBadRequest, Msg: msg}
}

func Validation(fields []FieldError) error {
	return &Error{Code: http.StatusBadRequest, Msg: "Validation failed", Fields: fields}
}

func Unauthorized(msg string) error {
	return &Error{Code: http.StatusUnauthorized, Msg: msg}
}

func Forbidden(msg string) error {
	return &Error{Code: http.StatusForbidden, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Code: http.StatusNotFound, Msg: msg}
}

func Internal(msg string, err error) error {
	return &Error{Code: http.StatusInternalServerError, Msg: msg, Err: err}
}
