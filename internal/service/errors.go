package service

import (
	"errors"
	"fmt"
)

// ErrorKind 错误类别，HTTP 层据此选择状态码
type ErrorKind int

const (
	KindInternal   ErrorKind = iota // 500
	KindValidation                  // 400
	KindNotFound                    // 404
	KindConflict                    // 409
	KindState                       // 400，引擎状态冲突
	KindUnavailable                 // 503，可选依赖未启用
)

// Error 服务层错误：Message 直接返回给调用方，Err 为底层原因
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }

func notFoundError(msg string) *Error { return &Error{Kind: KindNotFound, Message: msg} }

func conflictError(msg string) *Error { return &Error{Kind: KindConflict, Message: msg} }

func internalError(msg string, err error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Err: err}
}

// AsError 提取服务层错误；非服务层错误视为 Internal
func AsError(err error) *Error {
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	return internalError("Internal server error", err)
}
