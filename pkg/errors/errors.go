package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// RespCode is the application result code carried in every response envelope.
type RespCode int

const (
	CodeSuccess          RespCode = 0
	CodeServerError      RespCode = -1
	CodeInvalidParameter RespCode = -2
	CodeLoginFail        RespCode = -3
	CodeNotLogged        RespCode = -4
	CodeAccountExisted   RespCode = -5
	CodeInvalidOp        RespCode = -6
	CodeSubjectExisted   RespCode = -7
	CodePermissionDeny   RespCode = -8
)

var respMessages = map[RespCode]string{
	CodeSuccess:          "success",
	CodeServerError:      "server error",
	CodeInvalidParameter: "invalid parameter",
	CodeLoginFail:        "login fail",
	CodeNotLogged:        "need login",
	CodeAccountExisted:   "existed account",
	CodeInvalidOp:        "invalid operation",
	CodeSubjectExisted:   "existed subject",
	CodePermissionDeny:   "permission deny",
}

// Message returns the canonical message for the code.
func (c RespCode) Message() string {
	if msg, ok := respMessages[c]; ok {
		return msg
	}
	return respMessages[CodeServerError]
}

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Code    RespCode `json:"code"`
	Message string   `json:"msg"`
	Status  int      `json:"-"`
	Err     error    `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is matches errors sharing the same result code and HTTP status.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) || e == nil || t == nil {
		return false
	}
	return e.Code == t.Code && e.Status == t.Status
}

// New creates a new Error instance using the canonical message of code.
func New(code RespCode, status int) *Error {
	return &Error{Code: code, Status: status, Message: code.Message()}
}

// Wrap attaches context to an existing error.
func Wrap(err error, code RespCode, status int, message string) *Error {
	if message == "" {
		message = code.Message()
	}
	return &Error{Code: code, Status: status, Message: message, Err: err}
}

// Predefined errors. Store-derived outcomes (not found, existed, invalid op)
// answer with HTTP 200; the code field carries the failure.
var (
	ErrServer           = New(CodeServerError, http.StatusInternalServerError)
	ErrInvalidParameter = New(CodeInvalidParameter, http.StatusBadRequest)
	ErrNotFound         = New(CodeInvalidParameter, http.StatusOK)
	ErrLoginFail        = New(CodeLoginFail, http.StatusUnauthorized)
	ErrNotLogged        = New(CodeNotLogged, http.StatusUnauthorized)
	ErrAccountExisted   = New(CodeAccountExisted, http.StatusOK)
	ErrInvalidOp        = New(CodeInvalidOp, http.StatusOK)
	ErrSubjectExisted   = New(CodeSubjectExisted, http.StatusOK)
	ErrPermissionDeny   = New(CodePermissionDeny, http.StatusForbidden)
)

// ErrSessionMissing is returned by session stores when a key has no entry.
var ErrSessionMissing = errors.New("session not found")

// FromError normalises any error into an *Error.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrServer.Code, ErrServer.Status, ErrServer.Message)
}

// Internal wraps an unexpected failure as a server error.
func Internal(err error, message string) *Error {
	return Wrap(err, ErrServer.Code, ErrServer.Status, message)
}

// Clone returns a copy of the error allowing for message overrides.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}
