package rpc

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"github.com/arnold/studytrack-api/internal/store"
)

type Code string

const (
	CodeBadRequest         Code = "BAD_REQUEST"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeForbidden          Code = "FORBIDDEN"
	CodeNotFound           Code = "NOT_FOUND"
	CodeMethodNotSupported Code = "METHOD_NOT_SUPPORTED"
	CodePayloadTooLarge    Code = "PAYLOAD_TOO_LARGE"
	CodeInternal           Code = "INTERNAL_SERVER_ERROR"
)

var statusByCode = map[Code]int{
	CodeBadRequest:         fiber.StatusBadRequest,
	CodeUnauthorized:       fiber.StatusUnauthorized,
	CodeForbidden:          fiber.StatusForbidden,
	CodeNotFound:           fiber.StatusNotFound,
	CodeMethodNotSupported: fiber.StatusMethodNotAllowed,
	CodePayloadTooLarge:    fiber.StatusRequestEntityTooLarge,
	CodeInternal:           fiber.StatusInternalServerError,
}

// Error is the failure half of every procedure response.
type Error struct {
	Code    Code              `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`

	cause error
}

var (
	ErrUnauthorized = &Error{Code: CodeUnauthorized, Message: "Please login"}
	ErrForbidden    = &Error{Code: CodeForbidden, Message: "Admin access required"}
)

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Status is the HTTP status the error is sent with.
func (e *Error) Status() int {
	if status, ok := statusByCode[e.Code]; ok {
		return status
	}
	return fiber.StatusInternalServerError
}

func BadRequest(msg string) *Error {
	return &Error{Code: CodeBadRequest, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}

func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func Internal(cause error) *Error {
	return &Error{Code: CodeInternal, Message: "Internal server error", cause: cause}
}

// FromError maps any error returned by a procedure onto the taxonomy.
// Errors it does not recognise become INTERNAL_SERVER_ERROR.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}

	var rpcErr *Error
	if errors.As(err, &rpcErr) {
		return rpcErr
	}

	switch cause := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		return fieldErrors(cause)
	case *fiber.Error:
		return fromFiber(cause)
	}

	switch errors.Cause(err) {
	case store.ErrParentNotFound:
		return BadRequest(capitalize(err.Error()))
	case store.ErrNoChanges:
		return BadRequest("No fields to update")
	case store.ErrUnavailable:
		return &Error{Code: CodeInternal, Message: "Database not available", cause: err}
	}
	return Internal(err)
}

func fromFiber(e *fiber.Error) *Error {
	for code, status := range statusByCode {
		if status == e.Code {
			return &Error{Code: code, Message: e.Message}
		}
	}
	return Internal(e)
}

func capitalize(s string) string {
	if s == "" || s[0] < 'a' || s[0] > 'z' {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
