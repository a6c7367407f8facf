package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// ===== Error model (各featureで同型のものを重複定義しない) =====

type Code string

const (
	CodeScheduleViolation Code = "SCHEDULE_VIOLATION"
	CodeUnauthenticated   Code = "UNAUTHENTICATED"
	CodeNotAuthorized     Code = "NOT_AUTHORIZED"
	CodeNotFound          Code = "NOT_FOUND"
	CodeAlreadyMarked     Code = "ALREADY_MARKED"
	CodeSessionInactive   Code = "SESSION_INACTIVE"
	CodeInvalidCode       Code = "INVALID_CODE"
	CodeNetworkMismatch   Code = "NETWORK_MISMATCH"
	CodeForbidden         Code = "FORBIDDEN"
	CodeInvalidArgument   Code = "INVALID_ARGUMENT"
	CodeConflict          Code = "CONFLICT"
	CodeInternal          Code = "INTERNAL"
)

type APIError struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

func ScheduleViolation(msg string) *APIError {
	return &APIError{Code: CodeScheduleViolation, Message: msg}
}
func Unauthenticated(msg string) *APIError { return &APIError{Code: CodeUnauthenticated, Message: msg} }
func NotAuthorized(msg string) *APIError   { return &APIError{Code: CodeNotAuthorized, Message: msg} }
func NotFound(msg string) *APIError        { return &APIError{Code: CodeNotFound, Message: msg} }
func AlreadyMarked(msg string) *APIError   { return &APIError{Code: CodeAlreadyMarked, Message: msg} }
func SessionInactive(msg string) *APIError { return &APIError{Code: CodeSessionInactive, Message: msg} }
func InvalidCode(msg string) *APIError     { return &APIError{Code: CodeInvalidCode, Message: msg} }
func NetworkMismatch(msg string) *APIError { return &APIError{Code: CodeNetworkMismatch, Message: msg} }
func Forbidden(msg string) *APIError       { return &APIError{Code: CodeForbidden, Message: msg} }
func Invalid(msg string) *APIError         { return &APIError{Code: CodeInvalidArgument, Message: msg} }
func Conflict(msg string) *APIError        { return &APIError{Code: CodeConflict, Message: msg} }
func Internal(msg string) *APIError        { return &APIError{Code: CodeInternal, Message: msg} }

func ToHTTPStatus(err error) int {
	var api *APIError
	if errors.As(err, &api) {
		switch api.Code {
		case CodeInvalidArgument, CodeScheduleViolation, CodeAlreadyMarked,
			CodeSessionInactive, CodeInvalidCode, CodeNetworkMismatch:
			return http.StatusBadRequest
		case CodeUnauthenticated:
			return http.StatusUnauthorized
		case CodeNotAuthorized, CodeForbidden:
			return http.StatusForbidden
		case CodeNotFound:
			return http.StatusNotFound
		case CodeConflict:
			return http.StatusConflict
		default:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// FromErr: handler用。APIErrorならそのまま、未知のエラーはINTERNALに丸める
func FromErr(err error) *APIError {
	var api *APIError
	if errors.As(err, &api) {
		return api
	}
	return &APIError{Code: CodeInternal, Message: "internal error"}
}
