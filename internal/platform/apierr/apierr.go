package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Closed set of semantic error codes. Each code maps to exactly one HTTP status;
// anything outside this set is normalized to INTERNAL_ERROR at the handler layer.
const (
	CodeValidationError        = "VALIDATION_ERROR"
	CodeMissingField           = "MISSING_FIELD"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotFound               = "NOT_FOUND"
	CodeWeekNotFound           = "SEMANA_NOT_FOUND"
	CodeContestNotFound        = "CONCURSO_NOT_FOUND"
	CodeUserNotFound           = "USER_NOT_FOUND"
	CodeInvalidWeekOrder       = "INVALID_WEEK_ORDER"
	CodeWeekAlreadyCompleted   = "WEEK_ALREADY_COMPLETED"
	CodeWeekNotAvailable       = "WEEK_NOT_AVAILABLE"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeRateLimitExceeded      = "RATE_LIMIT_EXCEEDED"
	CodeInternal               = "INTERNAL_ERROR"
	CodeDatabase               = "DATABASE_ERROR"
	CodeServiceUnavailable     = "SERVICE_UNAVAILABLE"
	CodeContestRequired        = "CONCURSO_REQUIRED"
	CodeInvalidConfiguration   = "INVALID_CONFIGURATION"
)

var statusByCode = map[string]int{
	CodeValidationError:        http.StatusBadRequest,
	CodeMissingField:           http.StatusBadRequest,
	CodeUnauthorized:           http.StatusUnauthorized,
	CodeForbidden:              http.StatusForbidden,
	CodeNotFound:               http.StatusNotFound,
	CodeWeekNotFound:           http.StatusNotFound,
	CodeContestNotFound:        http.StatusNotFound,
	CodeUserNotFound:           http.StatusNotFound,
	CodeInvalidWeekOrder:       http.StatusBadRequest,
	CodeWeekAlreadyCompleted:   http.StatusConflict,
	CodeWeekNotAvailable:       http.StatusLocked,
	CodeConcurrentModification: http.StatusConflict,
	CodeRateLimitExceeded:      http.StatusTooManyRequests,
	CodeInternal:               http.StatusInternalServerError,
	CodeDatabase:               http.StatusInternalServerError,
	CodeServiceUnavailable:     http.StatusServiceUnavailable,
	CodeContestRequired:        http.StatusUnprocessableEntity,
	CodeInvalidConfiguration:   http.StatusInternalServerError,
}

// StatusForCode returns the HTTP status for a known code, or 500 otherwise.
func StatusForCode(code string) int {
	if s, ok := statusByCode[code]; ok {
		return s
	}
	return http.StatusInternalServerError
}

type Error struct {
	Status  int
	Code    string
	Details map[string]interface{}
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an error for a code from the closed taxonomy; the status is
// derived from the code so the two can never drift apart.
func New(code string, err error) *Error {
	return &Error{Status: StatusForCode(code), Code: code, Err: err}
}

func Newf(code string, format string, args ...interface{}) *Error {
	return New(code, fmt.Errorf(format, args...))
}

// WithDetails attaches structured context surfaced under the envelope's
// "details" key.
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// From returns err as an *Error when it is (or wraps) one; otherwise it
// normalizes err to INTERNAL_ERROR.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return New(CodeInternal, err)
}
