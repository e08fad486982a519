package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusForCode(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{CodeValidationError, http.StatusBadRequest},
		{CodeMissingField, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeWeekNotFound, http.StatusNotFound},
		{CodeContestNotFound, http.StatusNotFound},
		{CodeUserNotFound, http.StatusNotFound},
		{CodeInvalidWeekOrder, http.StatusBadRequest},
		{CodeWeekAlreadyCompleted, http.StatusConflict},
		{CodeWeekNotAvailable, http.StatusLocked},
		{CodeConcurrentModification, http.StatusConflict},
		{CodeRateLimitExceeded, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{CodeDatabase, http.StatusInternalServerError},
		{CodeServiceUnavailable, http.StatusServiceUnavailable},
		{CodeContestRequired, http.StatusUnprocessableEntity},
		{CodeInvalidConfiguration, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusForCode(tc.code); got != tc.want {
			t.Errorf("StatusForCode(%q) = %d, want %d", tc.code, got, tc.want)
		}
	}
}

func TestNewDerivesStatusFromCode(t *testing.T) {
	err := Newf(CodeWeekAlreadyCompleted, "semana %d ja concluida", 3)
	if err.Status != http.StatusConflict {
		t.Fatalf("Status = %d, want 409", err.Status)
	}
	if err.Error() != "semana 3 ja concluida" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestFromNormalizesUnknownErrors(t *testing.T) {
	plain := errors.New("boom")
	ae := From(plain)
	if ae.Code != CodeInternal {
		t.Fatalf("Code = %q, want INTERNAL_ERROR", ae.Code)
	}
	if !errors.Is(ae, plain) {
		t.Fatalf("From lost the wrapped error")
	}
}

func TestFromUnwrapsNestedAPIError(t *testing.T) {
	inner := Newf(CodeWeekNotAvailable, "semana bloqueada")
	wrapped := fmt.Errorf("handling request: %w", inner)
	ae := From(wrapped)
	if ae != inner {
		t.Fatalf("From did not recover the wrapped *Error")
	}
}
