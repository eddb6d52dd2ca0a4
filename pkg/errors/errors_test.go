package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Unit"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Reservation", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad"), CodeInvalidInput, http.StatusBadRequest},
		{"unauthorized", Unauthorized("who"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("no"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("taken"), CodeConflict, http.StatusConflict},
		{"expired", Expired("too late"), CodeExpired, http.StatusGone},
		{"already exists", AlreadyExists("dup"), CodeAlreadyExists, http.StatusConflict},
		{"invalid state", InvalidState("wrong"), CodeInvalidState, http.StatusConflict},
		{"unit unavailable", UnitUnavailable("closed"), CodeUnitUnavailable, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("StatusCode() = %d, want %d", tt.err.StatusCode(), tt.wantStatus)
			}
		})
	}
}

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name:     "without underlying error",
			appErr:   Expired("hold expired"),
			expected: "EXPIRED: hold expired",
		},
		{
			name:     "with underlying error",
			appErr:   Internal("failed to save", errors.New("connection reset")),
			expected: "INTERNAL_ERROR: failed to save (caused by: connection reset)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("write conflict")
	wrapped := Wrap(cause, CodeConflict, "slot taken", http.StatusConflict)

	if !errors.Is(wrapped, cause) {
		t.Error("wrapped error should match its cause")
	}
	if wrapped.Code != CodeConflict {
		t.Errorf("Code = %s, want %s", wrapped.Code, CodeConflict)
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Unit", "665f1c")
	if err.Details["id"] != "665f1c" || err.Details["resource"] != "Unit" {
		t.Errorf("unexpected details: %v", err.Details)
	}
	if err.Message != "Unit not found" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestIsAppError_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("service: %w", InvalidState("terminal"))

	if !IsAppError(wrapped) {
		t.Error("IsAppError() should find an AppError behind fmt wrapping")
	}
	if IsAppError(errors.New("plain")) {
		t.Error("IsAppError() should be false for a plain error")
	}
	if got := AsAppError(wrapped); got.Code != CodeInvalidState {
		t.Errorf("AsAppError() code = %s, want %s", got.Code, CodeInvalidState)
	}
}

func TestAsAppError_WrapsPlainErrors(t *testing.T) {
	plain := errors.New("socket closed")
	got := AsAppError(plain)

	if got.Code != CodeInternal {
		t.Errorf("Code = %s, want %s", got.Code, CodeInternal)
	}
	if got.Err != plain {
		t.Error("AsAppError() should keep the original error")
	}
}

func TestHasCode(t *testing.T) {
	if !HasCode(Expired("late"), CodeExpired) {
		t.Error("HasCode() should match the code")
	}
	if HasCode(Expired("late"), CodeConflict) {
		t.Error("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("HasCode() should be false for a plain error")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	raw := UnitUnavailable("unit is closed").
		WithDetails(map[string]any{"unit_id": "u-1"}).
		ToJSON()

	var resp ErrorResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		t.Fatalf("ToJSON() produced invalid JSON: %v", err)
	}
	if resp.Code != CodeUnitUnavailable || resp.Message != "unit is closed" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Details["unit_id"] != "u-1" {
		t.Errorf("details not serialized: %v", resp.Details)
	}
}
