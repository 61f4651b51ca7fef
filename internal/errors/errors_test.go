package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "resource not found"},
			want: "resource not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeStorageUnavailable,
				Message: "read session slot",
				Cause:   errors.New("connection refused"),
			},
			want: "read session slot: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := StorageUnavailable(cause, "write slot")

	if !errors.Is(err, cause) {
		t.Errorf("errors.Is(StorageUnavailable(cause), cause) = false")
	}
}

func TestEntityNotFound(t *testing.T) {
	err := EntityNotFound("acknowledge alert", "alert", "42")
	if err.Code != ErrCodeNotFound {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNotFound)
	}
	if err.EntityID != "42" || err.Action != "acknowledge alert" {
		t.Errorf("context not carried: %#v", err)
	}
	if err.Error() != `alert "42" not found` {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestUnauthenticated(t *testing.T) {
	err := Unauthenticated("toggle user status")
	if !IsUnauthenticated(err) {
		t.Fatalf("IsUnauthenticated() = false")
	}
	if err.Action != "toggle user status" {
		t.Errorf("Action = %q", err.Action)
	}
}

func TestInvalidCredentials(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", InvalidCredentials())
	if !IsInvalidCredentials(wrapped) {
		t.Errorf("IsInvalidCredentials() through wrapping = false")
	}
	if IsUnauthenticated(wrapped) {
		t.Errorf("invalid credentials must not classify as unauthenticated")
	}
}

func TestWrap_NilError(t *testing.T) {
	if err := Wrap(nil, ErrCodeInternal, "message"); err != nil {
		t.Errorf("Wrap(nil) = %v, want nil", err)
	}
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errors.New("boom"), ErrCodeInternal, "append audit %s", "7")
	if err.Message != "append audit 7" || !IsAppError(err, ErrCodeInternal) {
		t.Errorf("unexpected error: %#v", err)
	}
}

func TestPredicates(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
		want  bool
	}{
		{"not found", NotFound("x"), IsNotFound, true},
		{"wrapped not found", fmt.Errorf("ctx: %w", NotFound("x")), IsNotFound, true},
		{"conflict", Conflict("x"), IsConflict, true},
		{"validation", Validation("x"), IsValidation, true},
		{"storage", StorageUnavailable(errors.New("x"), "y"), IsStorageUnavailable, true},
		{"plain error", errors.New("x"), IsNotFound, false},
		{"nil", nil, IsNotFound, false},
		{"timeout", &AppError{Code: ErrCodeTimeout}, IsTimeout, true},
		{"canceled", &AppError{Code: ErrCodeCanceled}, IsCanceled, true},
		{"mismatched code", Internal("x"), IsValidation, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.check(tt.err); got != tt.want {
				t.Errorf("predicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetCodeAndField(t *testing.T) {
	err := ValidationField("page", "page must be positive")
	if GetCode(err) != ErrCodeValidation {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if GetField(err) != "page" {
		t.Errorf("GetField() = %v", GetField(err))
	}
	if GetCode(errors.New("plain")) != "" {
		t.Errorf("GetCode(plain) should be empty")
	}
	if GetField(errors.New("plain")) != "" {
		t.Errorf("GetField(plain) should be empty")
	}
}
