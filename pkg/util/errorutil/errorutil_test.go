package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestToDomainError(t *testing.T) {
	cause := errors.New("connection refused")

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error passes through", NewConflict("username already exists", nil), "CONFLICT", http.StatusConflict},
		{"wrapped domain error", fmt.Errorf("register: %w", NewValidationError("bad role", nil)), "VALIDATION_FAILED", http.StatusBadRequest},
		{"fiber not found", fiber.ErrNotFound, "NOT_FOUND", http.StatusNotFound},
		{"fiber method not allowed", fiber.ErrMethodNotAllowed, "Method Not Allowed", http.StatusMethodNotAllowed},
		{"plain error becomes internal", cause, "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.HTTPStatus != tt.wantStatus {
				t.Errorf("status = %d, want %d", got.HTTPStatus, tt.wantStatus)
			}
		})
	}

	if ToDomainError(nil) != nil {
		t.Error("ToDomainError(nil) should be nil")
	}
}

func TestInternalErrorKeepsCause(t *testing.T) {
	cause := errors.New("pool closed")
	err := NewInternalError(cause)
	if !errors.Is(err, cause) {
		t.Fatal("internal error should unwrap to its cause")
	}
	if got := err.Error(); got != "internal server error: pool closed" {
		t.Errorf("Error() = %q", got)
	}
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("close: %w", NewConflict("query already closed", nil))
	if !IsCode(err, "CONFLICT") {
		t.Error("expected CONFLICT code")
	}
	if IsCode(err, "NOT_FOUND") {
		t.Error("did not expect NOT_FOUND code")
	}
	if IsCode(errors.New("plain"), "CONFLICT") {
		t.Error("plain errors carry no code")
	}
}
