package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{
			name:       "domain error passes through",
			err:        NewValidationError("title required", nil),
			wantCode:   "VALIDATION_FAILED",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "wrapped domain error is unwrapped",
			err:        fmt.Errorf("create article: %w", NewNotFound("ticket", nil)),
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "no rows maps to not found",
			err:        fmt.Errorf("get ticket: %w", pgx.ErrNoRows),
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "malformed uuid maps to not found",
			err:        fmt.Errorf("get ticket: %w", &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}),
			wantCode:   "NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "other postgres errors stay internal",
			err:        &pgconn.PgError{Code: "23505", Message: "duplicate key"},
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "fiber error keeps status",
			err:        fiber.NewError(http.StatusForbidden, "nope"),
			wantCode:   "FORBIDDEN",
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "unknown error is internal",
			err:        errors.New("boom"),
			wantCode:   "INTERNAL_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
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
}

func TestToDomainErrorNil(t *testing.T) {
	if ToDomainError(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
	if MapError(nil) != nil {
		t.Fatal("expected nil error from MapError(nil)")
	}
}

func TestUpstreamErrorUnwraps(t *testing.T) {
	cause := errors.New("timeout")
	err := NewUpstreamError("ai function failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected upstream error to wrap its cause")
	}
	if ToDomainError(err).HTTPStatus != http.StatusBadGateway {
		t.Fatal("expected bad gateway status")
	}
}
