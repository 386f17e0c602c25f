package errs_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"pairup/internal/pkg/errs"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		details    []any
		wantCode   int
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "registered code without status defaults to 200",
			code:       errs.ErrDuplicateJoin,
			wantCode:   errs.ErrDuplicateJoin,
			wantStatus: http.StatusOK,
			wantMsg:    "This connection has already joined matchmaking.",
		},
		{
			name:       "template is formatted with details",
			code:       errs.ErrMalformedMessage,
			details:    []any{"missing userId"},
			wantCode:   errs.ErrMalformedMessage,
			wantStatus: http.StatusOK,
			wantMsg:    "Malformed message: missing userId.",
		},
		{
			name:       "rate limit carries 429",
			code:       errs.ErrRateLimitExceeded,
			wantCode:   errs.ErrRateLimitExceeded,
			wantStatus: http.StatusTooManyRequests,
			wantMsg:    "Too many requests. Please try again later.",
		},
		{
			name:       "unknown code degrades to ErrUnknown",
			code:       424242,
			wantCode:   errs.ErrUnknown,
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "Something went wrong. Please try again.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := errs.NewError(tt.code, tt.details...)
			assert.Equal(t, tt.wantCode, err.Code)
			assert.Equal(t, tt.wantStatus, err.Status)
			assert.Equal(t, tt.wantMsg, err.Message)
		})
	}
}

func TestCustomError_Is(t *testing.T) {
	wrapped := fmt.Errorf("join: %w", errs.NewError(errs.ErrDuplicateJoin))

	assert.True(t, errors.Is(wrapped, errs.NewError(errs.ErrDuplicateJoin)))
	assert.False(t, errors.Is(wrapped, errs.NewError(errs.ErrRoomIDConflict)))
	assert.Equal(t, errs.ErrDuplicateJoin, errs.CodeOf(wrapped))
	assert.Equal(t, errs.ErrUnknown, errs.CodeOf(errors.New("plain")))
}
