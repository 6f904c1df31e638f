package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAsAppError_WrappedChain(t *testing.T) {
	base := NewNotFound("order", "42")
	wrapped := fmt.Errorf("load order: %w", base)

	got, ok := AsAppError(wrapped)
	assert.True(t, ok)
	assert.Equal(t, CodeNotFound, got.Code)
	assert.True(t, IsNotFound(wrapped))
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(wrapped))
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
}

func TestNewInsufficientStock_Message(t *testing.T) {
	err := NewInsufficientStock("p1", 7, 3)

	assert.Equal(t, "Insufficient stock. Available: 3, Requested: 7", err.Message)
	assert.Equal(t, int64(7), err.Details["requested"])
	assert.Equal(t, int64(3), err.Details["available"])
	assert.True(t, err.IsBusiness())
}

func TestNewInvalidPrice_RuleMessage(t *testing.T) {
	tests := []struct {
		rule string
		want string
	}{
		{"positive", "Unit price must be greater than zero"},
		{"non_negative", "Unit price cannot be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			err := NewInvalidPrice("0", tt.rule)
			assert.Equal(t, tt.want, err.Message)
			assert.Equal(t, "unitPrice", err.Details["field"])
		})
	}
}

func TestInternal_IsNotBusiness(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternal(cause)

	assert.False(t, err.IsBusiness())
	assert.ErrorIs(t, err, cause)
}
