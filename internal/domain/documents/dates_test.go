package documents

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"inventario/internal/core/apperror"
)

func TestCheckNotPast(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 30, 0, 0, time.UTC)
	day := func(d int) *time.Time {
		v := time.Date(2025, 6, d, 0, 0, 0, 0, time.UTC)
		return &v
	}

	assert.NoError(t, CheckNotPast("validUntil", nil, now))
	assert.NoError(t, CheckNotPast("validUntil", day(10), now))
	assert.NoError(t, CheckNotPast("validUntil", day(11), now))

	err := CheckNotPast("validUntil", day(9), now)
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "validUntil", appErr.Details["field"])
}
