package documents

import (
	"time"

	"inventario/internal/core/apperror"
	"inventario/internal/core/entity"
)

// CheckNotPast rejects a calendar date that lies before the day of now.
// A nil date is accepted.
func CheckNotPast(field string, date *time.Time, now time.Time) error {
	if date == nil {
		return nil
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if date.In(now.Location()).Before(today) {
		return apperror.NewValidation(field+" cannot be in the past").
			WithDetail("field", field).
			WithDetail("value", date.Format(time.DateOnly))
	}
	return nil
}

// CloneLines copies a line set.
func CloneLines(lines []entity.LineItem) []entity.LineItem {
	if lines == nil {
		return nil
	}
	out := make([]entity.LineItem, len(lines))
	copy(out, lines)
	return out
}
