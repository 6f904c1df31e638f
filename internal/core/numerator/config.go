// Package numerator provides domain contracts for document numbering.
package numerator

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is the window within which a number sequence restarts.
type Period string

const (
	PeriodYear  Period = "year"
	PeriodMonth Period = "month"
)

// DefaultPadWidth is the zero-padded width of the sequential suffix.
const DefaultPadWidth = 4

// Scheme describes how numbers of one document type look.
//
//	PeriodYear:  PREFIX-YYYY-NNNN     (ORD-2025-0001)
//	PeriodMonth: PREFIX-YYYY-MM-NNNN  (REC-2025-03-0001)
type Scheme struct {
	// DocumentType scopes the sequence (one sequence per type and period)
	DocumentType string
	Prefix       string
	Period       Period
	PadWidth     int
}

// NewScheme returns a scheme with the default pad width.
func NewScheme(documentType, prefix string, period Period) Scheme {
	return Scheme{
		DocumentType: documentType,
		Prefix:       prefix,
		Period:       period,
		PadWidth:     DefaultPadWidth,
	}
}

// Validate checks the scheme is usable.
func (s Scheme) Validate() error {
	if s.DocumentType == "" {
		return fmt.Errorf("numerator: document type is required")
	}
	if s.Prefix == "" || strings.Contains(s.Prefix, "-") {
		return fmt.Errorf("numerator: prefix %q must be non-empty and contain no '-'", s.Prefix)
	}
	if s.Period != PeriodYear && s.Period != PeriodMonth {
		return fmt.Errorf("numerator: unknown period %q", s.Period)
	}
	return nil
}

// PeriodKey identifies the period containing at (2025 or 2025-03).
func (s Scheme) PeriodKey(at time.Time) string {
	if s.Period == PeriodMonth {
		return at.Format("2006-01")
	}
	return at.Format("2006")
}

// ScopePrefix is the common prefix of every number in the period (ORD-2025-).
func (s Scheme) ScopePrefix(at time.Time) string {
	return s.Prefix + "-" + s.PeriodKey(at) + "-"
}

// Format renders the n-th number of the period. Values wider than the pad
// width are kept whole.
func (s Scheme) Format(at time.Time, n int64) string {
	width := s.PadWidth
	if width <= 0 {
		width = DefaultPadWidth
	}
	return fmt.Sprintf("%s%0*d", s.ScopePrefix(at), width, n)
}

// ParseSuffix extracts the trailing numeric part of a formatted number.
func ParseSuffix(number string) (int64, error) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("numerator: %q has no numeric suffix", number)
	}
	n, err := strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("numerator: parse suffix of %q: %w", number, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("numerator: negative suffix in %q", number)
	}
	return n, nil
}

// Next computes the value following last, the highest number already issued
// in the period ("" when none). An unparsable last restarts at 1 and the
// parse error is returned alongside so the caller can log it.
func Next(last string) (int64, error) {
	if last == "" {
		return 1, nil
	}
	n, err := ParseSuffix(last)
	if err != nil {
		return 1, err
	}
	return n + 1, nil
}
