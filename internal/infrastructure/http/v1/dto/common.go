// Package dto provides Data Transfer Objects for API requests/responses.
package dto

import (
	"time"

	"inventario/internal/core/entity"
	"inventario/internal/domain"
	"inventario/internal/domain/documents"
)

// --- List ---

// ListQuery is the common query string of document listings.
type ListQuery struct {
	Status  []string   `form:"status"`
	Search  string     `form:"search" binding:"max=100"`
	OrderBy string     `form:"orderBy"`
	From    *time.Time `form:"from" time_format:"2006-01-02"`
	To      *time.Time `form:"to" time_format:"2006-01-02"`
	Limit   int        `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset  int        `form:"offset" binding:"omitempty,min=0"`
}

// ToFilter converts the query into a document filter. To is inclusive of the whole day.
func (q ListQuery) ToFilter() documents.ListFilter {
	f := documents.ListFilter{
		ListFilter: domain.ListFilter{
			Search:  q.Search,
			OrderBy: q.OrderBy,
			Limit:   q.Limit,
			Offset:  q.Offset,
		},
		From: q.From,
	}
	for _, s := range q.Status {
		if s != "" {
			f.Status = append(f.Status, entity.Status(s))
		}
	}
	if q.To != nil {
		end := q.To.AddDate(0, 0, 1)
		f.To = &end
	}
	return f
}

// ListResponse wraps list results with paging metadata.
type ListResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// FromListResult converts a domain list result.
func FromListResult[T any](r domain.ListResult[T]) ListResponse[T] {
	items := r.Items
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, TotalCount: r.TotalCount, Limit: r.Limit, Offset: r.Offset}
}

// --- Error Response ---

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// CanConvertResponse answers whether a quotation can become a dispatch note.
type CanConvertResponse struct {
	CanConvert bool `json:"canConvert"`
}

// EventsResponse lists the events a document accepts in its current status.
type EventsResponse struct {
	Status   entity.Status `json:"status"`
	Editable bool          `json:"editable"`
	Events   []string      `json:"events"`
}
