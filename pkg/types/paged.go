package types

import (
	"encoding/json"
	"fmt"
)

// PagedResult is one page of a larger result set. It is immutable once
// built; Items returns a copy of the page.
type PagedResult[T any] struct {
	items          []T
	totalItemCount int
	pageNumber     int
	pageSize       int
}

// NewPagedResult builds a page. It returns a PagingError when page or
// pageSize is below 1 or when totalItemCount is negative. A nil items slice
// is stored as an empty page.
func NewPagedResult[T any](items []T, totalItemCount, pageNumber, pageSize int) (*PagedResult[T], error) {
	if pageNumber < 1 {
		return nil, &PagingError{Param: "page", Value: pageNumber, Min: 1}
	}
	if pageSize < 1 {
		return nil, &PagingError{Param: "pageSize", Value: pageSize, Min: 1}
	}
	if totalItemCount < 0 {
		return nil, &PagingError{Param: "totalItemCount", Value: totalItemCount}
	}
	cp := make([]T, len(items))
	copy(cp, items)
	return &PagedResult[T]{
		items:          cp,
		totalItemCount: totalItemCount,
		pageNumber:     pageNumber,
		pageSize:       pageSize,
	}, nil
}

// Items returns the entities on this page. Never nil.
func (p *PagedResult[T]) Items() []T {
	cp := make([]T, len(p.items))
	copy(cp, p.items)
	return cp
}

// Len returns the number of items on this page.
func (p *PagedResult[T]) Len() int { return len(p.items) }

// TotalItemCount returns the number of items across all pages.
func (p *PagedResult[T]) TotalItemCount() int { return p.totalItemCount }

// PageNumber returns the 1-based page number.
func (p *PagedResult[T]) PageNumber() int { return p.pageNumber }

// PageSize returns the requested number of items per page.
func (p *PagedResult[T]) PageSize() int { return p.pageSize }

// TotalPages returns ceil(TotalItemCount / PageSize).
func (p *PagedResult[T]) TotalPages() int {
	return (p.totalItemCount + p.pageSize - 1) / p.pageSize
}

// String implements fmt.Stringer.
func (p *PagedResult[T]) String() string {
	return fmt.Sprintf("page %d/%d (%d items of %d)", p.pageNumber, p.TotalPages(), len(p.items), p.totalItemCount)
}

type pagedResultJSON[T any] struct {
	Items          []T `json:"items"`
	TotalItemCount int `json:"total_item_count"`
	PageNumber     int `json:"page_number"`
	PageSize       int `json:"page_size"`
	TotalPages     int `json:"total_pages"`
}

// MarshalJSON implements json.Marshaler.
func (p *PagedResult[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(pagedResultJSON[T]{
		Items:          p.items,
		TotalItemCount: p.totalItemCount,
		PageNumber:     p.pageNumber,
		PageSize:       p.pageSize,
		TotalPages:     p.TotalPages(),
	})
}
