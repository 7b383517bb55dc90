// Package pagination holds the page shapes shared with the budget backend.
// The backend serves Spring-style page envelopes; requests use page/size
// query parameters.
package pagination

import "math"

// PageRequest holds pagination parameters parsed from query strings.
type PageRequest struct {
	Page int `form:"page" binding:"omitempty,min=1"`
	Size int `form:"size" binding:"omitempty,min=1,max=100"`
}

// Defaults fills in default values when page or size are not provided.
func (p *PageRequest) Defaults() {
	if p.Page == 0 {
		p.Page = 1
	}
	if p.Size == 0 {
		p.Size = 20
	}
}

// Page is the backend's page envelope. Number is zero-based on the wire.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage builds a page envelope from a full slice, used by the test backend.
func NewPage[T any](content []T, number, size int, totalElements int64) Page[T] {
	if content == nil {
		content = []T{}
	}
	return Page[T]{
		Content:       content,
		Number:        number,
		Size:          size,
		TotalElements: totalElements,
		TotalPages:    int(math.Ceil(float64(totalElements) / float64(size))),
	}
}

// HasNext reports whether a later page exists.
func (p *Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// HasPrev reports whether an earlier page exists.
func (p *Page[T]) HasPrev() bool {
	return p.Number > 0
}
