package shared

import (
	"fmt"
	"math"
)

// PerPage is the fixed page size for every listing endpoint.
const PerPage = 5

// Page is the paginated result envelope. Field names and null semantics
// match what existing API clients already parse.
type Page[T any] struct {
	CurrentPage int     `json:"current_page"`
	Data        []T     `json:"data"`
	From        *int    `json:"from"`
	LastPage    int     `json:"last_page"`
	NextPageURL *string `json:"next_page_url"`
	Path        string  `json:"path"`
	PerPage     int     `json:"per_page"`
	PrevPageURL *string `json:"prev_page_url"`
	To          *int    `json:"to"`
	Total       int     `json:"total"`
}

// NewPage assembles the envelope for one page of data. data holds only the
// rows of the requested page; total is the unpaginated row count.
func NewPage[T any](data []T, page, total int, path string) Page[T] {
	if page <= 0 {
		page = 1
	}
	if data == nil {
		data = []T{}
	}

	lastPage := 0
	if total > 0 {
		lastPage = int(math.Ceil(float64(total) / float64(PerPage)))
	}

	p := Page[T]{
		CurrentPage: page,
		Data:        data,
		LastPage:    lastPage,
		Path:        path,
		PerPage:     PerPage,
		Total:       total,
	}

	if len(data) > 0 {
		from := (page-1)*PerPage + 1
		to := from + len(data) - 1
		p.From = &from
		p.To = &to
	}
	if page > 1 && total > 0 {
		prev := fmt.Sprintf("%s?page=%d", path, page-1)
		p.PrevPageURL = &prev
	}
	if page < lastPage {
		next := fmt.Sprintf("%s?page=%d", path, page+1)
		p.NextPageURL = &next
	}
	return p
}

// PageOffset converts a 1-based page number into a row offset.
func PageOffset(page int) int {
	if page <= 1 {
		return 0
	}
	return (page - 1) * PerPage
}
