// Package model contains domain models shared by the API, the store
// implementations and the client. No business logic here.
package model

// Pagination summarises one page of a filtered listing.
type Pagination struct {
	TotalMatching int `json:"totalMatching"`
	TotalPages    int `json:"totalPages"`
	CurrentPage   int `json:"currentPage"`
	ItemsPerPage  int `json:"itemsPerPage"`
}

// NewPagination derives the page count from the match total. A limit of zero
// or less yields zero pages.
func NewPagination(total, page, limit int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		TotalMatching: total,
		TotalPages:    pages,
		CurrentPage:   page,
		ItemsPerPage:  limit,
	}
}

// HasNext reports whether a page follows the current one.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}
