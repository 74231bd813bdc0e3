package types

import "math"

const (
	DefaultPage  = 1
	DefaultLimit = 20
)

// AllowedLimits are the page sizes a caller may ask for.
var AllowedLimits = []int{10, 20, 40}

type PageParams struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

func (p *PageParams) Normalize() error {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}

	if p.Page < 1 {
		return InvalidInputf("page must be greater than 0")
	}

	for _, allowed := range AllowedLimits {
		if p.Limit == allowed {
			return nil
		}
	}

	return InvalidInputf("limit must be one of %v", AllowedLimits)
}

// Offset is the number of rows before the page. It saturates at the largest
// offset the store accepts, so a page far past the end is simply empty.
func (p PageParams) Offset() uint64 {
	if p.Page <= 1 || p.Limit <= 0 {
		return 0
	}

	pages := uint64(p.Page - 1)
	limit := uint64(p.Limit)
	if pages > math.MaxInt64/limit {
		return math.MaxInt64
	}

	return pages * limit
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// NewPage assembles a page from a window of rows and the total matching count.
func NewPage[T any](data []T, params PageParams, total int) *Page[T] {
	if data == nil {
		data = make([]T, 0)
	}

	return &Page[T]{
		Data: data,
		Pagination: Pagination{
			Page:       params.Page,
			Limit:      params.Limit,
			Total:      total,
			TotalPages: TotalPages(total, params.Limit),
		},
	}
}

// TotalPages is ceil(total/limit), never less than one.
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}
