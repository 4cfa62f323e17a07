package utils

import (
	"math"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PaginationResponse is the paging metadata attached to deck listings
type PaginationResponse struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// ValidateAndNormalizePagination clamps paging input to sane bounds
func ValidateAndNormalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

// CalculatePaginationInfo derives the metadata for one page of results. An
// empty result set still reports a single page.
func CalculatePaginationInfo(total, page, pageSize int) PaginationResponse {
	totalPages := int(math.Ceil(float64(total) / float64(pageSize)))
	if totalPages == 0 {
		totalPages = 1
	}

	return PaginationResponse{
		Total:       total,
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// CalculateOffset converts a page number into a query offset
func CalculateOffset(page, pageSize int) int {
	return (page - 1) * pageSize
}

// ParsePaginationFromQuery reads page and page_size query values, falling
// back to the first page at the default size
func ParsePaginationFromQuery(pageStr, pageSizeStr string) (int, int) {
	page := 1
	pageSize := defaultPageSize

	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(pageSizeStr); err == nil && ps > 0 && ps <= maxPageSize {
		pageSize = ps
	}
	return page, pageSize
}
