package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateAndNormalizePaginationClampsBounds(t *testing.T) {
	page, pageSize := ValidateAndNormalizePagination(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, pageSize)

	_, pageSize = ValidateAndNormalizePagination(2, 500)
	assert.Equal(t, maxPageSize, pageSize)
}

func TestCalculatePaginationInfo(t *testing.T) {
	info := CalculatePaginationInfo(5, 1, 3)
	assert.Equal(t, 2, info.TotalPages)
	assert.True(t, info.HasNext)
	assert.False(t, info.HasPrevious)

	empty := CalculatePaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)
	assert.False(t, empty.HasNext)
}

func TestParsePaginationFromQuery(t *testing.T) {
	page, pageSize := ParsePaginationFromQuery("", "")
	assert.Equal(t, 1, page)
	assert.Equal(t, defaultPageSize, pageSize)

	page, pageSize = ParsePaginationFromQuery("3", "50")
	assert.Equal(t, 3, page)
	assert.Equal(t, 50, pageSize)

	// Oversized or garbage values fall back
	_, pageSize = ParsePaginationFromQuery("3", "9999")
	assert.Equal(t, defaultPageSize, pageSize)
	page, _ = ParsePaginationFromQuery("abc", "50")
	assert.Equal(t, 1, page)
}
