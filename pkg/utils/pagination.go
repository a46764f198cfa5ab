package utils

// Page size bounds for list endpoints
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// PaginationParams is the page a list endpoint was asked for
type PaginationParams struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// PaginationMeta describes the page that was returned
type PaginationMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalCount int64 `json:"totalCount"`
	TotalPages int   `json:"totalPages"`
	HasMore    bool  `json:"hasMore"`
}

// GetPaginationParams clamps page to at least 1 and limit into
// [1, MaxLimit], defaulting a missing limit to DefaultLimit
func GetPaginationParams(page, limit int) PaginationParams {
	return PaginationParams{Page: max(page, 1), Limit: clampLimit(limit)}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// CalculateOffset returns the row offset of the first item on the page
func (p PaginationParams) CalculateOffset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// CalculateMeta builds the metadata for a page of a totalCount-row result
func CalculateMeta(totalCount int64, page, limit int) PaginationMeta {
	p := GetPaginationParams(page, limit)
	if totalCount < 0 {
		totalCount = 0
	}

	pages := int((totalCount + int64(p.Limit) - 1) / int64(p.Limit))
	return PaginationMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		TotalCount: totalCount,
		TotalPages: pages,
		HasMore:    p.Page < pages,
	}
}
