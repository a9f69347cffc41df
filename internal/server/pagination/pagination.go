// Package pagination computes page-window metadata for list results.
// The window is derived from offset/limit/total and never stored.
package pagination

// Defaults applied when the caller leaves offset or limit unspecified.
const (
	DefaultOffset = 0
	DefaultLimit  = 10
)

// PageInfo describes the position of a page within the full result set.
type PageInfo struct {
	Offset          int  `json:"offset"`
	Limit           int  `json:"limit"`
	HasNextPage     bool `json:"hasNextPage"`
	HasPreviousPage bool `json:"hasPreviousPage"`
}

// Normalize fills in defaults for unspecified offset/limit. Out-of-range
// values are not clamped; the persistence layer returns an empty slice
// when the offset exceeds the total.
func Normalize(offset, limit *int) (int, int) {
	o, l := DefaultOffset, DefaultLimit
	if offset != nil {
		o = *offset
	}
	if limit != nil {
		l = *limit
	}
	return o, l
}

// ComputeWindow derives the page flags from an already-normalized
// offset/limit pair and the total row count.
func ComputeWindow(offset, limit, total int) PageInfo {
	return PageInfo{
		Offset:          offset,
		Limit:           limit,
		HasNextPage:     offset+limit < total,
		HasPreviousPage: offset > 0,
	}
}
