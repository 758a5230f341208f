package shared

// Filter represents paging and ordering options shared by list queries.
// OrderBy and OrderDir are caller input; repositories check them against a
// whitelist before use.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// MaxPageSize caps the number of rows a single list query may return
const MaxPageSize = 200

// DefaultFilter returns a filter with default values
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 50,
	}
}

// Normalize clamps page and page size into their valid ranges
func (f Filter) Normalize() Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize <= 0 {
		f.PageSize = DefaultFilter().PageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
	return f
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	n := f.Normalize()
	return (n.Page - 1) * n.PageSize
}

// Limit returns the page size after normalization
func (f Filter) Limit() int {
	return f.Normalize().PageSize
}
