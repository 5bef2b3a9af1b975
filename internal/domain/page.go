package domain

// PageSize is the fixed number of rows per list page
const PageSize = 10

// FilterAll disables the type filter on list pages
const FilterAll = "ALL"

// ListQuery is the view state of a list page
type ListQuery struct {
	Page     int
	PageSize int
	Type     string
}

// NewListQuery normalises page and filter: page < 1 becomes 1 and a filter
// not in allowed becomes FilterAll.
func NewListQuery(page int, filter string, allowed []string) ListQuery {
	if page < 1 {
		page = 1
	}

	valid := false
	for _, f := range allowed {
		if f == filter {
			valid = true
			break
		}
	}
	if !valid {
		filter = FilterAll
	}

	return ListQuery{Page: page, PageSize: PageSize, Type: filter}
}

// Pagination describes the page controls for a list result
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

// HasPrev is false only on the first page
func (p Pagination) HasPrev() bool {
	return p.Page != 1
}

// HasNext is false once the current page reaches the total
func (p Pagination) HasNext() bool {
	return p.Page*p.PageSize < p.Total
}

// From is the 1-based index of the first row on the page
func (p Pagination) From() int {
	return (p.Page-1)*p.PageSize + 1
}

// To is the 1-based index of the last row on the page
func (p Pagination) To() int {
	to := p.Page * p.PageSize
	if to > p.Total {
		return p.Total
	}
	return to
}

// Visible reports whether the controls are shown at all
func (p Pagination) Visible() bool {
	return p.Total > p.PageSize
}
