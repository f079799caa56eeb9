// Package datatable keeps the paging, sorting and filtering state of a lazy
// list view and turns it into backend query parameters.
package datatable

import "github.com/enciclo/control"

// DefaultRows is the page size list views start with.
const DefaultRows = 25

// RowsPerPageOptions are the page sizes a view offers.
var RowsPerPageOptions = []int{25, 50, 100}

// SortMeta is one entry of a multi-column sort. Order is positive for
// ascending.
type SortMeta struct {
	Field string `json:"field"`
	Order int    `json:"order"`
}

// State is the mutable view state. Page events replace it wholesale.
type State struct {
	First         int                       `json:"first"`
	Rows          int                       `json:"rows"`
	SortField     string                    `json:"sortField,omitempty"`
	SortOrder     int                       `json:"sortOrder,omitempty"`
	Page          int                       `json:"page"`
	MultiSortMeta []SortMeta                `json:"multiSortMeta"`
	Filters       map[string]control.Filter `json:"filters"`
}

// Query derives the request parameters: a 1-based page computed from First
// and Rows, the first sort key only, and the filters as they are.
func (s State) Query() control.Query {
	page := 1
	if s.Rows > 0 {
		page = s.First/s.Rows + 1
	}
	q := control.Query{
		Page:   max(page, 1),
		Items:  s.Rows,
		Filter: s.Filters,
	}
	if len(s.MultiSortMeta) > 0 {
		m := s.MultiSortMeta[0]
		dir := "desc"
		if m.Order > 0 {
			dir = "asc"
		}
		q.Order = m.Field + " " + dir
	}
	return q
}

// Reset returns the view to its first page with no sort, rows per page and
// the given filters.
func (s *State) Reset(rows int, filters map[string]control.Filter) {
	*s = State{
		Rows:          rows,
		MultiSortMeta: []SortMeta{},
		Filters:       filters,
	}
}
