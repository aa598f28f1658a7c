package query

// Direction orders a sorted view.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// FilterAll is the filter value meaning "no constraint".
const FilterAll = "all"

// ViewSpec is the search, filter and sort configuration for one rendering.
type ViewSpec struct {
	Search    string            `json:"search,omitempty"`
	Filters   map[string]string `json:"filters,omitempty"`
	SortField string            `json:"sort_field,omitempty"`
	Direction Direction         `json:"direction,omitempty"`
}
