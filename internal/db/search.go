package db

// TagCondition matches a single TAG field value. Prefix turns the value into a
// prefix match (value*).
type TagCondition struct {
	Field  string
	Value  string
	Prefix bool
}

// TagFilter is a conjunction of TAG conditions used as an FT.SEARCH pre-filter.
type TagFilter struct {
	Must    []TagCondition
	MustNot []TagCondition
}

// IsEmpty reports whether the filter has no conditions.
func (f TagFilter) IsEmpty() bool {
	return len(f.Must) == 0 && len(f.MustNot) == 0
}

// ListQuery is the input for a filtered, sorted listing.
type ListQuery struct {
	IndexName    string
	Filter       TagFilter
	Offset       int
	Limit        int
	ReturnFields []string
	SortBy       string
	SortDesc     bool
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
