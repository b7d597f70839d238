package school

import (
	"github.com/kailas-cloud/schoolkeuze/internal/db"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/search/query"
)

// Index field aliases.
const (
	fieldLevels     = "levels"
	fieldPostalCode = "postal_code"
	fieldSource     = "source"
	fieldNameKey    = "name_key"
)

// buildIndex defines the FT index over school documents. The levels tag holds
// broad groups so that a selection can be pushed down as group presence checks.
func buildIndex(prefix string) *db.IndexDefinition {
	return db.NewIndex(indexName(prefix)).
		Prefix(keyPrefix(prefix)).
		Tag("$.groups[*]").As(fieldLevels).
		Tag("$.postalKey").As(fieldPostalCode).
		Tag("$.source").As(fieldSource).
		TagWithOpts("$.nameKey", "|", false).As(fieldNameKey).Sortable().
		MustBuild()
}

// coarseFilter translates the pushable predicates into tag conditions.
func coarseFilter(c query.Coarse) db.TagFilter {
	var f db.TagFilter
	for _, g := range c.Required {
		f.Must = append(f.Must, db.TagCondition{Field: fieldLevels, Value: string(g)})
	}
	for _, g := range c.Excluded {
		f.MustNot = append(f.MustNot, db.TagCondition{Field: fieldLevels, Value: string(g)})
	}
	if len(c.PostalPrefix) >= query.MinPushdownPrefix {
		f.Must = append(f.Must, db.TagCondition{Field: fieldPostalCode, Value: c.PostalPrefix, Prefix: true})
	}
	return f
}
