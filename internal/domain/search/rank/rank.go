// Package rank orders search results for list display.
package rank

import (
	"cmp"
	"slices"

	"golang.org/x/text/cases"

	"github.com/kailas-cloud/schoolkeuze/internal/domain/level"
	"github.com/kailas-cloud/schoolkeuze/internal/domain/school"
)

// unclassified sorts below every real broad group.
const unclassified = -2

// SortForDisplay returns a sorted copy of schools: favorites first, then by
// descending highest level (VWO, HAVO, VMBO, then PRAKTIJKONDERWIJS or unclassified),
// then by case-insensitive name. Remaining ties fall back to the identifier.
func SortForDisplay(schools []school.School, favoriteIDs []string) []school.School {
	favorites := make(map[string]bool, len(favoriteIDs))
	for _, id := range favoriteIDs {
		favorites[id] = true
	}

	fold := cases.Fold()
	type keyed struct {
		s        school.School
		favorite bool
		rank     int
		name     string
	}
	items := make([]keyed, len(schools))
	for i := range schools {
		s := &schools[i]
		items[i] = keyed{
			s:        *s,
			favorite: favorites[s.ID()],
			rank:     displayRank(s.Levels()),
			name:     fold.String(s.Name()),
		}
	}

	slices.SortStableFunc(items, func(a, b keyed) int {
		if a.favorite != b.favorite {
			if a.favorite {
				return -1
			}
			return 1
		}
		if c := cmp.Compare(b.rank, a.rank); c != 0 {
			return c
		}
		if c := cmp.Compare(a.name, b.name); c != 0 {
			return c
		}
		return cmp.Compare(a.s.ID(), b.s.ID())
	})

	out := make([]school.School, len(items))
	for i := range items {
		out[i] = items[i].s
	}
	return out
}

// displayRank is the rank of the highest broad group; PRAKTIJKONDERWIJS and
// schools without levels share the bottom tier.
func displayRank(levels []level.Level) int {
	top, ok := level.Highest(levels)
	if !ok || top == level.Praktijkonderwijs {
		return unclassified
	}
	return level.Rank(top)
}
