package level

import "fmt"

// Policy selects the rank threshold of the low-rank exclusion rule.
type Policy int

const (
	// ExcludeBelowMin rejects unselected groups ranked below the lowest selected group.
	ExcludeBelowMin Policy = iota
	// ExcludeBelowMax rejects unselected groups ranked below the highest selected group.
	ExcludeBelowMax
)

// ParsePolicy parses a config value. Empty means ExcludeBelowMin.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "exclude_below_min":
		return ExcludeBelowMin, nil
	case "exclude_below_max":
		return ExcludeBelowMax, nil
	default:
		return ExcludeBelowMin, fmt.Errorf("unknown level policy %q", s)
	}
}

func (p Policy) String() string {
	if p == ExcludeBelowMax {
		return "exclude_below_max"
	}
	return "exclude_below_min"
}

// threshold returns the rank below which unselected groups are rejected.
// groups must be non-empty and sorted by rank.
func (p Policy) threshold(groups []Level) int {
	if p == ExcludeBelowMax {
		return Rank(groups[len(groups)-1])
	}
	return Rank(groups[0])
}
