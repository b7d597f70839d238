package level

// Selection is a caller's set of selected broad groups.
type Selection struct {
	groups   []Level
	selected map[Level]bool
}

// NewSelection builds a selection from already-normalized levels.
func NewSelection(levels []Level) Selection {
	groups := Groups(levels)
	selected := make(map[Level]bool, len(groups))
	for _, g := range groups {
		selected[g] = true
	}
	return Selection{groups: groups, selected: selected}
}

// ParseSelection normalizes raw tokens into a selection, dropping unrecognized ones.
func ParseSelection(tokens []string) Selection {
	return NewSelection(Parse(tokens))
}

// IsEmpty reports whether nothing was selected. An empty selection matches every school.
func (s Selection) IsEmpty() bool { return len(s.groups) == 0 }

// Groups returns the selected broad groups, lowest rank first.
func (s Selection) Groups() []Level { return s.groups }

// Excluded returns the unselected broad groups whose presence rejects a school under p.
func (s Selection) Excluded(p Policy) []Level {
	if s.IsEmpty() {
		return nil
	}
	threshold := p.threshold(s.groups)
	var out []Level
	for _, g := range broadGroups {
		if !s.selected[g] && Rank(g) < threshold {
			out = append(out, g)
		}
	}
	return out
}

// Matches applies the level predicate to a school's offered levels:
// every selected group must be offered, and no excluded group may be offered.
func (s Selection) Matches(offered []Level, p Policy) bool {
	if s.IsEmpty() {
		return true
	}
	have := make(map[Level]bool, len(broadGroups))
	for _, g := range Groups(offered) {
		have[g] = true
	}
	for _, g := range s.groups {
		if !have[g] {
			return false
		}
	}
	for _, g := range s.Excluded(p) {
		if have[g] {
			return false
		}
	}
	return true
}
