// Package level models Dutch secondary-education tracks and their rank order.
package level

import "strings"

// Level is a canonical education track.
type Level string

// Known levels in ascending rank order.
const (
	Praktijkonderwijs Level = "PRAKTIJKONDERWIJS"
	VMBO              Level = "VMBO"
	VMBOT             Level = "VMBO_T"
	VMBOB             Level = "VMBO_B"
	VMBOK             Level = "VMBO_K"
	HAVO              Level = "HAVO"
	VWO               Level = "VWO"
)

// broadGroups lists every broad group, lowest rank first.
var broadGroups = []Level{Praktijkonderwijs, VMBO, HAVO, VWO}

var aliases = map[string]Level{
	"VMBO_TL":  VMBOT,
	"VMBO_BL":  VMBOB,
	"VMBO_KL":  VMBOK,
	"PRAKTIJK": Praktijkonderwijs,
}

var ranks = map[Level]int{
	Praktijkonderwijs: -1,
	VMBO:              0,
	VMBOT:             0,
	VMBOB:             0,
	VMBOK:             0,
	HAVO:              1,
	VWO:               2,
}

// Normalize maps a raw token to its canonical level.
// Returns false for unrecognized tokens; callers drop those.
func Normalize(token string) (Level, bool) {
	key := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(token)), "-", "_")
	if l, ok := aliases[key]; ok {
		return l, true
	}
	l := Level(key)
	if !l.IsValid() {
		return "", false
	}
	return l, true
}

// Parse normalizes tokens, dropping unrecognized ones and duplicates. Input order is kept.
func Parse(tokens []string) []Level {
	out := make([]Level, 0, len(tokens))
	seen := make(map[Level]struct{}, len(tokens))
	for _, tok := range tokens {
		l, ok := Normalize(tok)
		if !ok {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	return out
}

// IsValid reports whether l is one of the canonical levels.
func (l Level) IsValid() bool {
	_, ok := ranks[l]
	return ok
}

// IsVMBO reports whether l belongs to the VMBO group.
func (l Level) IsVMBO() bool {
	return l == VMBO || strings.HasPrefix(string(l), string(VMBO)+"_")
}

// BroadGroup collapses VMBO variants to VMBO. Other levels map to themselves.
func BroadGroup(l Level) Level {
	if l.IsVMBO() {
		return VMBO
	}
	return l
}

// Rank returns the academic rank of l: PRAKTIJKONDERWIJS=-1, VMBO group=0, HAVO=1, VWO=2.
// Unknown levels rank with PRAKTIJKONDERWIJS at the floor.
func Rank(l Level) int {
	if r, ok := ranks[l]; ok {
		return r
	}
	return -1
}

// Groups returns the distinct broad groups of levels, lowest rank first.
func Groups(levels []Level) []Level {
	present := make(map[Level]bool, len(broadGroups))
	for _, l := range levels {
		if l.IsValid() {
			present[BroadGroup(l)] = true
		}
	}
	out := make([]Level, 0, len(present))
	for _, g := range broadGroups {
		if present[g] {
			out = append(out, g)
		}
	}
	return out
}

// Highest returns the highest-ranked broad group in levels.
// Returns false when levels holds no valid level.
func Highest(levels []Level) (Level, bool) {
	groups := Groups(levels)
	if len(groups) == 0 {
		return "", false
	}
	return groups[len(groups)-1], true
}

// Strings converts levels to their string form.
func Strings(levels []Level) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = string(l)
	}
	return out
}
