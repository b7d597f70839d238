package school

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// Keys of the exam payload inside the results blob.
const (
	ExamsKey       = "examens_2023_2024"
	ExamsSourceKey = "examens_bron"
)

// preferredTracks is the display preference when a school reports several tracks.
var preferredTracks = []string{"VWO", "HAVO", "VMBO_TL", "VMBO", "VMBO-KL", "VMBO_BL"}

// TrackStats holds the statistics for one exam track. A nil field was not recorded.
type TrackStats struct {
	PassRate *float64
}

// ExamResults is either unset or a set of per-track statistics.
type ExamResults struct {
	tracks map[string]TrackStats
	source string
}

type rawTrack struct {
	PassRate json.RawMessage `json:"slagingspercentage"`
}

// ParseExamResults extracts exam statistics from a results payload.
// Anything that is not a JSON object with an exam object yields unset results.
func ParseExamResults(results json.RawMessage) ExamResults {
	if len(results) == 0 {
		return ExamResults{}
	}
	var blob map[string]json.RawMessage
	if err := json.Unmarshal(results, &blob); err != nil {
		return ExamResults{}
	}

	var out ExamResults
	if raw, ok := blob[ExamsSourceKey]; ok {
		_ = json.Unmarshal(raw, &out.source)
	}

	var tracks map[string]json.RawMessage
	if err := json.Unmarshal(blob[ExamsKey], &tracks); err != nil || tracks == nil {
		return out
	}

	out.tracks = make(map[string]TrackStats, len(tracks))
	for name, raw := range tracks {
		var rt rawTrack
		if err := json.Unmarshal(raw, &rt); err != nil {
			out.tracks[name] = TrackStats{}
			continue
		}
		out.tracks[name] = TrackStats{PassRate: finiteNumber(rt.PassRate)}
	}
	return out
}

// finiteNumber decodes a JSON number. Anything else is unknown.
func finiteNumber(raw json.RawMessage) *float64 {
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// IsSet reports whether any exam statistics were recorded.
func (e ExamResults) IsSet() bool { return e.tracks != nil }

// Source returns the attribution of the exam data, if present.
func (e ExamResults) Source() string { return e.source }

// Tracks returns the recorded track names in sorted order.
func (e ExamResults) Tracks() []string {
	out := make([]string, 0, len(e.tracks))
	for name := range e.tracks {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// PassRate returns the pass percentage of a track.
func (e ExamResults) PassRate(track string) (float64, bool) {
	stats, ok := e.tracks[track]
	if !ok || stats.PassRate == nil {
		return 0, false
	}
	return *stats.PassRate, true
}

// PreferredPassRate returns the pass rate of the first preferred track that has one,
// falling back to any other track in sorted order.
func (e ExamResults) PreferredPassRate() (string, float64, bool) {
	for _, track := range preferredTracks {
		if rate, ok := e.PassRate(track); ok {
			return track, rate, true
		}
	}
	for _, track := range e.Tracks() {
		if rate, ok := e.PassRate(track); ok {
			return track, rate, true
		}
	}
	return "", 0, false
}

// FormatPassRate renders a pass rate with one decimal, or "—" when unknown.
func FormatPassRate(rate float64, ok bool) string {
	if !ok {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", rate)
}
