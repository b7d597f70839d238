package geo

import "math"

// CyclingSpeedKmh is the average cycling speed used for travel-time estimates.
const CyclingSpeedKmh = 15.0

// TravelMinutes estimates cycling minutes for a distance: round(km / 15 * 60).
func TravelMinutes(km float64) int {
	return int(math.Round(km / CyclingSpeedKmh * 60))
}

// RadiusForMinutes converts a travel-time budget to a radius: minutes * 15 / 60.
func RadiusForMinutes(minutes float64) float64 {
	return minutes * CyclingSpeedKmh / 60
}

// MinutesForRadius is the exact inverse of RadiusForMinutes (no rounding).
func MinutesForRadius(km float64) float64 {
	return km / CyclingSpeedKmh * 60
}
